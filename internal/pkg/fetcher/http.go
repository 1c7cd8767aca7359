package fetcher

import (
	"net/http"
	"time"
)

// DefaultTimeout 외부 API 호출 하나가 처리 흐름을 붙잡아 둘 수 있는 최대 시간입니다.
const DefaultTimeout = 10 * time.Second

// HTTPFetcher 타임아웃과 기본 User-Agent가 설정된 http.Client 래퍼입니다.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher 새로운 HTTPFetcher 인스턴스를 생성합니다. timeout이 0 이하이면 DefaultTimeout을 사용합니다.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Do HTTP 요청을 실행합니다.
func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if h.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	return h.client.Do(req)
}
