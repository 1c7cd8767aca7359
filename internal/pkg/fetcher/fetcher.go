// Package fetcher 외부 HTTP API 호출을 위한 데코레이터 기반 클라이언트를 제공합니다.
//
// 각 기능(타임아웃, 응답 크기 제한, 상태 코드 검증, 로깅)은 Fetcher를 감싸는 독립된 구현체로 분리되어 있으며,
// New 함수가 이를 정해진 순서로 조립합니다.
package fetcher

import (
	"context"
	"net/http"
	"time"
)

// component Fetcher 로깅용 컴포넌트 이름
const component = "fetcher"

// Fetcher HTTP 요청을 수행하는 핵심 인터페이스입니다.
//
// 구현 시 주의사항:
//   - 반환된 응답 객체의 Body는 반드시 호출자가 닫아야 합니다.
//   - 에러가 발생해도 응답 객체가 nil이 아닐 수 있습니다.
//   - Context 취소 시 즉시 요청을 중단하고 에러를 반환해야 합니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options New로 조립되는 Fetcher 체인의 설정입니다.
type Options struct {
	// Timeout 요청 하나에 허용되는 전체 시간 (0이면 DefaultTimeout)
	Timeout time.Duration

	// MaxBytes 응답 본문의 최대 크기 (0이면 기본값 10MB, NoLimit이면 제한 없음)
	MaxBytes int64

	// UserAgent 요청 헤더에 User-Agent가 없을 때 사용할 값
	UserAgent string

	// AllowedStatusCodes 성공으로 취급할 상태 코드 (비어 있으면 200 OK만 허용)
	AllowedStatusCodes []int
}

// New 다음 순서로 감싼 Fetcher 체인을 생성합니다.
//
//	LoggingFetcher -> StatusCodeFetcher -> MaxBytesFetcher -> HTTPFetcher
//
// 로깅이 가장 바깥에 있으므로 상태 코드 에러를 포함한 모든 실패가 기록됩니다.
func New(opts Options) Fetcher {
	var f Fetcher = NewHTTPFetcher(opts.Timeout, opts.UserAgent)
	f = NewMaxBytesFetcher(f, opts.MaxBytes)
	f = NewStatusCodeFetcher(f, opts.AllowedStatusCodes...)
	f = NewLoggingFetcher(f)

	return f
}

// Get 지정된 URL로 HTTP GET 요청을 전송하는 헬퍼 함수입니다.
//
// header의 값은 요청 헤더에 그대로 설정됩니다.
// 요청 실패 시 커넥션 재사용을 위해 응답 객체의 Body를 읽어서 버리고 닫습니다.
func Get(ctx context.Context, f Fetcher, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}

		return nil, err
	}

	return resp, nil
}
