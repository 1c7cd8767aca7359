package fetcher

import (
	"io"
	"net/http"
	"slices"

	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
)

// maxBodySnippet 상태 코드 에러에 담을 응답 본문의 최대 길이 (4KB)
const maxBodySnippet = 4096

// StatusCodeFetcher HTTP 응답의 상태 코드를 검증하는 미들웨어입니다.
//
// 허용되지 않은 상태 코드를 받으면 응답 Body를 정리하고 *HTTPStatusError를 반환합니다.
type StatusCodeFetcher struct {
	delegate Fetcher

	// allowedStatusCodes nil 또는 빈 슬라이스인 경우 200 OK만 허용합니다.
	allowedStatusCodes []int
}

var _ Fetcher = (*StatusCodeFetcher)(nil)

// NewStatusCodeFetcher 새로운 StatusCodeFetcher 인스턴스를 생성합니다.
func NewStatusCodeFetcher(delegate Fetcher, allowedStatusCodes ...int) *StatusCodeFetcher {
	return &StatusCodeFetcher{
		delegate:           delegate,
		allowedStatusCodes: allowedStatusCodes,
	}
}

// Do HTTP 요청을 수행하고 응답 상태 코드를 검증합니다.
//
// 에러 발생 시 nil Response를 반환하며 Body는 이 함수 안에서 정리됩니다.
func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}

		return nil, err
	}

	if statusErr := CheckResponseStatus(resp, f.allowedStatusCodes...); statusErr != nil {
		drainAndCloseBody(resp.Body)

		return nil, statusErr
	}

	return resp, nil
}

// CheckResponseStatus 응답 상태 코드가 허용 목록에 없으면 *HTTPStatusError를 반환합니다.
//
// 에러 생성 시 Body의 앞부분(최대 4KB)을 읽으므로, 에러가 반환되면 호출자는 Body를 더 읽지 말고 닫아야 합니다.
func CheckResponseStatus(resp *http.Response, allowedStatusCodes ...int) error {
	if len(allowedStatusCodes) == 0 {
		if resp.StatusCode == http.StatusOK {
			return nil
		}
	} else if slices.Contains(allowedStatusCodes, resp.StatusCode) {
		return nil
	}

	errType := apperrors.ExecutionFailed
	switch {
	case resp.StatusCode == http.StatusNotFound:
		errType = apperrors.NotFound
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		errType = apperrors.InvalidInput
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode >= 500:
		errType = apperrors.Unavailable
	}

	urlStr := ""
	if resp.Request != nil && resp.Request.URL != nil {
		urlStr = redactURL(resp.Request.URL)
	}

	var bodySnippet string
	if resp.Body != nil {
		if b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet)); err == nil {
			bodySnippet = string(b)
		}
	}

	return &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         urlStr,
		Header:      redactHeaders(resp.Header),
		BodySnippet: bodySnippet,
		Cause:       newErrHTTPStatus(errType, resp.Status, urlStr),
	}
}
