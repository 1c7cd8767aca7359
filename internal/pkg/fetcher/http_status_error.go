package fetcher

import (
	"fmt"
	"net/http"
)

// HTTPStatusError HTTP 요청이 허용되지 않은 상태 코드로 끝났을 때의 구조화된 에러입니다.
//
// 호출자는 errors.As로 꺼내어 상태 코드별로 대응할 수 있습니다.
//
//	var statusErr *fetcher.HTTPStatusError
//	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
//	    ...
//	}
type HTTPStatusError struct {
	StatusCode int
	Status     string

	// URL 민감한 쿼리 파라미터와 인증 정보는 마스킹되어 있습니다.
	URL string

	// Header Authorization, Cookie 등은 마스킹되어 있습니다.
	Header http.Header

	// BodySnippet 응답 본문의 앞부분(최대 4KB)
	BodySnippet string

	// Cause 상태 코드에 대응하는 apperrors.AppError
	Cause error
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += fmt.Sprintf(" URL: %s", e.URL)
	}
	if e.BodySnippet != "" {
		msg += fmt.Sprintf(", Body: %s", e.BodySnippet)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}
