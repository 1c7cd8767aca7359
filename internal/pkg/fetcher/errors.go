package fetcher

import (
	"fmt"

	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
)

// NewErrResponseBodyTooLarge 본문을 읽는 도중 크기 제한을 넘었을 때의 에러를 생성합니다.
func NewErrResponseBodyTooLarge(limit int64) error {
	return apperrors.Newf(apperrors.InvalidInput, "응답 본문 크기가 제한(%d 바이트)을 초과했습니다", limit)
}

// NewErrResponseBodyTooLargeByContentLength Content-Length 헤더만으로 크기 제한 초과가 확인되었을 때의 에러를 생성합니다.
func NewErrResponseBodyTooLargeByContentLength(contentLength, limit int64) error {
	return apperrors.Newf(apperrors.InvalidInput, "응답 본문 크기(Content-Length: %d 바이트)가 제한(%d 바이트)을 초과했습니다", contentLength, limit)
}

func newErrHTTPStatus(errType apperrors.ErrorType, status, url string) error {
	message := fmt.Sprintf("HTTP 요청이 실패했습니다. 상태 코드: %s", status)
	if url != "" {
		message += fmt.Sprintf(" (URL: %s)", url)
	}
	return apperrors.New(errType, message)
}
