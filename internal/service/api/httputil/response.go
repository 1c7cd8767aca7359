package httputil

import (
	"net/http"

	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/model/response"
	"github.com/labstack/echo/v4"
)

func newError(code int, message string) error {
	return echo.NewHTTPError(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}

// NewBadRequestError 400 Bad Request 에러를 생성합니다
func NewBadRequestError(message string) error {
	return newError(http.StatusBadRequest, message)
}

// NewUnprocessableEntityError 422 Unprocessable Entity 에러를 생성합니다
func NewUnprocessableEntityError(message string) error {
	return newError(http.StatusUnprocessableEntity, message)
}

// NewTooManyRequestsError 429 Too Many Requests 에러를 생성합니다
func NewTooManyRequestsError(message string) error {
	return newError(http.StatusTooManyRequests, message)
}

// NewInternalServerError 500 Internal Server Error 에러를 생성합니다
func NewInternalServerError(message string) error {
	return newError(http.StatusInternalServerError, message)
}

// NewBadGatewayError 502 Bad Gateway 에러를 생성합니다
func NewBadGatewayError(message string) error {
	return newError(http.StatusBadGateway, message)
}

// OK 릴레이 성공 응답(200, text/plain "OK")을 반환합니다.
func OK(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
