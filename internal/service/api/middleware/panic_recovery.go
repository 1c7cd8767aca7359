package middleware

import (
	"net/http"
	"runtime"

	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/constants"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	"github.com/labstack/echo/v4"
)

// stackBufferSize panic 발생 시 스택 트레이스를 저장할 버퍼 크기 (4KB)
const stackBufferSize = 4 << 10

// PanicRecovery panic을 복구하고 로깅하는 미들웨어를 반환합니다.
//
// 릴레이 처리 중의 패닉은 relay.Service가 직접 복구하고 장애 보고까지 마치므로,
// 이 미들웨어는 그 밖(다른 미들웨어, 시스템 핸들러)에서 발생한 패닉만 잡아 500으로 응답한다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				err := NewErrPanicRecovered(r)

				stack := make([]byte, stackBufferSize)
				length := runtime.Stack(stack, false)

				fields := applog.Fields{
					"error": err,
					"stack": string(stack[:length]),
				}
				if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
					fields["request_id"] = requestID
				}

				applog.WithComponentAndFields(constants.ComponentMiddlewarePanicRecovery, fields).Error("PANIC RECOVERED")

				c.Error(err)
			}()

			return next(c)
		}
	}
}
