// Package v1 Intercom Webhook 수신 라우트를 등록합니다.
//
// Intercom의 Webhook 설정에는 경로가 고정되어 있으므로 버전 접두사(/api/v1) 없이
// 루트 경로에 등록한다.
package v1

import (
	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes Intercom Webhook 엔드포인트를 등록합니다.
//
//   - POST /intercom - Intercom 알림 수신 및 Slack 전달
func RegisterRoutes(e *echo.Echo, h *handler.Handler) {
	if h == nil {
		panic("v1: Handler는 nil일 수 없습니다")
	}

	e.POST("/intercom", h.IntercomHandler)
}
