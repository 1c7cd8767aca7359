// Package handler Intercom Webhook 엔드포인트 핸들러를 제공합니다.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/darkkaiser/intercom-slack-relay/internal/relay"
	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/constants"
	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/httputil"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	"github.com/labstack/echo/v4"
)

// Relayer 수신한 알림 본문 한 건을 끝까지 처리합니다.
type Relayer interface {
	Relay(ctx context.Context, body []byte) relay.Result
}

// Handler Intercom Webhook 요청을 처리하는 핸들러
type Handler struct {
	relayer Relayer
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(relayer Relayer) *Handler {
	if relayer == nil {
		panic(constants.PanicMsgRelayerRequired)
	}

	return &Handler{relayer: relayer}
}

// IntercomHandler godoc
// @Summary Intercom 알림 수신
// @Description Intercom Webhook 알림을 받아 Slack 채널에 메시지로 전달합니다.
// @Description Content-Type과 관계없이 본문을 JSON으로 해석하며, 알림은 한 번에 하나씩 처리됩니다.
// @Description
// @Description 처리할 수 없는 알림(지원하지 않는 topic, 필드 누락, 빈 대화)은 422,
// @Description Intercom 사용자 조회나 Slack 게시 실패는 502로 응답합니다.
// @Tags Intercom
// @Accept json
// @Produce plain
// @Param notification body object true "Intercom Webhook 알림"
// @Success 200 {string} string "OK"
// @Failure 400 {object} response.ErrorResponse "본문이 JSON 객체가 아님"
// @Failure 413 {object} response.ErrorResponse "본문이 너무 큼"
// @Failure 422 {object} response.ErrorResponse "릴레이할 수 없는 알림"
// @Failure 429 {object} response.ErrorResponse "요청 속도 제한 초과"
// @Failure 500 {object} response.ErrorResponse "처리 중 예기치 못한 오류"
// @Failure 502 {object} response.ErrorResponse "Intercom 또는 Slack 통신 실패"
// @Router /intercom [post]
func (h *Handler) IntercomHandler(c echo.Context) error {
	req := c.Request()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			// BodyLimit 미들웨어가 한도 초과 시 반환하는 413
			return he
		}
		return httputil.NewBadRequestError(constants.ErrMsgBadRequestBodyReadFailed)
	}

	logger := applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"remote_ip":  c.RealIP(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		"bytes":      len(body),
	})
	logger.Debug(constants.LogMsgIntercomNotificationReceived)

	// Intercom이 연결을 먼저 끊더라도 릴레이는 끝까지 진행한다.
	// 처리 시간 한도는 대기열 순서가 돌아온 뒤 Relayer가 정한다.
	result := h.relayer.Relay(context.WithoutCancel(req.Context()), body)

	logger.WithFields(applog.Fields{
		"status":  result.Status.String(),
		"outcome": result.Outcome.String(),
	}).Info(constants.LogMsgIntercomNotificationHandled)

	return respond(c, result)
}

// respond 릴레이 결과를 HTTP 응답으로 바꿉니다.
func respond(c echo.Context, result relay.Result) error {
	switch result.Status {
	case relay.StatusDelivered:
		return httputil.OK(c)
	case relay.StatusNotRelayable:
		return httputil.NewUnprocessableEntityError(fmt.Sprintf("%s (%s)", constants.ErrMsgNotRelayable, result.Outcome))
	case relay.StatusUpstreamFailed:
		return httputil.NewBadGatewayError(constants.ErrMsgUpstreamFailed)
	case relay.StatusBadRequest:
		return httputil.NewBadRequestError(constants.ErrMsgBadRequestInvalidJSON)
	default:
		return httputil.NewInternalServerError(constants.ErrMsgInternalServer)
	}
}
