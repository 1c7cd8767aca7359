package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/darkkaiser/intercom-slack-relay/internal/message"
	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
)

// Poster 메시지를 Slack 채널에 게시합니다. (slack.Client가 구현)
type Poster interface {
	Post(ctx context.Context, msg message.Message, channelName string) (bool, error)
}

// Result Relay 한 번의 결과입니다.
type Result struct {
	Status  Status
	Outcome Outcome
}

// DefaultTimeout 알림 한 건의 처리(조회와 게시)에 허용하는 최대 시간
const DefaultTimeout = 60 * time.Second

// Service 수신한 알림 하나를 번역하고 Slack으로 전달합니다.
type Service struct {
	translator *Translator
	poster     Poster
	reporter   Reporter
	channel    string
	timeout    time.Duration

	// mu 알림은 한 번에 하나씩 끝까지 처리된다.
	mu sync.Mutex
}

// ServiceOption Service의 생성 옵션입니다.
type ServiceOption func(*Service)

// WithTimeout 알림 한 건의 처리 시간 한도를 지정합니다. 0 이하이면 DefaultTimeout을 사용합니다.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService 새로운 Service를 생성합니다.
func NewService(translator *Translator, poster Poster, reporter Reporter, channel string, opts ...ServiceOption) *Service {
	if translator == nil || poster == nil || reporter == nil {
		panic("relay: Translator, Poster, Reporter는 nil일 수 없습니다")
	}

	s := &Service{
		translator: translator,
		poster:     poster,
		reporter:   reporter,
		channel:    channel,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Relay 요청 본문(JSON)을 해석해 번역과 전달을 수행합니다.
//
// 본문의 Content-Type과 상관없이 JSON으로 해석하며, 처리 중 발생한 panic은 보고한 뒤 StatusFailed로 반환합니다.
// 처리 시간 한도는 앞선 알림의 처리가 끝나 차례가 돌아온 시점부터 계산하며, 호출자의 취소와 데드라인은 이어받지 않습니다.
func (s *Service) Relay(ctx context.Context, body []byte) (result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"panic": r,
			}).Error("알림 처리 중 panic 발생")

			s.reporter.Report(ctx, fmt.Sprintf("General failure processing Intercom notification:\n%v\n%s", r, debug.Stack()))
			result = Result{Status: StatusFailed}
		}
	}()

	raw, err := decodeBody(body)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Warn("알림 본문을 JSON으로 해석할 수 없습니다")

		s.reporter.Report(ctx, fmt.Sprintf("General failure processing Intercom notification:\n%v", err))
		return Result{Status: StatusBadRequest}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"topic": raw["topic"],
		"id":    raw["id"],
	}).Info("Intercom 알림 수신")
	applog.WithComponent(component).Debugf("Intercom 알림 본문:\n%s", body)

	msg, outcome := s.translator.Translate(ctx, raw)
	switch outcome {
	case OutcomeTranslated:
	case OutcomeEnrichmentFailed:
		return Result{Status: StatusUpstreamFailed, Outcome: outcome}
	default:
		applog.WithComponentAndFields(component, applog.Fields{
			"outcome": outcome,
		}).Info("알림을 전달 가능한 메시지로 변환하지 못했습니다")

		return Result{Status: StatusNotRelayable, Outcome: outcome}
	}

	ok, err := s.poster.Post(ctx, msg, s.channel)
	if err != nil || !ok {
		applog.WithComponentAndFields(component, applog.Fields{
			"channel": s.channel,
			"error":   err,
		}).Warn("Slack으로 메시지를 전달하지 못했습니다")

		return Result{Status: StatusUpstreamFailed, Outcome: outcome}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"channel": s.channel,
	}).Info("Intercom 알림을 Slack으로 전달했습니다")

	return Result{Status: StatusDelivered, Outcome: outcome}
}

func decodeBody(body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "알림 본문을 JSON으로 해석할 수 없습니다")
	}
	if raw == nil {
		return nil, apperrors.New(apperrors.InvalidInput, "알림 본문이 JSON 객체가 아닙니다")
	}
	return raw, nil
}
