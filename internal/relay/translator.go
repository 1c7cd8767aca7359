// Package relay Intercom 알림을 Slack 메시지로 변환하고 전달하는 처리 흐름을 구성합니다.
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/darkkaiser/intercom-slack-relay/internal/failmail"
	"github.com/darkkaiser/intercom-slack-relay/internal/intercom"
	"github.com/darkkaiser/intercom-slack-relay/internal/message"
	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
)

const component = "relay"

// Enricher 알림에 표시할 사용자 정보를 조회합니다. (intercom.Client가 구현)
//
// 실패하면 구현체가 직접 보고한 뒤 에러를 반환해야 합니다.
type Enricher interface {
	FetchProfile(ctx context.Context, userID string) (*intercom.Profile, error)
}

// Reporter 처리할 수 없는 장애를 운영자에게 알립니다.
type Reporter interface {
	Report(ctx context.Context, text string, opts ...failmail.Option)
}

// Translator Intercom 알림을 Slack 메시지로 변환합니다.
type Translator struct {
	enricher Enricher
	reporter Reporter
}

// NewTranslator 새로운 Translator를 생성합니다.
func NewTranslator(enricher Enricher, reporter Reporter) *Translator {
	if enricher == nil || reporter == nil {
		panic("relay: Enricher와 Reporter는 nil일 수 없습니다")
	}

	return &Translator{
		enricher: enricher,
		reporter: reporter,
	}
}

// Translate 알림 하나를 메시지로 변환합니다. Outcome이 OutcomeTranslated일 때만 메시지가 유효합니다.
func (t *Translator) Translate(ctx context.Context, raw map[string]any) (message.Message, Outcome) {
	env, n, err := intercom.ParseNotification(raw)
	if err != nil {
		return message.Message{}, t.rejected(ctx, env, err)
	}

	profile, err := t.enricher.FetchProfile(ctx, enrichmentID(n))
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"topic": env.Topic,
			"id":    env.ID,
			"error": err,
		}).Warn("사용자 정보가 없어 알림을 전달하지 않습니다")

		return message.Message{}, OutcomeEnrichmentFailed
	}

	return compose(n, profile), OutcomeTranslated
}

func (t *Translator) rejected(ctx context.Context, env intercom.Envelope, err error) Outcome {
	fields := applog.Fields{
		"topic": env.Topic,
		"id":    env.ID,
		"error": err,
	}

	switch {
	case errors.Is(err, intercom.ErrNoConversationParts):
		applog.WithComponentAndFields(component, fields).Info("대화 파트가 없는 알림입니다")
		return OutcomeEmpty

	case apperrors.Is(err, apperrors.Unsupported):
		applog.WithComponentAndFields(component, fields).Warn("지원하지 않는 알림입니다")
		t.reporter.Report(ctx, "Received an unsupported Intercom notification type:\n"+env.Topic)
		return OutcomeUnsupported

	default:
		applog.WithComponentAndFields(component, fields).Error("알림 해석 실패")
		t.reporter.Report(ctx, "Failure parsing Intercom notification:\n"+apperrors.Diagnostic(err))
		return OutcomeMalformed
	}
}

// enrichmentID 사용자 정보를 조회할 대상입니다. 상담원 알림은 대화의 고객, 고객 알림은 작성자 본인입니다.
func enrichmentID(n intercom.Notification) string {
	switch v := n.(type) {
	case intercom.UserReplied:
		return v.AuthorID
	case intercom.UserCreated:
		return v.AuthorID
	case intercom.AdminReplied:
		return v.UserID
	case intercom.AdminOpened:
		return v.UserID
	case intercom.AdminClosed:
		return v.UserID
	case intercom.AdminAssigned:
		return v.UserID
	case intercom.AdminNoted:
		return v.UserID
	}
	return ""
}

// compose 알림 종류별 문구로 메시지를 만듭니다. 상담원의 활동은 노란색, 고객의 활동은 파란색으로 표시됩니다.
func compose(n intercom.Notification, p *intercom.Profile) message.Message {
	switch v := n.(type) {
	case intercom.AdminReplied:
		return agentMessage("%s replied to <%s|a conversation> with %s (%s)\n%s",
			v.AuthorName, v.ConversationURL, p.Name, p.Company, intercom.Sanitize(string(v.Body)))

	case intercom.AdminOpened:
		return agentMessage("%s opened <%s|a conversation> with %s (%s)\n%s",
			v.AuthorName, v.ConversationURL, p.Name, p.Company, intercom.Sanitize(string(v.Body)))

	case intercom.AdminClosed:
		return agentMessage("%s closed <%s|a conversation> with %s (%s)\n%s",
			v.AuthorName, v.ConversationURL, p.Name, p.Company, intercom.Sanitize(string(v.Body)))

	case intercom.AdminAssigned:
		return agentMessage("%s assigned <%s|a conversation> with %s (%s) to %s\n%s",
			v.AuthorName, v.ConversationURL, p.Name, p.Company, v.AssignedToName, intercom.Sanitize(string(v.Body)))

	case intercom.AdminNoted:
		return agentMessage("%s added <%s|an internal note> to <%s|a conversation> with %s (%s)\n%s",
			v.AuthorName, v.ConversationURL, v.ConversationURL, p.Name, p.Company, intercom.Sanitize(string(v.Body)))

	case intercom.UserReplied:
		return customerMessage("%s (%s) replied to <%s|a conversation> with %s\n%s",
			p.Name, p.Company, v.ConversationURL, v.AssigneeName, intercom.Sanitize(string(v.Body)))

	case intercom.UserCreated:
		return customerMessage("%s (%s) started a new <%s|conversation> with %s\n%s",
			p.Name, p.Company, v.ConversationURL, v.AssigneeName, intercom.Sanitize(string(v.Body)))
	}

	return message.Message{}
}

func agentMessage(format string, args ...any) message.Message {
	return message.New(fmt.Sprintf(format, args...), message.ColorAgent)
}

func customerMessage(format string, args ...any) message.Message {
	return message.New(fmt.Sprintf(format, args...), message.ColorCustomer)
}
