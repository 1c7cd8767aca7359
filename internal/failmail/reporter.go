// Package failmail 릴레이 처리 중 복구할 수 없는 실패를 운영자에게 알립니다.
//
// 모든 실패는 운영자에게 메일로 전송되며, 별도로 억제하지 않는 한 기본 Slack 채널에도
// danger 색상의 메시지로 한 번 더 게시(Mirroring)됩니다.
package failmail

import (
	"context"
	"fmt"
	"sync"

	"github.com/darkkaiser/intercom-slack-relay/internal/message"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
)

const (
	// component 로깅용 컴포넌트 이름
	component = "failmail"

	// Subject 장애 메일의 제목
	Subject = "intslack failure"
)

// Mailer 텍스트 메일 한 통을 전송합니다.
type Mailer interface {
	Send(ctx context.Context, from string, to []string, subject, body string) error
}

// Poster 장애 내용을 Slack 채널에 게시합니다. (slack.Client가 구현)
type Poster interface {
	Post(ctx context.Context, msg message.Message, channelName string) (bool, error)
}

// Option Report 호출 단위의 동작을 조정합니다.
type Option func(*reportOptions)

type reportOptions struct {
	mirror bool
}

// WithoutMirror Slack 채널로의 게시를 생략합니다.
// Slack 전송 경로 자체에서 발생한 실패를 보고할 때 반드시 사용해야 합니다.
func WithoutMirror() Option {
	return func(o *reportOptions) {
		o.mirror = false
	}
}

// MirrorEnabled opts를 적용했을 때 Slack 게시가 수행되는지 여부를 반환합니다.
func MirrorEnabled(opts ...Option) bool {
	o := reportOptions{mirror: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o.mirror
}

// Reporter 장애 메일 전송과 Slack 게시를 담당합니다.
type Reporter struct {
	mailer   Mailer
	operator string

	channel       string
	backupChannel string

	mu     sync.RWMutex
	mirror Poster
}

// NewReporter 새로운 Reporter를 생성합니다.
//
// Slack 클라이언트도 실패 보고를 위해 Reporter를 필요로 하므로, Poster는 생성 이후 AttachMirror로 연결합니다.
func NewReporter(mailer Mailer, operator, channel, backupChannel string) *Reporter {
	if mailer == nil {
		panic("failmail: Mailer는 필수입니다")
	}

	return &Reporter{
		mailer:        mailer,
		operator:      operator,
		channel:       channel,
		backupChannel: backupChannel,
	}
}

// AttachMirror 장애 내용을 게시할 Poster를 연결합니다.
func (r *Reporter) AttachMirror(p Poster) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mirror = p
}

// Report 운영자에게 장애 메일을 보내고, WithoutMirror가 없으면 기본 채널에도 게시합니다.
//
// 메일 전송이나 게시의 실패는 로그로만 남기며 다시 보고하지 않습니다.
// 요청 Context가 취소되더라도 보고는 끝까지 수행됩니다.
func (r *Reporter) Report(ctx context.Context, text string, opts ...Option) {
	mirrored := MirrorEnabled(opts...)

	ctx = context.WithoutCancel(ctx)

	applog.WithComponentAndFields(component, applog.Fields{
		"to":     r.operator,
		"mirror": mirrored,
	}).Infof("장애 메일 발송:\n%s", text)

	if err := r.mailer.Send(ctx, r.operator, []string{r.operator}, Subject, text); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"to":    r.operator,
			"error": err,
		}).Error("장애 메일 발송 실패")
	}

	if !mirrored {
		return
	}

	r.mu.RLock()
	mirror := r.mirror
	r.mu.RUnlock()

	if mirror == nil {
		applog.WithComponent(component).Warn("Slack 게시 대상이 연결되지 않아 장애 메시지 게시를 건너뜁니다")
		return
	}

	if ok, err := mirror.Post(ctx, r.mirrorMessage(text), r.channel); err != nil || !ok {
		applog.WithComponentAndFields(component, applog.Fields{
			"channel": r.channel,
			"error":   err,
		}).Error("장애 메시지 Slack 게시 실패")
	}
}

func (r *Reporter) mirrorMessage(text string) message.Message {
	return message.New(
		fmt.Sprintf("!!! Error relaying message from Intercom to Slack. <mailto:%[1]s|%[1]s> will look into it. \nCheck #%[2]s for missed message.\n%[3]s", r.operator, r.backupChannel, text),
		message.ColorDanger,
	)
}
