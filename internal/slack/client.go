// Package slack 정규화된 메시지를 Slack 채널로 전달합니다.
//
// 전달은 채널 참여(Join) -> 메시지 게시 순서로 이루어지며, Slack이 메시지가 너무 길다고(HTTP 414)
// 거절하면 본문을 절반씩 줄여가며 다시 게시합니다. 모든 게시는 프로세스 전체에서 직렬화되고,
// 게시가 끝날 때마다 1초를 기다려 Slack의 초당 1건 제한을 지킵니다.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/darkkaiser/intercom-slack-relay/internal/config"
	"github.com/darkkaiser/intercom-slack-relay/internal/failmail"
	"github.com/darkkaiser/intercom-slack-relay/internal/message"
	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	slackapi "github.com/slack-go/slack"
)

const component = "slack"

const (
	// username 게시되는 메시지의 작성자 이름
	username = "Intercom"

	// truncationTrailer 본문을 줄여서 게시할 때 끝에 붙이는 안내 문구
	truncationTrailer = "\n\n[This message was too long to relay to Slack. You'll have to click to Intercom to see the whole thing.]\n"

	// minShrinkLength 본문을 이보다 짧게 줄이지는 않습니다. 이 길이에서도 거절되면 전달 실패로 처리합니다.
	minShrinkLength = 64

	// maxPostAttempts 메시지 하나에 대한 최대 게시 시도 횟수
	maxPostAttempts = 16

	// postInterval 게시 사이의 최소 간격
	postInterval = time.Second

	// defaultTimeout Slack API 호출 하나에 허용되는 최대 시간
	defaultTimeout = 10 * time.Second

	// channelPageSize 채널 목록 조회 시 페이지당 개수
	channelPageSize = 200
)

// ErrDeliveryFailed 메시지 전달에 실패했습니다. 실패 내용은 이미 Reporter로 보고된 상태입니다.
var ErrDeliveryFailed = apperrors.New(apperrors.Unavailable, "Slack 메시지 전달에 실패했습니다")

// API Client가 사용하는 Slack Web API의 부분 집합입니다. (*slackapi.Client가 구현)
type API interface {
	GetConversationsContext(ctx context.Context, params *slackapi.GetConversationsParameters) ([]slackapi.Channel, string, error)
	JoinConversationContext(ctx context.Context, channelID string) (*slackapi.Channel, string, []string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Reporter 처리할 수 없는 장애를 운영자에게 알립니다.
type Reporter interface {
	Report(ctx context.Context, text string, opts ...failmail.Option)
}

// Client Slack 채널로 메시지를 전달하는 클라이언트입니다.
type Client struct {
	api      API
	reporter Reporter

	// postMu 채널 참여부터 게시 후 대기까지를 하나의 단위로 직렬화합니다.
	postMu sync.Mutex

	// wait 재시도와 게시 간격 대기에 사용합니다. (테스트에서 교체)
	wait func(ctx context.Context, d time.Duration) error

	channelMu  sync.Mutex
	channelIDs map[string]string
}

// New 설정으로 Slack Web API 클라이언트를 만들어 새로운 Client를 생성합니다.
func New(cfg config.SlackConfig, reporter Reporter) *Client {
	api := slackapi.New(cfg.Token,
		slackapi.OptionAPIURL(cfg.APIURL),
		slackapi.OptionHTTPClient(&http.Client{Timeout: defaultTimeout}),
	)

	return NewWithAPI(api, reporter)
}

// NewWithAPI 주어진 API 구현으로 새로운 Client를 생성합니다.
func NewWithAPI(api API, reporter Reporter) *Client {
	if api == nil {
		panic("slack: API는 nil일 수 없습니다")
	}
	if reporter == nil {
		panic("slack: Reporter는 nil일 수 없습니다")
	}

	return &Client{
		api:        api,
		reporter:   reporter,
		wait:       sleepContext,
		channelIDs: make(map[string]string),
	}
}

// Post msg를 channelName 채널에 게시합니다.
//
// 반환값:
//   - (true, nil): 게시 성공
//   - (false, nil): Slack이 요청을 받았지만 ok=false로 응답함 (보고하지 않음)
//   - (false, ErrDeliveryFailed): 전달 실패. 원인은 Slack 게시 없이(WithoutMirror) 한 번 보고됨
func (c *Client) Post(ctx context.Context, msg message.Message, channelName string) (bool, error) {
	ok, failure := c.deliver(ctx, msg, channelName)
	if failure != "" {
		// postMu를 놓은 뒤에 보고한다.
		c.reporter.Report(ctx, failure, failmail.WithoutMirror())
		return false, ErrDeliveryFailed
	}

	return ok, nil
}

// deliver 실패 시 보고할 문구를 반환합니다.
func (c *Client) deliver(ctx context.Context, msg message.Message, channelName string) (bool, string) {
	c.postMu.Lock()
	defer c.postMu.Unlock()

	channelID, err := c.join(ctx, channelName)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"channel": channelName,
			"error":   err,
		}).Error("Slack 채널 참여 실패")

		var statusErr slackapi.StatusCodeError
		if errors.As(err, &statusErr) {
			return false, fmt.Sprintf("Unexpected response code %d when joining Slack channel", statusErr.Code)
		}
		return false, fmt.Sprintf("Failure posting message to Slack:\n%s", apperrors.Diagnostic(err))
	}

	text := []rune(msg.Text)
	msglen := len(text)
	trailer := ""

	for attempt := 1; ; attempt++ {
		candidate := string(text[:msglen]) + trailer

		applog.WithComponentAndFields(component, applog.Fields{
			"channel": channelName,
			"attempt": attempt,
			"color":   msg.Color,
			"text":    candidate,
		}).Debug("Slack 메시지 게시 요청")

		_, ts, err := c.api.PostMessageContext(ctx, channelID,
			slackapi.MsgOptionUsername(username),
			slackapi.MsgOptionAttachments(slackapi.Attachment{
				Fallback: candidate,
				Text:     candidate,
				Color:    string(msg.Color),
			}),
		)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"channel": channelName,
				"ts":      ts,
				"attempt": attempt,
			}).Debug("Slack 메시지 게시 완료")

			c.throttle(ctx)
			return true, ""
		}

		var ackErr slackapi.SlackErrorResponse
		if errors.As(err, &ackErr) {
			applog.WithComponentAndFields(component, applog.Fields{
				"channel": channelName,
				"error":   ackErr.Err,
			}).Warn("Slack이 메시지 게시를 거부했습니다 (ok=false)")

			c.throttle(ctx)
			return false, ""
		}

		var statusErr slackapi.StatusCodeError
		if !errors.As(err, &statusErr) {
			var rateErr *slackapi.RateLimitedError
			if errors.As(err, &rateErr) {
				return false, fmt.Sprintf("Unexpected response code %d when posting message to Slack", http.StatusTooManyRequests)
			}
			return false, fmt.Sprintf("Failure posting message to Slack:\n%s", apperrors.Diagnostic(err))
		}
		if statusErr.Code != http.StatusRequestURITooLong {
			return false, fmt.Sprintf("Unexpected response code %d when posting message to Slack", statusErr.Code)
		}

		// 414: 본문을 절반으로 줄여서 다시 시도한다.
		// 안내 문구를 붙인 결과가 방금 거절된 것보다 짧지 않으면 다시 보내지 않는다.
		nextLen := max(msglen/2, minShrinkLength)
		shrinks := nextLen+utf8.RuneCountInString(truncationTrailer) < msglen+utf8.RuneCountInString(trailer)
		if attempt >= maxPostAttempts || msglen <= minShrinkLength || !shrinks {
			applog.WithComponentAndFields(component, applog.Fields{
				"channel":  channelName,
				"attempts": attempt,
				"length":   msglen,
			}).Error("Slack 메시지 길이 축소 한도 도달")

			return false, fmt.Sprintf("Slack kept rejecting the message as too long after %d attempts", attempt)
		}

		msglen = nextLen
		trailer = truncationTrailer

		applog.WithComponentAndFields(component, applog.Fields{
			"channel": channelName,
			"attempt": attempt,
			"length":  msglen,
		}).Info("Slack 응답 코드 414: 메시지를 절반으로 줄여 다시 게시합니다")

		if err := c.wait(ctx, postInterval); err != nil {
			return false, fmt.Sprintf("Failure posting message to Slack:\n%s", apperrors.Diagnostic(err))
		}
	}
}

// throttle 게시 간격을 보장합니다. 요청이 취소되어도 대기는 끝까지 수행합니다.
func (c *Client) throttle(ctx context.Context) {
	_ = c.wait(context.WithoutCancel(ctx), postInterval)
}

// join 채널 이름(또는 ID)을 ID로 바꾼 뒤 채널에 참여하고, 채널 ID를 반환합니다.
func (c *Client) join(ctx context.Context, channelName string) (string, error) {
	channelID, err := c.resolveChannelID(ctx, channelName)
	if err != nil {
		return "", err
	}

	ch, warning, _, err := c.api.JoinConversationContext(ctx, channelID)
	if err != nil {
		c.forgetChannelID(channelName)
		return "", err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"channel":    channelName,
		"channel_id": channelID,
		"warning":    warning,
	}).Debug("Slack 채널 참여 완료")

	if ch != nil && ch.ID != "" {
		return ch.ID, nil
	}
	return channelID, nil
}

// resolveChannelID 공개 채널 목록에서 이름이나 ID가 일치하는 채널을 찾습니다. 찾은 결과는 캐시됩니다.
func (c *Client) resolveChannelID(ctx context.Context, channelName string) (string, error) {
	c.channelMu.Lock()
	id, ok := c.channelIDs[channelName]
	c.channelMu.Unlock()
	if ok {
		return id, nil
	}

	params := &slackapi.GetConversationsParameters{
		Types:           []string{"public_channel"},
		ExcludeArchived: true,
		Limit:           channelPageSize,
	}

	for {
		channels, cursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", err
		}

		for _, ch := range channels {
			if ch.Name == channelName || ch.ID == channelName {
				c.channelMu.Lock()
				c.channelIDs[channelName] = ch.ID
				c.channelMu.Unlock()

				return ch.ID, nil
			}
		}

		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	return "", apperrors.Newf(apperrors.NotFound, "Slack 채널 '%s'을(를) 찾을 수 없습니다", channelName)
}

func (c *Client) forgetChannelID(channelName string) {
	c.channelMu.Lock()
	defer c.channelMu.Unlock()

	delete(c.channelIDs, channelName)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
