// Package intercom Intercom Webhook 알림의 해석, 본문 정리, 사용자 정보 조회를 담당합니다.
package intercom

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
	"github.com/darkkaiser/intercom-slack-relay/pkg/maputil"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// 릴레이가 처리하는 알림 Topic 목록
const (
	TopicAdminReplied  = "conversation.admin.replied"
	TopicUserReplied   = "conversation.user.replied"
	TopicAdminOpened   = "conversation.admin.opened"
	TopicAdminClosed   = "conversation.admin.closed"
	TopicAdminAssigned = "conversation.admin.assigned"
	TopicUserCreated   = "conversation.user.created"
	TopicAdminNoted    = "conversation.admin.noted"
)

// ErrNoConversationParts 알림이 가리키는 대화 파트 목록이 비어 있습니다. 전달할 메시지가 없을 뿐 실패는 아닙니다.
var ErrNoConversationParts = errors.New("intercom: 알림에 대화 파트가 없습니다")

var validate = validator.New()

// HTML Intercom이 보내는 서식 있는 메시지 본문입니다. Sanitize로 평문으로 바꿔 사용합니다.
type HTML string

// Notification 해석이 끝난 알림입니다. 각 구현체는 해당 Topic이 보장하는 필드만 가집니다.
type Notification interface {
	Topic() string
}

// AdminPart 상담원(Admin)이 만든 대화 파트와 그 대화의 고객 정보입니다.
type AdminPart struct {
	ConversationURL string `validate:"required"`
	UserID          string `validate:"required"`
	AuthorName      string `validate:"required"`
	Body            HTML
}

// UserPart 고객(User)이 만든 대화 파트와 그 대화의 담당자 정보입니다.
type UserPart struct {
	ConversationURL string `validate:"required"`
	AuthorID        string `validate:"required"`
	AssigneeName    string `validate:"required"`
	Body            HTML
}

// AdminReplied 상담원이 대화에 답장했습니다.
type AdminReplied struct{ AdminPart }

// UserReplied 고객이 대화에 답장했습니다.
type UserReplied struct{ UserPart }

// AdminOpened 상담원이 대화를 다시 열었습니다.
type AdminOpened struct{ AdminPart }

// AdminClosed 상담원이 대화를 종료했습니다.
type AdminClosed struct{ AdminPart }

// AdminAssigned 상담원이 대화를 다른 상담원에게 배정했습니다.
type AdminAssigned struct {
	AdminPart
	AssignedToName string `validate:"required"`
}

// UserCreated 고객이 새 대화를 시작했습니다.
type UserCreated struct{ UserPart }

// AdminNoted 상담원이 대화에 내부 메모를 남겼습니다.
type AdminNoted struct{ AdminPart }

func (AdminReplied) Topic() string  { return TopicAdminReplied }
func (UserReplied) Topic() string   { return TopicUserReplied }
func (AdminOpened) Topic() string   { return TopicAdminOpened }
func (AdminClosed) Topic() string   { return TopicAdminClosed }
func (AdminAssigned) Topic() string { return TopicAdminAssigned }
func (UserCreated) Topic() string   { return TopicUserCreated }
func (AdminNoted) Topic() string    { return TopicAdminNoted }

// ------------------------------------------------------------------------------------------------
// Webhook 페이로드 구조
// ------------------------------------------------------------------------------------------------

type rawRef struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type rawPart struct {
	ID         string  `json:"id"`
	PartType   string  `json:"part_type"`
	Body       HTML    `json:"body"`
	Author     rawRef  `json:"author"`
	AssignedTo *rawRef `json:"assigned_to"`
}

type rawConversation struct {
	ID       string  `json:"id"`
	User     *rawRef `json:"user"`
	Assignee *rawRef `json:"assignee"`
	Links    struct {
		ConversationWeb string `json:"conversation_web"`
	} `json:"links"`
	ConversationMessage *rawPart `json:"conversation_message"`
	ConversationParts   struct {
		Parts []rawPart `json:"conversation_parts"`
	} `json:"conversation_parts"`
}

type rawNotification struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
	Data      struct {
		Item *rawConversation `json:"item"`
	} `json:"data"`
}

// Envelope 로깅에 사용하는 알림의 공통 정보입니다.
type Envelope struct {
	ID        string
	Topic     string
	CreatedAt time.Time
}

// ParseNotification JSON으로 파싱된 Webhook 알림을 Topic별 Notification으로 변환합니다.
//
// 반환되는 에러:
//   - apperrors.Unsupported: 처리 대상이 아닌 Topic
//   - apperrors.ParsingFailed: Topic에 필요한 필드가 없거나 타입이 맞지 않음
//   - ErrNoConversationParts: 대화 파트 목록이 비어 있음
func ParseNotification(raw map[string]any) (Envelope, Notification, error) {
	n, err := maputil.Decode[rawNotification](raw, maputil.WithDecodeHook(mapstructure.DecodeHookFuncType(lenientTimeHook)))
	if err != nil {
		return Envelope{}, nil, apperrors.Wrap(err, apperrors.ParsingFailed, "알림 구조를 해석할 수 없습니다")
	}

	env := Envelope{ID: n.ID, Topic: n.Topic, CreatedAt: n.CreatedAt}

	if n.Topic == "" {
		return env, nil, apperrors.New(apperrors.ParsingFailed, "알림에 topic이 없습니다")
	}
	if !isSupportedTopic(n.Topic) {
		return env, nil, apperrors.Newf(apperrors.Unsupported, "지원하지 않는 알림 topic입니다: %s", n.Topic)
	}

	item := n.Data.Item
	if item == nil {
		return env, nil, apperrors.New(apperrors.ParsingFailed, "알림에 data.item이 없습니다")
	}

	ev, err := buildNotification(n.Topic, item)
	if err != nil {
		return env, nil, err
	}

	if err := validate.Struct(ev); err != nil {
		return env, nil, apperrors.Wrapf(err, apperrors.ParsingFailed, "%s 알림에 필요한 필드가 없습니다", n.Topic)
	}

	return env, ev, nil
}

// lenientTimeHook created_at은 로깅에만 쓰이므로 해석할 수 없는 값 때문에 알림 전체가 실패하지 않도록 Zero Value로 둔다.
// 숫자는 기본 Unix 타임스탬프 훅이 처리한다.
func lenientTimeHook(_ reflect.Type, t reflect.Type, data any) (any, error) {
	if t != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	switch v := data.(type) {
	case float64, float32, int, int64, time.Time:
		return data, nil
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return data, nil
		}
	case string:
		s := strings.TrimSpace(v)
		if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(sec, 0), nil
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, nil
}

func isSupportedTopic(topic string) bool {
	switch topic {
	case TopicAdminReplied, TopicUserReplied, TopicAdminOpened, TopicAdminClosed,
		TopicAdminAssigned, TopicUserCreated, TopicAdminNoted:
		return true
	}
	return false
}

func buildNotification(topic string, item *rawConversation) (Notification, error) {
	url := item.Links.ConversationWeb

	// 새 대화는 대화 파트 목록 대신 첫 메시지를 가진다.
	if topic == TopicUserCreated {
		m := item.ConversationMessage
		if m == nil {
			return nil, apperrors.New(apperrors.ParsingFailed, "알림에 data.item.conversation_message가 없습니다")
		}
		return UserCreated{UserPart{
			ConversationURL: url,
			AuthorID:        m.Author.ID,
			AssigneeName:    refName(item.Assignee),
			Body:            m.Body,
		}}, nil
	}

	// 나머지 Topic은 대화 파트 목록 중 첫 번째만 사용한다.
	if len(item.ConversationParts.Parts) == 0 {
		return nil, ErrNoConversationParts
	}
	p := item.ConversationParts.Parts[0]

	if topic == TopicUserReplied {
		return UserReplied{UserPart{
			ConversationURL: url,
			AuthorID:        p.Author.ID,
			AssigneeName:    refName(item.Assignee),
			Body:            p.Body,
		}}, nil
	}

	admin := AdminPart{
		ConversationURL: url,
		UserID:          refID(item.User),
		AuthorName:      p.Author.Name,
		Body:            p.Body,
	}

	switch topic {
	case TopicAdminReplied:
		return AdminReplied{admin}, nil
	case TopicAdminOpened:
		return AdminOpened{admin}, nil
	case TopicAdminClosed:
		return AdminClosed{admin}, nil
	case TopicAdminAssigned:
		return AdminAssigned{AdminPart: admin, AssignedToName: refName(p.AssignedTo)}, nil
	case TopicAdminNoted:
		return AdminNoted{admin}, nil
	}

	return nil, apperrors.New(apperrors.Internal, fmt.Sprintf("처리 로직이 정의되지 않은 topic입니다: %s", topic))
}

func refName(r *rawRef) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func refID(r *rawRef) string {
	if r == nil {
		return ""
	}
	return r.ID
}
