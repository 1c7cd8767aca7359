package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/darkkaiser/intercom-slack-relay/internal/intercom"
	"github.com/stretchr/testify/require"
)

const conversationURL = "https://app.intercom.io/a/apps/app1/conversations/9"

// notificationJSON 모든 Topic이 필요로 하는 필드를 갖춘 알림 본문을 만듭니다.
func notificationJSON(topic string) string {
	return `{
  "type": "notification_event",
  "id": "notif_1",
  "topic": "` + topic + `",
  "created_at": 1500000000,
  "data": {
    "item": {
      "id": "9",
      "user": {"type": "user", "id": "user_1"},
      "assignee": {"type": "admin", "id": "adm_1", "name": "Carol"},
      "links": {"conversation_web": "` + conversationURL + `"},
      "conversation_message": {"body": "<p>Help!</p>", "author": {"type": "user", "id": "user_1"}},
      "conversation_parts": {
        "conversation_parts": [
          {"body": "<p>Hello</p><p>World</p>", "author": {"id": "author_1", "name": "Dave"}, "assigned_to": {"id": "adm_2", "name": "Erin"}}
        ]
      }
    }
  }
}`
}

func decodeJSON(t *testing.T, s string) map[string]any {
	t.Helper()

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

var testProfile = intercom.Profile{
	Name:    "<https://app.intercom.io/a/apps/app1/users/user_1|Nancy>",
	Company: "<https://app.intercom.io/a/apps/app1/companies/c1|Acme>",
}

// stubEnricher 조회 요청을 기록하고 고정된 결과를 돌려줍니다.
type stubEnricher struct {
	mu      sync.Mutex
	ids     []string
	profile *intercom.Profile
	err     error
}

func (e *stubEnricher) FetchProfile(_ context.Context, userID string) (*intercom.Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ids = append(e.ids, userID)
	if e.err != nil {
		return nil, e.err
	}
	if e.profile != nil {
		return e.profile, nil
	}
	p := testProfile
	return &p, nil
}

func (e *stubEnricher) calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.ids...)
}
