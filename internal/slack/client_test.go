package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/darkkaiser/intercom-slack-relay/internal/config"
	"github.com/darkkaiser/intercom-slack-relay/internal/failmail/mocks"
	"github.com/darkkaiser/intercom-slack-relay/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postedAttachment struct {
	Fallback string `json:"fallback"`
	Text     string `json:"text"`
	Color    string `json:"color"`
}

type postRequest struct {
	channel    string
	username   string
	attachment postedAttachment
}

// fakeSlack Slack Web API 중 Client가 사용하는 세 개의 메서드를 흉내 냅니다.
type fakeSlack struct {
	mu sync.Mutex

	pages      [][]map[string]string
	joinStatus int

	// postStatuses 게시 시도별 응답 코드. 시도 횟수가 더 많으면 마지막 값을 반복합니다.
	postStatuses []int
	postNotOK    bool

	listCalls int
	joins     []string
	posts     []postRequest
}

func (f *fakeSlack) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		f.mu.Lock()
		defer f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/conversations.list"):
			page := 0
			if cursor := r.FormValue("cursor"); cursor != "" {
				_, _ = fmt.Sscanf(cursor, "page%d", &page)
			}
			f.listCalls++

			next := ""
			if page+1 < len(f.pages) {
				next = fmt.Sprintf("page%d", page+1)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":                true,
				"channels":          f.pages[page],
				"response_metadata": map[string]string{"next_cursor": next},
			})

		case strings.HasSuffix(r.URL.Path, "/conversations.join"):
			channel := r.FormValue("channel")
			f.joins = append(f.joins, channel)

			if f.joinStatus != 0 && f.joinStatus != http.StatusOK {
				w.WriteHeader(f.joinStatus)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":      true,
				"channel": map[string]string{"id": channel},
			})

		case strings.HasSuffix(r.URL.Path, "/chat.postMessage"):
			var atts []postedAttachment
			require.NoError(t, json.Unmarshal([]byte(r.FormValue("attachments")), &atts))
			require.Len(t, atts, 1)

			f.posts = append(f.posts, postRequest{
				channel:    r.FormValue("channel"),
				username:   r.FormValue("username"),
				attachment: atts[0],
			})

			status := http.StatusOK
			if len(f.postStatuses) > 0 {
				status = f.postStatuses[min(len(f.posts), len(f.postStatuses))-1]
			}
			switch {
			case status == http.StatusTooManyRequests:
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(status)
			case status != http.StatusOK:
				w.WriteHeader(status)
			case f.postNotOK:
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "not_in_channel"})
			default:
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": r.FormValue("channel"), "ts": "1700000000.000100"})
			}

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (f *fakeSlack) snapshot() (listCalls int, joins []string, posts []postRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listCalls, append([]string(nil), f.joins...), append([]postRequest(nil), f.posts...)
}

type recordingWait struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *recordingWait) wait(_ context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.waits = append(w.waits, d)
	return nil
}

func (w *recordingWait) durations() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]time.Duration(nil), w.waits...)
}

func defaultPages() [][]map[string]string {
	return [][]map[string]string{{
		{"id": "C001", "name": "general"},
		{"id": "C002", "name": "support"},
	}}
}

func setupClient(t *testing.T, f *fakeSlack) (*Client, *mocks.MockReporter, *recordingWait) {
	t.Helper()

	if f.pages == nil {
		f.pages = defaultPages()
	}

	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	rep := mocks.NewMockReporter()
	c := New(config.SlackConfig{Token: "xoxb-test", APIURL: srv.URL + "/"}, rep)

	w := &recordingWait{}
	c.wait = w.wait

	return c, rep, w
}

// ================================================================================
// 생성자
// ================================================================================

func TestNewWithAPI_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewWithAPI(nil, mocks.NewMockReporter()) })
	assert.Panics(t, func() { NewWithAPI(slackStub{}, nil) })
}

type slackStub struct{ API }

// ================================================================================
// 게시 성공
// ================================================================================

func TestPost_Success(t *testing.T) {
	t.Parallel()

	f := &fakeSlack{}
	c, rep, w := setupClient(t, f)

	ok, err := c.Post(context.Background(), message.New("Hello *world*", message.ColorCustomer), "support")
	require.NoError(t, err)
	assert.True(t, ok)

	_, joins, posts := f.snapshot()
	assert.Equal(t, []string{"C002"}, joins)
	require.Len(t, posts, 1)
	assert.Equal(t, "C002", posts[0].channel)
	assert.Equal(t, "Intercom", posts[0].username)
	assert.Equal(t, postedAttachment{Fallback: "Hello *world*", Text: "Hello *world*", Color: "1414ff"}, posts[0].attachment)

	assert.Equal(t, []time.Duration{time.Second}, w.durations(), "게시 후에는 1초를 기다려야 합니다")
	assert.Empty(t, rep.Reports())
}

func TestPost_ResolvesChannelAcrossPagesAndCaches(t *testing.T) {
	t.Parallel()

	f := &fakeSlack{pages: [][]map[string]string{
		{{"id": "C001", "name": "general"}},
		{{"id": "C009", "name": "support-backup"}, {"id": "C010", "name": "support"}},
	}}
	c, _, _ := setupClient(t, f)

	for i := 0; i < 2; i++ {
		ok, err := c.Post(context.Background(), message.New("hi", message.ColorAgent), "support")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	listCalls, joins, _ := f.snapshot()
	assert.Equal(t, 2, listCalls, "두 페이지를 한 번씩만 조회해야 합니다")
	assert.Equal(t, []string{"C010", "C010"}, joins, "게시할 때마다 채널에 참여해야 합니다")
}

func TestPost_ChannelID(t *testing.T) {
	t.Parallel()

	f := &fakeSlack{}
	c, _, _ := setupClient(t, f)

	ok, err := c.Post(context.Background(), message.New("hi", message.ColorAgent), "C001")
	require.NoError(t, err)
	assert.True(t, ok)

	_, joins, _ := f.snapshot()
	assert.Equal(t, []string{"C001"}, joins)
}

// ================================================================================
// 길이 초과(414) 처리
// ================================================================================

func TestPost_ShrinkAndRetry(t *testing.T) {
	t.Parallel()

	f := &fakeSlack{postStatuses: []int{http.StatusRequestURITooLong, http.StatusRequestURITooLong, http.StatusOK}}
	c, rep, w := setupClient(t, f)

	text := strings.Repeat("가", 1000)
	ok, err := c.Post(context.Background(), message.New(text, message.ColorAgent), "support")
	require.NoError(t, err)
	assert.True(t, ok)

	_, _, posts := f.snapshot()
	require.Len(t, posts, 3)

	assert.Equal(t, text, posts[0].attachment.Text, "첫 시도에는 전체 본문을 보내야 합니다")
	assert.Equal(t, strings.Repeat("가", 500)+truncationTrailer, posts[1].attachment.Text)
	assert.Equal(t, strings.Repeat("가", 250)+truncationTrailer, posts[2].attachment.Text)
	for _, p := range posts {
		assert.True(t, utf8.ValidString(p.attachment.Text))
		assert.Equal(t, p.attachment.Text, p.attachment.Fallback)
	}

	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, w.durations())
	assert.Empty(t, rep.Reports())
}

func TestPost_ShrinkTerminates(t *testing.T) {
	t.Parallel()

	f := &fakeSlack{postStatuses: []int{http.StatusRequestURITooLong}}
	c, rep, _ := setupClient(t, f)

	ok, err := c.Post(context.Background(), message.New(strings.Repeat("x", 100000), message.ColorAgent), "support")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	_, _, posts := f.snapshot()
	require.LessOrEqual(t, len(posts), maxPostAttempts)
	assert.Len(t, posts, 12)

	prev, prevTotal := -1, -1
	for i, p := range posts {
		included := utf8.RuneCountInString(strings.TrimSuffix(p.attachment.Text, truncationTrailer))
		total := utf8.RuneCountInString(p.attachment.Text)
		if i > 0 {
			assert.Less(t, included, prev, "시도할 때마다 본문 길이가 줄어야 합니다")
			assert.Less(t, total, prevTotal, "안내 문구를 포함한 전체 길이도 줄어야 합니다")
		}
		assert.GreaterOrEqual(t, included, minShrinkLength)
		prev, prevTotal = included, total
	}

	reports := rep.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "Slack kept rejecting the message as too long after 12 attempts", reports[0].Text)
	assert.False(t, reports[0].Mirrored)
}

func TestPost_ShortMessageTooLong(t *testing.T) {
	t.Parallel()

	f := &fakeSlack{postStatuses: []int{http.StatusRequestURITooLong}}
	c, rep, _ := setupClient(t, f)

	ok, err := c.Post(context.Background(), message.New("short", message.ColorAgent), "support")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	_, _, posts := f.snapshot()
	assert.Len(t, posts, 1)

	reports := rep.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "Slack kept rejecting the message as too long after 1 attempts", reports[0].Text)
}

func TestPost_ShrinkNeverLengthensPayload(t *testing.T) {
	t.Parallel()

	trailerLen := utf8.RuneCountInString(truncationTrailer)

	tests := []struct {
		name      string
		length    int
		wantPosts int
	}{
		{name: "안내 문구를 붙이면 더 길어지는 본문", length: 150, wantPosts: 1},
		{name: "절반과 안내 문구의 합이 같은 본문", length: 2 * trailerLen, wantPosts: 1},
		{name: "절반과 안내 문구의 합이 더 짧은 본문", length: 2*trailerLen + 1, wantPosts: 3},
		{name: "여러 번 줄일 수 있는 본문", length: 300, wantPosts: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeSlack{postStatuses: []int{http.StatusRequestURITooLong}}
			c, rep, _ := setupClient(t, f)

			ok, err := c.Post(context.Background(), message.New(strings.Repeat("y", tt.length), message.ColorAgent), "support")
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrDeliveryFailed)

			_, _, posts := f.snapshot()
			require.Len(t, posts, tt.wantPosts)
			for i := 1; i < len(posts); i++ {
				assert.Less(t, utf8.RuneCountInString(posts[i].attachment.Text), utf8.RuneCountInString(posts[i-1].attachment.Text))
			}

			reports := rep.Reports()
			require.Len(t, reports, 1)
			assert.Equal(t, fmt.Sprintf("Slack kept rejecting the message as too long after %d attempts", tt.wantPosts), reports[0].Text)
		})
	}
}

// ================================================================================
// 실패 처리
// ================================================================================

func TestPost_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		slack      *fakeSlack
		channel    string
		wantReport string
		wantPrefix bool
		wantPosts  int
	}{
		{
			name:       "채널 참여 응답 코드 오류",
			slack:      &fakeSlack{joinStatus: http.StatusForbidden},
			channel:    "support",
			wantReport: "Unexpected response code 403 when joining Slack channel",
		},
		{
			name:       "존재하지 않는 채널",
			slack:      &fakeSlack{},
			channel:    "nowhere",
			wantReport: "Failure posting message to Slack:\n",
			wantPrefix: true,
		},
		{
			name:       "게시 응답 코드 오류",
			slack:      &fakeSlack{postStatuses: []int{http.StatusInternalServerError}},
			channel:    "support",
			wantReport: "Unexpected response code 500 when posting message to Slack",
			wantPosts:  1,
		},
		{
			name:       "게시 요청 제한",
			slack:      &fakeSlack{postStatuses: []int{http.StatusTooManyRequests}},
			channel:    "support",
			wantReport: "Unexpected response code 429 when posting message to Slack",
			wantPosts:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, rep, w := setupClient(t, tt.slack)

			ok, err := c.Post(context.Background(), message.New("hello", message.ColorAgent), tt.channel)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrDeliveryFailed)

			_, _, posts := tt.slack.snapshot()
			assert.Len(t, posts, tt.wantPosts)
			assert.Empty(t, w.durations())

			reports := rep.Reports()
			require.Len(t, reports, 1)
			if tt.wantPrefix {
				assert.True(t, strings.HasPrefix(reports[0].Text, tt.wantReport), "report: %q", reports[0].Text)
			} else {
				assert.Equal(t, tt.wantReport, reports[0].Text)
			}
			assert.False(t, reports[0].Mirrored, "전달 경로의 실패는 Slack에 게시하지 않아야 합니다")
		})
	}
}

func TestPost_NotAcknowledged(t *testing.T) {
	t.Parallel()

	f := &fakeSlack{postNotOK: true}
	c, rep, w := setupClient(t, f)

	ok, err := c.Post(context.Background(), message.New("hello", message.ColorAgent), "support")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.Empty(t, rep.Reports(), "ok=false 응답은 보고하지 않습니다")
	assert.Equal(t, []time.Duration{time.Second}, w.durations())
}

// ================================================================================
// 직렬화
// ================================================================================

func TestPost_Serialized(t *testing.T) {
	t.Parallel()

	f := &fakeSlack{}
	c, _, _ := setupClient(t, f)

	var (
		mu     sync.Mutex
		active int
		peak   int
	)
	c.wait = func(_ context.Context, _ time.Duration) error {
		mu.Lock()
		active++
		peak = max(peak, active)
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			ok, err := c.Post(context.Background(), message.New(fmt.Sprintf("message %d", i), message.ColorAgent), "support")
			assert.NoError(t, err)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	_, _, posts := f.snapshot()
	assert.Len(t, posts, 5)
	assert.Equal(t, 1, peak, "게시 후 대기 중에는 다른 게시가 진행되면 안 됩니다")
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
