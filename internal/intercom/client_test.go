package intercom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/darkkaiser/intercom-slack-relay/internal/config"
	"github.com/darkkaiser/intercom-slack-relay/internal/failmail/mocks"
	fetchermocks "github.com/darkkaiser/intercom-slack-relay/internal/pkg/fetcher/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *mocks.MockReporter) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rep := mocks.NewMockReporter()
	c := NewClient(config.IntercomConfig{AppID: "app1", APIKey: "secret-key", BaseURL: srv.URL + "/"}, nil, rep)
	return c, rep
}

func TestNewClient_PanicsWithoutReporter(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewClient(config.IntercomConfig{AppID: "app1"}, nil, nil)
	})
}

// ================================================================================
// 성공 시나리오
// ================================================================================

func TestFetchProfile_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantName    string
		wantCompany string
	}{
		{
			name:        "이름과 회사",
			body:        `{"id": "u1", "name": "Alice", "email": "alice@example.com", "companies": {"companies": [{"id": "c1"}, {"id": "c2", "name": "Acme"}, {"id": "c3", "name": "Beta"}]}}`,
			wantName:    "<https://app.intercom.io/a/apps/app1/users/u1|Alice>",
			wantCompany: "<https://app.intercom.io/a/apps/app1/companies/c2|Acme Beta>",
		},
		{
			name:        "이름이 없으면 이메일",
			body:        `{"id": "u1", "name": null, "email": "bob@example.com", "companies": {"companies": []}}`,
			wantName:    "<https://app.intercom.io/a/apps/app1/users/u1|bob@example.com>",
			wantCompany: NoCompany,
		},
		{
			name:        "이름 있는 회사 없음",
			body:        `{"id": "u1", "name": "Carol", "companies": {"companies": [{"id": "c1"}, {"id": "c2", "name": ""}]}}`,
			wantName:    "<https://app.intercom.io/a/apps/app1/users/u1|Carol>",
			wantCompany: NoCompany,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, rep := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/u1", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Accept"))

				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "app1", user)
				assert.Equal(t, "secret-key", pass)

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			p, err := c.FetchProfile(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.wantCompany, p.Company)
			assert.Empty(t, rep.Reports())
		})
	}
}

// ================================================================================
// 실패 시나리오
// ================================================================================

func TestFetchProfile_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantReport string
		wantPrefix bool
	}{
		{
			name:       "존재하지 않는 사용자",
			status:     http.StatusNotFound,
			body:       `{"type": "error.list"}`,
			wantReport: "Unexpected status code 404 when getting user info from Intercom",
		},
		{
			name:       "서버 오류",
			status:     http.StatusInternalServerError,
			wantReport: "Unexpected status code 500 when getting user info from Intercom",
		},
		{
			name:       "JSON 아님",
			status:     http.StatusOK,
			body:       `<html>maintenance</html>`,
			wantReport: "Failure on processing Intercom user info:\n",
			wantPrefix: true,
		},
		{
			name:       "id 없음",
			status:     http.StatusOK,
			body:       `{"name": "Alice", "companies": {"companies": []}}`,
			wantReport: "Failure on processing Intercom user info:\n",
			wantPrefix: true,
		},
		{
			name:       "companies 없음",
			status:     http.StatusOK,
			body:       `{"id": "u1", "name": "Alice"}`,
			wantReport: "Failure on processing Intercom user info:\n",
			wantPrefix: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, rep := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			p, err := c.FetchProfile(context.Background(), "u1")
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrEnrichmentFailed)

			reports := rep.Reports()
			require.Len(t, reports, 1, "실패는 정확히 한 번 보고되어야 합니다")
			if tt.wantPrefix {
				assert.True(t, strings.HasPrefix(reports[0].Text, tt.wantReport), "report: %q", reports[0].Text)
			} else {
				assert.Equal(t, tt.wantReport, reports[0].Text)
			}
			assert.True(t, reports[0].Mirrored)
		})
	}
}

func TestFetchProfile_TransportError(t *testing.T) {
	t.Parallel()

	f := fetchermocks.NewMockFetcher()
	f.On("Do", mock.Anything).Return(nil, assert.AnError)

	rep := mocks.NewMockReporter()
	c := NewClient(config.IntercomConfig{AppID: "app1", APIKey: "k", BaseURL: "http://intercom.invalid"}, f, rep)

	_, err := c.FetchProfile(context.Background(), "u 1")
	assert.ErrorIs(t, err, ErrEnrichmentFailed)

	reports := rep.Reports()
	require.Len(t, reports, 1)
	assert.True(t, strings.HasPrefix(reports[0].Text, "Failure on processing Intercom user info:\n"))
	assert.Contains(t, reports[0].Text, assert.AnError.Error())

	req := f.Calls[0].Arguments.Get(0).(*http.Request)
	assert.Equal(t, "/users/u%201", req.URL.EscapedPath())
}
