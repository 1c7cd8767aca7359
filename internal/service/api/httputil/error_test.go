package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/constants"
	"github.com/darkkaiser/intercom-slack-relay/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Error Handler Tests
// =============================================================================

type logEntry struct {
	Level      string `json:"level"`
	Message    string `json:"msg"`
	StatusCode int    `json:"status_code"`
	RemoteIP   string `json:"remote_ip"`
	RequestID  string `json:"request_id"`
}

// 전역 로거를 바꾸므로 t.Parallel()을 사용하지 않는다.
func TestErrorHandler(t *testing.T) {
	buf := testutil.CaptureLog(t)

	tests := []struct {
		name           string
		method         string
		err            error
		setupContext   func(c echo.Context, req *http.Request, rec *httptest.ResponseRecorder)
		expectedStatus int
		expectedJSON   string
		expectedLog    *logEntry
		expectNoLog    bool
	}{
		{
			name:           "404_고정 메시지",
			method:         http.MethodGet,
			err:            echo.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedJSON:   `{"result_code":404,"message":"` + constants.ErrMsgNotFound + `"}`,
			expectedLog:    &logEntry{Level: "warning", Message: "HTTP 4xx: 클라이언트 요청 오류", StatusCode: http.StatusNotFound},
		},
		{
			name:           "413_고정 메시지",
			method:         http.MethodPost,
			err:            echo.ErrStatusRequestEntityTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedJSON:   `{"result_code":413,"message":"` + constants.ErrMsgRequestEntityTooLarge + `"}`,
		},
		{
			name:           "422_ErrorResponse 메시지",
			method:         http.MethodPost,
			err:            NewUnprocessableEntityError("릴레이할 수 없는 알림입니다 (unsupported)"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedJSON:   `{"result_code":422,"message":"릴레이할 수 없는 알림입니다 (unsupported)"}`,
			expectedLog:    &logEntry{Level: "warning", StatusCode: http.StatusUnprocessableEntity},
		},
		{
			name:           "502_ErrorResponse 메시지",
			method:         http.MethodPost,
			err:            NewBadGatewayError(constants.ErrMsgUpstreamFailed),
			expectedStatus: http.StatusBadGateway,
			expectedJSON:   `{"result_code":502,"message":"` + constants.ErrMsgUpstreamFailed + `"}`,
			expectedLog:    &logEntry{Level: "error", Message: "HTTP 5xx: 서버 내부 오류", StatusCode: http.StatusBadGateway},
		},
		{
			name:           "일반 에러는 500",
			method:         http.MethodGet,
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedJSON:   `{"result_code":500,"message":"` + constants.ErrMsgInternalServer + `"}`,
			expectedLog:    &logEntry{Level: "error", StatusCode: http.StatusInternalServerError},
		},
		{
			name:   "로깅 필드_IP 및 RequestID",
			method: http.MethodPost,
			err:    echo.NewHTTPError(http.StatusBadRequest, "Bad Request"),
			setupContext: func(c echo.Context, req *http.Request, rec *httptest.ResponseRecorder) {
				req.RemoteAddr = "192.168.1.100:12345"
				rec.Header().Set(echo.HeaderXRequestID, "req-123")
			},
			expectedStatus: http.StatusBadRequest,
			expectedJSON:   `{"result_code":400,"message":"Bad Request"}`,
			expectedLog:    &logEntry{RemoteIP: "192.168.1.100", RequestID: "req-123"},
		},
		{
			name:           "HEAD 요청은 본문 없음",
			method:         http.MethodHead,
			err:            echo.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "이미 응답이 커밋된 경우",
			method: http.MethodGet,
			err:    errors.New("error after write"),
			setupContext: func(c echo.Context, req *http.Request, rec *httptest.ResponseRecorder) {
				c.Response().Committed = true
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "3xx는 로그를 남기지 않음",
			method:         http.MethodGet,
			err:            echo.NewHTTPError(http.StatusFound, "Redirecting"),
			expectedStatus: http.StatusFound,
			expectedJSON:   `{"result_code":302,"message":"Redirecting"}`,
			expectNoLog:    true,
		},
		{
			name:           "메시지 타입 불일치(int)는 기본 메시지",
			method:         http.MethodGet,
			err:            echo.NewHTTPError(http.StatusBadRequest, 12345),
			expectedStatus: http.StatusBadRequest,
			expectedJSON:   `{"result_code":400,"message":"` + constants.ErrMsgInternalServer + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			e := echo.New()
			req := httptest.NewRequest(tt.method, "/intercom", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.setupContext != nil {
				tt.setupContext(c, req, rec)
			}

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedJSON != "" {
				assert.JSONEq(t, tt.expectedJSON, rec.Body.String())
			} else {
				assert.Empty(t, rec.Body.String())
			}

			if tt.expectNoLog {
				assert.Empty(t, buf.String())
				return
			}
			if tt.expectedLog == nil {
				return
			}

			var entry logEntry
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "로그 파싱 실패: %s", buf.String())
			if tt.expectedLog.Level != "" {
				assert.Equal(t, tt.expectedLog.Level, entry.Level)
			}
			if tt.expectedLog.Message != "" {
				assert.Equal(t, tt.expectedLog.Message, entry.Message)
			}
			if tt.expectedLog.StatusCode != 0 {
				assert.Equal(t, tt.expectedLog.StatusCode, entry.StatusCode)
			}
			if tt.expectedLog.RemoteIP != "" {
				assert.Equal(t, tt.expectedLog.RemoteIP, entry.RemoteIP)
			}
			if tt.expectedLog.RequestID != "" {
				assert.Equal(t, tt.expectedLog.RequestID, entry.RequestID)
			}
		})
	}
}
