package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiting_InputValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		requestsPerSecond int
		burst             int
		expectedPanic     string
	}{
		{"정상 값", 10, 20, ""},
		{"requestsPerSecond 0", 0, 20, "RateLimiting: requestsPerSecond는 양수여야 합니다 (현재값: 0)"},
		{"requestsPerSecond 음수", -1, 20, "RateLimiting: requestsPerSecond는 양수여야 합니다 (현재값: -1)"},
		{"burst 0", 10, 0, "RateLimiting: burst는 양수여야 합니다 (현재값: 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.expectedPanic == "" {
				assert.NotPanics(t, func() { RateLimiting(tt.requestsPerSecond, tt.burst) })
				return
			}
			assert.PanicsWithValue(t, tt.expectedPanic, func() { RateLimiting(tt.requestsPerSecond, tt.burst) })
		})
	}
}

func TestRateLimiting_Burst(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Use(RateLimiting(1, 3))
	e.POST("/intercom", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/intercom", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, send("10.0.0.1").Code, "버스트 이내의 요청 %d는 허용되어야 합니다", i)
	}

	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "다른 IP는 별도의 버킷을 사용해야 합니다")
}
