package middleware

import (
	"fmt"
	"sync"

	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/constants"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// ipRateLimiter IP 주소별 토큰 버킷(rate.Limiter)을 보관합니다.
//
// 요청을 보내는 쪽은 사실상 Intercom의 Webhook 발신 서버뿐이므로 보관하는 IP 수는 작게 유지된다.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	rate  rate.Limit
	burst int
}

func newIPRateLimiter(requestsPerSecond, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// allow ip에 할당된 버킷에서 토큰 하나를 꺼낼 수 있는지 확인합니다.
func (i *ipRateLimiter) allow(ip string) bool {
	i.mu.Lock()
	limiter, ok := i.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(i.rate, i.burst)
		i.limiters[ip] = limiter
	}
	i.mu.Unlock()

	return limiter.Allow()
}

// RateLimiting IP 기반 요청 속도 제한 미들웨어를 반환합니다.
//
// 제한을 넘긴 요청에는 Retry-After: 1 헤더와 함께 429 Too Many Requests로 응답한다.
// requestsPerSecond 또는 burst가 양수가 아니면 패닉이 발생한다.
func RateLimiting(requestsPerSecond, burst int) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 {
		panic(fmt.Sprintf(constants.PanicMsgRateLimitRequestsPerSecondInvalid, requestsPerSecond))
	}
	if burst <= 0 {
		panic(fmt.Sprintf(constants.PanicMsgRateLimitBurstInvalid, burst))
	}

	limiter := newIPRateLimiter(requestsPerSecond, burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if limiter.allow(ip) {
				return next(c)
			}

			applog.WithComponentAndFields(constants.ComponentMiddlewareRateLimit, applog.Fields{
				"remote_ip": ip,
				"path":      c.Request().URL.Path,
				"method":    c.Request().Method,
			}).Warn("요청 속도 제한 초과")

			c.Response().Header().Set("Retry-After", "1")

			return ErrRateLimitExceeded
		}
	}
}
