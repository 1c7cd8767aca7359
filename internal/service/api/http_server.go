package api

import (
	"time"

	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/constants"
	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/httputil"
	appmiddleware "github.com/darkkaiser/intercom-slack-relay/internal/service/api/middleware"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HTTPServerConfig HTTP 서버 생성에 필요한 설정을 정의합니다.
type HTTPServerConfig struct {
	// Debug Echo 프레임워크의 디버그 모드 활성화 여부
	Debug bool

	// RequestTimeout 요청 하나의 최대 처리 시간 (기본값: 60초)
	RequestTimeout time.Duration
}

// NewHTTPServer 미들웨어 체인이 구성된 Echo 인스턴스를 생성합니다.
//
// 미들웨어는 다음 순서로 적용됩니다:
//
//  1. PanicRecovery - 뒤따르는 미들웨어와 핸들러의 panic 복구
//  2. RequestID - X-Request-ID 부여 (로그 추적용)
//  3. Server 헤더 제거
//  4. HTTPLogger - 요청/응답 로깅 (429, 413 응답도 기록되도록 제한 미들웨어보다 앞에 둔다)
//  5. RateLimiting - IP 기반 요청 제한 (초당 20, 버스트 40)
//  6. BodyLimit - 요청 본문 크기 제한 (2MB, 초과 시 413)
//  7. ContextTimeout - 요청 컨텍스트에 처리 시간 제한 설정 (기본 60초)
//  8. Secure - 보안 헤더 추가
//
// 라우트는 포함되지 않으며, 반환된 Echo 인스턴스에 별도로 등록해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	// 느린 클라이언트가 연결을 붙잡지 못하도록 소켓 단위 타임아웃을 건다.
	e.Server.ReadTimeout = constants.DefaultReadTimeout
	e.Server.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	e.Server.WriteTimeout = constants.DefaultWriteTimeout
	e.Server.IdleTimeout = constants.DefaultIdleTimeout

	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}
	e.HTTPErrorHandler = httputil.ErrorHandler

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = constants.DefaultRequestTimeout
	}

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	e.Use(appmiddleware.HTTPLogger())
	e.Use(appmiddleware.RateLimiting(constants.DefaultRateLimitPerSecond, constants.DefaultRateLimitBurst))
	e.Use(middleware.BodyLimit(constants.DefaultMaxBodySize))
	e.Use(middleware.ContextTimeout(timeout))
	e.Use(middleware.Secure())

	return e
}
