package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	_ "github.com/darkkaiser/intercom-slack-relay/docs"
	"github.com/darkkaiser/intercom-slack-relay/internal/config"
	"github.com/darkkaiser/intercom-slack-relay/internal/failmail"
	"github.com/darkkaiser/intercom-slack-relay/internal/pkg/version"
	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/constants"
	"github.com/darkkaiser/intercom-slack-relay/internal/service/api/handler/system"
	v1 "github.com/darkkaiser/intercom-slack-relay/internal/service/api/v1"
	v1handler "github.com/darkkaiser/intercom-slack-relay/internal/service/api/v1/handler"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	"github.com/labstack/echo/v4"
)

// Reporter 서버 구동 실패를 운영자에게 알립니다. (failmail.Reporter가 구현)
type Reporter interface {
	Report(ctx context.Context, text string, opts ...failmail.Option)
}

// Service Intercom Webhook을 수신하는 HTTP 서버의 생명주기를 관리합니다.
//
// Start로 시작하면 별도의 고루틴에서 서버가 실행되며, 전달받은 context가 취소되면
// 진행 중인 요청을 기다린 뒤(최대 5초) 종료하고 WaitGroup에 완료를 알린다.
type Service struct {
	appConfig *config.AppConfig

	relayer  v1handler.Relayer
	reporter Reporter

	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

// NewService Service 인스턴스를 생성합니다.
func NewService(appConfig *config.AppConfig, relayer v1handler.Relayer, reporter Reporter, buildInfo version.Info) *Service {
	if appConfig == nil {
		panic(constants.PanicMsgAppConfigRequired)
	}
	if relayer == nil {
		panic(constants.PanicMsgRelayerRequired)
	}
	if reporter == nil {
		panic(constants.PanicMsgReporterRequired)
	}

	return &Service{
		appConfig: appConfig,

		relayer:  relayer,
		reporter: reporter,

		buildInfo: buildInfo,
	}
}

// Start API 서비스를 시작합니다.
//
// 이 함수는 즉시 반환되며, 서버는 고루틴에서 실행된다. 이미 실행 중이면 경고만 남기고
// serviceStopWG.Done()을 호출한다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarting)

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(constants.ComponentService).Warn(constants.LogMsgServiceAlreadyStarted)
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarted)

	return nil
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(serviceStopCtx, e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer 미들웨어와 라우트가 모두 등록된 Echo 인스턴스를 만듭니다.
func (s *Service) setupServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{
		Debug: s.appConfig.Debug,
	})

	RegisterRoutes(e, system.NewHandler(s.buildInfo))
	v1.RegisterRoutes(e, v1handler.NewHandler(s.relayer))

	return e
}

// startHTTPServer 모든 인터페이스의 설정된 포트에서 요청을 받기 시작합니다.
// 서버가 종료될 때까지 블로킹되며, 종료되면 done 채널을 닫는다.
func (s *Service) startHTTPServer(ctx context.Context, e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.HTTPServer.ListenPort
	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port": port,
	}).Info(constants.LogMsgServiceHTTPServerStarting)

	s.handleServerError(ctx, e.Start(fmt.Sprintf(":%d", port)))
}

// handleServerError 서버가 Shutdown 이외의 이유로 종료되면 로그를 남기고 운영자에게 보고합니다.
func (s *Service) handleServerError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceHTTPServerStopped)
		return
	}

	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port":  s.appConfig.HTTPServer.ListenPort,
		"error": err,
	}).Error(constants.LogMsgServiceHTTPServerFatalError)

	s.reporter.Report(context.WithoutCancel(ctx), fmt.Sprintf("Relay could not listen on port %d:\n%v", s.appConfig.HTTPServer.ListenPort, err))
}

// waitForShutdown 종료 신호를 기다렸다가 Graceful Shutdown을 수행합니다.
// 서버가 먼저 종료된 경우(포트 바인딩 실패 등)에는 상태만 정리한다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopping)
	case <-httpServerDone:
		s.cleanup()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"error": err,
		}).Error(constants.LogMsgServiceHTTPServerShutdownError)
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopped)
}
