package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/intercom-slack-relay/internal/config"
	"github.com/darkkaiser/intercom-slack-relay/internal/failmail"
	"github.com/darkkaiser/intercom-slack-relay/internal/intercom"
	"github.com/darkkaiser/intercom-slack-relay/internal/pkg/version"
	"github.com/darkkaiser/intercom-slack-relay/internal/relay"
	"github.com/darkkaiser/intercom-slack-relay/internal/service/api"
	"github.com/darkkaiser/intercom-slack-relay/internal/slack"
	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
)

// @title Intercom Slack Relay API
// @version 1.0.0
// @description Intercom Webhook 알림을 Slack 채널 메시지로 전달하는 릴레이 서버의 API입니다.
// @description
// @description Intercom 앱의 Webhook 설정에서 POST /intercom 을 구독 주소로 등록하세요.
// @description 관리자 답변/배정/열기/닫기/메모와 사용자 답변/대화 생성 알림을 처리합니다.

// @contact.name DarkKaiser
// @contact.url https://github.com/DarkKaiser
// @contact.email darkkaiser@gmail.com

// @license.name MIT

// @BasePath /

const component = "main"

const banner = `
  ___       _                                      ____  _            _
 |_ _|_ __ | |_ ___ _ __ ___ ___  _ __ ___        / ___|| | __ _  ___| | __
  | || '_ \| __/ _ \ '__/ __/ _ \| '_ ' _ \ _____\___ \| |/ _' |/ __| |/ /
  | || | | | ||  __/ | | (_| (_) | | | | | |_____|___) | | (_| | (__|   <
 |___|_| |_|\__\___|_|  \___\___/|_| |_| |_|     |____/|_|\__,_|\___|_|\_\
                                                                   %s
--------------------------------------------------------------------------------
`

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(2)
	}

	// 2. 로그 시스템 초기화
	appLogCloser, err := applog.Setup(newLogOptions(appConfig.Debug))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()
	fmt.Printf(banner, buildInfo.Version)

	logger := applog.WithComponent(component)
	logger.WithFields(applog.Fields{
		"version": buildInfo.String(),
		"config":  appConfig.Redacted(),
	}).Info("릴레이 초기화 시작")

	for _, warning := range appConfig.VerifyRecommendations() {
		logger.Warn(warning)
	}

	// 3. 컴포넌트 구성
	app := newApp(appConfig)

	serviceStopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. 시작 안내 메시지 (실패는 Slack 클라이언트가 이미 보고하므로 구동은 계속한다)
	app.announceStartup(serviceStopCtx)

	// 5. Webhook 수신 서버 시작
	serviceStopWG := &sync.WaitGroup{}
	serviceStopWG.Add(1)
	if err := app.apiService.Start(serviceStopCtx, serviceStopWG); err != nil {
		logger.WithField("error", err).Error("API 서비스 시작 실패")
		stop()
		serviceStopWG.Wait()
		os.Exit(1)
	}

	logger.WithField("port", appConfig.HTTPServer.ListenPort).Info("릴레이 가동 완료")

	<-serviceStopCtx.Done()

	logger.Info("종료 신호 수신")
	serviceStopWG.Wait()
}

// app main에서 구성하는 컴포넌트 묶음입니다.
type app struct {
	appConfig *config.AppConfig

	reporter    *failmail.Reporter
	slackClient *slack.Client
	relay       *relay.Service
	apiService  *api.Service
}

// newApp 설정으로부터 장애 보고, Intercom 조회, Slack 게시, 릴레이, API 서비스를 연결합니다.
//
// Slack 클라이언트는 실패를 보고하기 위해 Reporter가 필요하고, Reporter는 장애 내용을
// Slack에도 게시하므로 Reporter를 먼저 만든 뒤 AttachMirror로 Slack 클라이언트를 연결한다.
func newApp(appConfig *config.AppConfig) *app {
	reporter := failmail.NewReporter(
		failmail.NewSMTPMailer(appConfig.Failmail.SMTPAddr),
		appConfig.Failmail.Email,
		appConfig.Slack.Channel,
		appConfig.Slack.BackupChannel,
	)

	slackClient := slack.New(appConfig.Slack, reporter)
	reporter.AttachMirror(slackClient)

	intercomClient := intercom.NewClient(appConfig.Intercom, nil, reporter)
	translator := relay.NewTranslator(intercomClient, reporter)
	relayService := relay.NewService(translator, slackClient, reporter, appConfig.Slack.Channel)

	return &app{
		appConfig:   appConfig,
		reporter:    reporter,
		slackClient: slackClient,
		relay:       relayService,
		apiService:  api.NewService(appConfig, relayService, reporter, version.Get()),
	}
}

// announceStartup 기본 채널에 릴레이 시작을 알리고 백업 채널을 안내합니다.
func (a *app) announceStartup(ctx context.Context) {
	msg := relay.StartupMessage(a.appConfig.Failmail.Email, a.appConfig.Slack.BackupChannel)
	if ok, err := a.slackClient.Post(ctx, msg, a.appConfig.Slack.Channel); err != nil || !ok {
		applog.WithComponentAndFields(component, applog.Fields{
			"channel": a.appConfig.Slack.Channel,
			"error":   err,
		}).Warn("시작 안내 메시지 게시 실패")
	}
}

func newLogOptions(debug bool) applog.Options {
	if debug {
		return applog.NewDevelopmentOptions(config.AppName)
	}
	return applog.NewProductionOptions(config.AppName)
}
