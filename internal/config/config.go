package config

import (
	"fmt"

	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "intercom-slack-relay"

	// DefaultFilename 실행 인자(--config)로 경로가 주어지지 않을 때 탐색하는 설정 파일명입니다.
	// 이 파일은 선택 사항이며, 없으면 기본값과 환경 변수, 실행 인자만으로 구성합니다.
	DefaultFilename = AppName + ".json"

	// EnvPrefix 설정을 덮어쓰는 환경 변수의 접두사입니다.
	EnvPrefix = "INTSLACK_"

	// DefaultIntercomBaseURL Intercom REST API의 기본 주소입니다.
	DefaultIntercomBaseURL = "https://api.intercom.io"

	// DefaultSlackAPIURL Slack Web API의 기본 주소입니다. (slack-go는 끝에 '/'가 있어야 합니다)
	DefaultSlackAPIURL = "https://slack.com/api/"

	// DefaultSMTPAddr 장애 메일을 전달할 로컬 메일 릴레이 주소입니다.
	DefaultSMTPAddr = "localhost:25"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
//
// 프로세스 시작 시 한 번 만들어져 각 컴포넌트의 생성자로 전달되며, 이후에는 변경되지 않습니다.
type AppConfig struct {
	Debug      bool             `json:"debug"`
	HTTPServer HTTPServerConfig `json:"http_server"`
	Intercom   IntercomConfig   `json:"intercom"`
	Slack      SlackConfig      `json:"slack"`
	Failmail   FailmailConfig   `json:"failmail"`
}

// HTTPServerConfig Intercom Webhook을 수신하는 HTTP 서버 설정
type HTTPServerConfig struct {
	ListenPort int `json:"listen_port" validate:"required,min=1,max=65535"`
}

// IntercomConfig 사용자 정보 조회(Enrichment)에 사용하는 Intercom 인증 정보
type IntercomConfig struct {
	AppID   string `json:"app_id" validate:"required"`
	APIKey  string `json:"api_key" validate:"required"`
	BaseURL string `json:"base_url" validate:"required,url"`
}

// SlackConfig 메시지를 전달할 Slack 워크스페이스와 채널 정보
type SlackConfig struct {
	Token         string `json:"token" validate:"required"`
	Channel       string `json:"channel" validate:"required,slack_channel"`
	BackupChannel string `json:"backup_channel" validate:"required,slack_channel"`
	APIURL        string `json:"api_url" validate:"required,url"`
}

// FailmailConfig 장애 발생 시 운영자에게 보내는 메일 설정
type FailmailConfig struct {
	Email    string `json:"email" validate:"required,email"`
	SMTPAddr string `json:"smtp_addr" validate:"required,hostname_port"`
}

// newDefaultConfig 가장 낮은 우선순위로 적용되는 기본 설정을 반환합니다.
// 필수 항목(포트, 인증 정보, 채널, 운영자 메일)에는 기본값이 없습니다.
func newDefaultConfig() AppConfig {
	return AppConfig{
		Intercom: IntercomConfig{
			BaseURL: DefaultIntercomBaseURL,
		},
		Slack: SlackConfig{
			APIURL: DefaultSlackAPIURL,
		},
		Failmail: FailmailConfig{
			SMTPAddr: DefaultSMTPAddr,
		},
	}
}

// validate 로드 직후 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	return checkStruct(validate, c, "애플리케이션 설정")
}

// VerifyRecommendations 강제하지는 않지만 운영상 권장되지 않는 설정에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.HTTPServer.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.HTTPServer.ListenPort))
	}
	if c.Slack.Channel == c.Slack.BackupChannel {
		warnings = append(warnings, fmt.Sprintf("기본 채널과 백업 채널이 동일합니다('%s'). 릴레이가 중단된 동안의 메시지를 확인할 수 없습니다", c.Slack.Channel))
	}

	return warnings
}

// Redacted 인증 정보를 가린 사본을 반환합니다. 로그에 설정을 남길 때 사용합니다.
func (c *AppConfig) Redacted() AppConfig {
	r := *c
	r.Intercom.APIKey = applog.Mask(r.Intercom.APIKey)
	r.Slack.Token = applog.Mask(r.Slack.Token)
	return r
}
