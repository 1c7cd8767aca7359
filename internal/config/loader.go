package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// flagKeys 명령행 인자 이름과 설정 키의 대응 관계입니다.
var flagKeys = map[string]string{
	"port":          "http_server.listen_port",
	"appid":         "intercom.app_id",
	"apikey":        "intercom.api_key",
	"token":         "slack.token",
	"channel":       "slack.channel",
	"backupchannel": "slack.backup_channel",
	"email":         "failmail.email",
	"debug":         "debug",
}

// Load 명령행 인자(args, 프로그램 이름 제외)를 해석하여 애플리케이션 설정을 로드합니다.
//
// 우선순위 (뒤가 앞을 덮어씀):
//  1. 기본값
//  2. JSON 설정 파일 (--config, 기본값 DefaultFilename, 없으면 건너뜀)
//  3. 환경 변수 (INTSLACK_ 접두사, 예: INTSLACK_SLACK__TOKEN -> slack.token)
//  4. 명령행 인자 (--port --appid --apikey --token --channel --backupchannel --email --debug)
//
// -h/--help가 주어지면 flag.ErrHelp를 감싼 에러를 반환합니다.
func Load(args []string, output io.Writer) (*AppConfig, error) {
	fs, configFile := newFlagSet(output)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "명령행 인자 해석에 실패했습니다")
	}

	explicitConfig := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	if err := k.Load(structs.Provider(newDefaultConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드
	if err := k.Load(file.Provider(*configFile), json.Parser()); err != nil {
		switch {
		case os.IsNotExist(err) && !explicitConfig:
			// 기본 설정 파일은 선택 사항이다.
		case os.IsNotExist(err):
			return nil, apperrors.Wrap(err, apperrors.NotFound, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", *configFile))
		default:
			return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", *configFile))
		}
	}

	// 3. 환경 변수 로드
	if err := k.Load(env.Provider(EnvPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 명시적으로 전달된 명령행 인자 적용 (최우선 순위)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || setErr != nil {
			return
		}
		setErr = k.Set(key, f.Value.(flag.Getter).Get())
	})
	if setErr != nil {
		return nil, apperrors.Wrap(setErr, apperrors.System, "명령행 인자를 설정에 반영하는데 실패했습니다")
	}

	// 5. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 설정 파일에 오타가 있는 키가 조용히 무시되지 않도록 한다.
			WeaklyTypedInput: true, // 환경 변수는 모두 문자열로 들어온다.
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 6. 유효성 검사
	if err := appConfig.validate(); err != nil {
		return nil, err
	}

	return &appConfig, nil
}

func newFlagSet(output io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(output)

	configFile := fs.String("config", DefaultFilename, "JSON configuration file (optional)")
	fs.Int("port", 0, "TCP port to listen on for Intercom notifications")
	fs.String("appid", "", "Intercom App ID")
	fs.String("apikey", "", "Intercom API Key")
	fs.String("token", "", "Slack API token")
	fs.String("channel", "", "Slack channel to send messages to (no hash)")
	fs.String("backupchannel", "", "Backup channel with native relay pointing at it (no hash)")
	fs.String("email", "", "E-mail address of who to contact on failures")
	fs.Bool("debug", false, "Enable debug logging")

	return fs, configFile
}

// normalizeEnvKey 환경 변수 이름을 설정 키로 변환합니다.
// 예: INTSLACK_HTTP_SERVER__LISTEN_PORT -> http_server.listen_port
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}
