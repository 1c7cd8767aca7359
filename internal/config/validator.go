package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	// Slack 채널 이름(소문자, 숫자, '-', '_', '.') 또는 채널 ID(C0123ABCD)이며, '#'는 붙이지 않습니다.
	slackChannelRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,79}$`)
)

// fieldFlags 검증 실패 시 사용자가 어떤 실행 인자로 값을 줄 수 있는지 안내하기 위한 대응표입니다.
var fieldFlags = map[string]string{
	"AppConfig.http_server.listen_port": "--port",
	"AppConfig.intercom.app_id":         "--appid",
	"AppConfig.intercom.api_key":        "--apikey",
	"AppConfig.slack.token":             "--token",
	"AppConfig.slack.channel":           "--channel",
	"AppConfig.slack.backup_channel":    "--backupchannel",
	"AppConfig.failmail.email":          "--email",
}

// newValidator 새로운 Validator 인스턴스를 생성하고 커스텀 유효성 검사 함수를 등록합니다.
func newValidator() *validator.Validate {
	v := validator.New()

	// 검증 에러 메시지에 Go 구조체 필드명 대신 JSON 이름(예: backup_channel)을 보여주도록 설정합니다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("slack_channel", validateSlackChannel); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'slack_channel' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}

	return v
}

// validateSlackChannel 입력된 문자열이 '#' 없는 Slack 채널 이름 또는 ID인지 검증합니다.
func validateSlackChannel(fl validator.FieldLevel) bool {
	return slackChannelRegex.MatchString(fl.Field().String())
}

// checkStruct 구조체의 유효성을 검사하고, 사용자 친화적인 에러 메시지를 반환합니다.
func checkStruct(v *validator.Validate, s any, contextName string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}

	// 첫 번째 에러만 상세히 보고
	fieldErr := validationErrors[0]
	key := strings.TrimPrefix(fieldErr.Namespace(), "AppConfig.")

	var hint string
	if flagName, ok := fieldFlags[fieldErr.Namespace()]; ok {
		hint = fmt.Sprintf(" (실행 인자 %s 또는 환경 변수 %s%s)", flagName, EnvPrefix, strings.ToUpper(strings.ReplaceAll(key, ".", "__")))
	}

	switch fieldErr.Tag() {
	case "required":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 필수 항목 '%s'가 설정되지 않았습니다%s", contextName, key, hint))
	case "min", "max":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 '%s' 값이 허용 범위를 벗어났습니다: %v", contextName, key, fieldErr.Value()))
	case "slack_channel":
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 '%s'는 '#' 없는 Slack 채널 이름이어야 합니다: '%v'", contextName, key, fieldErr.Value()))
	default:
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 '%s' 값이 올바르지 않습니다: '%v' (조건: %s)", contextName, key, fieldErr.Value(), fieldErr.Tag()))
	}
}
