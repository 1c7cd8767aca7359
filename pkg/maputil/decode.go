// Package maputil JSON 등으로 파싱된 느슨한 맵(map[string]any) 데이터를 구조체로 변환하는 유틸리티를 제공합니다.
//
// Webhook 페이로드처럼 필드 구성이 이벤트마다 달라지는 입력을 타입이 있는 구조체로 옮겨,
// 필드 접근에 대한 가정이 코드 곳곳에 흩어지지 않도록 하는 것이 목적입니다.
package maputil

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode 입력 데이터를 제네릭 타입 T의 구조체로 변환하여 반환합니다.
//
// 기본 동작:
//   - `json` 태그 기준으로 필드를 매핑합니다.
//   - 유연한 타입 변환(Weakly Typed)을 허용합니다. 예: 123 (number) -> "123" (string)
//   - 구조체에 없는 필드는 무시합니다.
//   - Unix 타임스탬프(초 단위 숫자)는 time.Time 필드로 변환됩니다.
//
// 사용 예시:
//
//	n, err := maputil.Decode[Notification](raw)
//	n, err := maputil.Decode[Notification](raw, maputil.WithDecodeHook(hook))
func Decode[T any](input any, opts ...Option) (*T, error) {
	cfg := &decodingConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	output := new(T)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook:       cfg.buildDecodeHook(),
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("입력 데이터를 %T(으)로 디코딩하는 데 실패했습니다: %w", output, err)
	}

	return output, nil
}

type decodingConfig struct {
	extraHooks []mapstructure.DecodeHookFunc
}

// buildDecodeHook [사용자 정의 훅] -> [기본 내장 훅] 순으로 실행되는 훅 체인을 만듭니다.
func (c *decodingConfig) buildDecodeHook() mapstructure.DecodeHookFunc {
	hooks := make([]mapstructure.DecodeHookFunc, 0, len(c.extraHooks)+2)
	hooks = append(hooks, c.extraHooks...)
	hooks = append(hooks,
		unixToTimeHookFunc(),
		trimStringHookFunc(),
	)

	return mapstructure.ComposeDecodeHookFunc(hooks...)
}

// Option 디코딩 설정을 커스터마이징하기 위한 함수형 옵션 타입입니다.
type Option func(*decodingConfig)

// WithDecodeHook 기본 훅보다 먼저 실행될 사용자 정의 변환 훅을 추가합니다.
func WithDecodeHook(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(c *decodingConfig) {
		c.extraHooks = append(c.extraHooks, hooks...)
	}
}
