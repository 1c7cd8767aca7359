package maputil

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	stringType = reflect.TypeOf("")
)

// unixToTimeHookFunc 초 단위 Unix 타임스탬프를 time.Time으로 변환합니다.
//
// encoding/json은 숫자를 float64로 디코딩하므로 float64, 정수형, json.Number를 모두 허용합니다.
// 0은 "값 없음"으로 보고 time.Time의 Zero Value를 돌려줍니다.
func unixToTimeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != timeType {
			return data, nil
		}

		var sec int64
		switch v := data.(type) {
		case float64:
			sec = int64(v)
		case float32:
			sec = int64(v)
		case int:
			sec = int64(v)
		case int64:
			sec = v
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return data, nil
			}
			sec = n
		default:
			return data, nil
		}

		if sec == 0 {
			return time.Time{}, nil
		}
		return time.Unix(sec, 0), nil
	}
}

// trimStringHookFunc 문자열 필드의 앞뒤 공백을 제거합니다.
// 본문처럼 공백이 의미를 가지는 필드는 이름 있는 문자열 타입(예: type HTML string)으로 선언하면 제외됩니다.
func trimStringHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != stringType {
			return data, nil
		}
		return strings.TrimSpace(reflect.ValueOf(data).String()), nil
	}
}
