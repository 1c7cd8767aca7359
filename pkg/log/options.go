package log

import (
	"errors"
	"fmt"
	"os"
)

// Options Setup에 전달하는 로깅 설정입니다. 보통은 NewProductionOptions 또는 NewDevelopmentOptions로 만듭니다.
type Options struct {
	Name  string // 로그 파일 이름 (<Name>.log)
	Dir   string // 로그 디렉토리 (비어 있으면 ./logs)
	Level Level

	// 파일 로테이션. 0이면 기본값을 쓰고, MaxAge가 0이면 오래된 파일을 지우지 않는다.
	MaxAge     int // 일
	MaxSizeMB  int
	MaxBackups int

	EnableCriticalLog bool // Error 이상을 <Name>.critical.log에도 기록
	EnableVerboseLog  bool // Debug 이하를 <Name>.verbose.log에 기록 (끄면 Debug 이하는 파일에 남지 않음)
	EnableConsoleLog  bool // 모든 레벨을 Stdout에도 출력

	ReportCaller     bool   // 호출 위치(함수명과 줄 번호)를 함께 기록
	CallerPathPrefix string // 호출 함수명에서 "..."으로 줄여 쓸 모듈 경로
}

// Validate Setup 전에 설정 값을 검사합니다.
func (opts *Options) Validate() error {
	if opts.Name == "" {
		return errors.New("애플리케이션 식별자(Name)가 설정되지 않았습니다")
	}

	if opts.Dir != "" {
		if info, err := os.Stat(opts.Dir); err == nil && !info.IsDir() {
			return fmt.Errorf("로그 디렉토리 경로(%s)가 이미 파일로 존재합니다", opts.Dir)
		}
	}

	rotation := []struct {
		name  string
		value int
	}{
		{"MaxAge", opts.MaxAge},
		{"MaxSizeMB", opts.MaxSizeMB},
		{"MaxBackups", opts.MaxBackups},
	}
	for _, r := range rotation {
		if r.value < 0 {
			return fmt.Errorf("%s는 0 이상이어야 합니다: %d", r.name, r.value)
		}
	}

	return nil
}
