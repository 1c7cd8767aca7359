package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// 생성되는 로그 파일의 기본 확장자
	fileExt = "log"

	// 기본 로그 로테이션 정책
	defaultMaxSizeMB  = 100 // 로그 파일 하나당 최대 크기 (단위: MB)
	defaultMaxBackups = 20  // 로테이션 된 로그 파일의 최대 보관 개수

	// 로그 저장 경로가 명시되지 않은 경우 사용하는 디렉토리
	defaultDir = "logs"
)

var (
	// Setup()이 프로세스 생명주기 동안 단 한 번만 실행되도록 보장합니다.
	setupOnce sync.Once

	// 최초 초기화 시 생성된 Closer와 에러를 보관하여, Setup 재호출 시 동일한 결과를 반환합니다.
	globalCloser   io.Closer
	globalSetupErr error
)

// Setup 전역 로깅 시스템을 초기화하고 옵션에 따라 파일/콘솔 출력을 구성합니다.
//
// 반환된 Closer는 main에서 defer로 닫아야 합니다.
func Setup(opts Options) (io.Closer, error) {
	setupOnce.Do(func() {
		globalCloser, globalSetupErr = setupInternal(opts)
	})

	return globalCloser, globalSetupErr
}

func setupInternal(opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("유효하지 않은 로그 설정: %w", err)
	}

	level := opts.Level
	if level == 0 {
		level = InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(opts.ReportCaller)

	// 실제 출력은 router가 담당하므로, 표준 출력 경로는 포맷팅조차 하지 않도록 막아둡니다.
	logrus.SetFormatter(discardFormatter{})
	logrus.SetOutput(io.Discard)

	logDir := opts.Dir
	if logDir == "" {
		logDir = defaultDir
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉토리 생성 실패: %w", err)
	}

	rotating := func(suffix string) *lumberjack.Logger {
		name := opts.Name
		if suffix != "" {
			name += "." + suffix
		}
		return newRotatingWriter(filepath.Join(logDir, name+"."+fileExt), opts)
	}

	r := &router{formatter: newTextFormatter(opts.CallerPathPrefix)}
	if opts.EnableConsoleLog {
		r.addConsole(os.Stdout)
	}
	r.addFile("main", rotating(""), acceptMain)
	if opts.EnableCriticalLog {
		r.addFile("critical", rotating("critical"), acceptCritical)
	}
	if opts.EnableVerboseLog {
		r.addFile("verbose", rotating("verbose"), acceptVerbose)
	}

	logrus.AddHook(r)

	// Fatal 로그로 os.Exit 되기 직전에 남은 로그 파일을 닫습니다.
	logrus.RegisterExitHandler(func() {
		_ = r.Close()
	})

	return r, nil
}

// newRotatingWriter lumberjack 기반의 크기 단위 로테이션 Writer를 생성합니다.
// 파일은 첫 쓰기 시점에 열리므로 생성 자체는 실패하지 않습니다.
func newRotatingWriter(filename string, opts Options) *lumberjack.Logger {
	maxSize := opts.MaxSizeMB
	if maxSize == 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups == 0 {
		maxBackups = defaultMaxBackups
	}

	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   false,
		LocalTime:  true,
	}
}

// newTextFormatter hook에서 사용할 텍스트 포맷터를 생성합니다.
// 호출자 함수명이 prefix로 시작하면 "..."으로 축약합니다.
func newTextFormatter(callerPathPrefix string) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			function = frame.Function + "(line:" + strconv.Itoa(frame.Line) + ")"
			if callerPathPrefix != "" {
				if cut, found := strings.CutPrefix(function, callerPathPrefix); found {
					function = "..." + cut
				}
			}
			return
		},
	}
}
