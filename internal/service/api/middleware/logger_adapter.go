package middleware

import (
	"io"

	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Logger Echo 프레임워크의 로거 인터페이스(gommon log)를 애플리케이션 로거 위에 구현한 어댑터입니다.
// Echo가 내부적으로 남기는 로그(서버 시작 실패 등)도 같은 출력 대상과 형식으로 기록된다.
type Logger struct {
	*applog.Logger
}

var (
	echoToAppLevel = map[log.Lvl]applog.Level{
		log.DEBUG: applog.DebugLevel,
		log.INFO:  applog.InfoLevel,
		log.WARN:  applog.WarnLevel,
		log.ERROR: applog.ErrorLevel,
	}

	appToEchoLevel = map[applog.Level]log.Lvl{
		applog.TraceLevel: log.DEBUG,
		applog.DebugLevel: log.DEBUG,
		applog.InfoLevel:  log.INFO,
		applog.WarnLevel:  log.WARN,
		applog.ErrorLevel: log.ERROR,
	}
)

func (l Logger) Output() io.Writer     { return l.Logger.Out }
func (l Logger) SetOutput(w io.Writer) { l.Logger.SetOutput(w) }
func (l Logger) Prefix() string        { return "" }
func (l Logger) SetPrefix(string)      {}
func (l Logger) SetHeader(string)      {}

// Level 애플리케이션 로그 레벨에 대응하는 Echo 로그 레벨을 반환합니다.
// Fatal, Panic처럼 Echo에 대응 레벨이 없으면 OFF를 반환한다.
func (l Logger) Level() log.Lvl {
	if lvl, ok := appToEchoLevel[l.Logger.GetLevel()]; ok {
		return lvl
	}
	return log.OFF
}

// SetLevel Echo 로그 레벨을 애플리케이션 로그 레벨로 바꿔 설정합니다. OFF는 무시한다.
func (l Logger) SetLevel(lvl log.Lvl) {
	if level, ok := echoToAppLevel[lvl]; ok {
		l.Logger.SetLevel(level)
	}
}

func (l Logger) Printj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Print() }
func (l Logger) Debugj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Debug() }
func (l Logger) Infoj(j log.JSON)  { l.Logger.WithFields(applog.Fields(j)).Info() }
func (l Logger) Warnj(j log.JSON)  { l.Logger.WithFields(applog.Fields(j)).Warn() }
func (l Logger) Errorj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Error() }
func (l Logger) Fatalj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Fatal() }
func (l Logger) Panicj(j log.JSON) { l.Logger.WithFields(applog.Fields(j)).Panic() }

var _ echo.Logger = Logger{}
