package log

// callerPathPrefix 호출자 함수명에서 잘라낼 모듈 경로입니다.
const callerPathPrefix = "github.com/darkkaiser/intercom-slack-relay"

// NewProductionOptions 운영 환경용 로그 설정을 반환합니다.
//
// 릴레이는 파일과 콘솔에 동시에 기록합니다. 콘솔 출력은 컨테이너/systemd 로그 수집기가,
// 파일은 운영자가 장애 분석 시 참고합니다.
func NewProductionOptions(appName string) Options {
	return Options{
		Name:  appName,
		Level: InfoLevel,

		MaxAge:     30,
		MaxSizeMB:  100,
		MaxBackups: 20,

		EnableCriticalLog: true,
		EnableVerboseLog:  true,
		EnableConsoleLog:  true,

		ReportCaller:     true,
		CallerPathPrefix: callerPathPrefix,
	}
}

// NewDevelopmentOptions 개발 환경용 로그 설정을 반환합니다.
func NewDevelopmentOptions(appName string) Options {
	return Options{
		Name:  appName,
		Level: TraceLevel,

		MaxAge:     1,
		MaxSizeMB:  50,
		MaxBackups: 5,

		EnableCriticalLog: false,
		EnableVerboseLog:  false,
		EnableConsoleLog:  true,

		ReportCaller:     true,
		CallerPathPrefix: callerPathPrefix,
	}
}
