package testutil

import (
	"bytes"
	"os"
	"testing"

	applog "github.com/darkkaiser/intercom-slack-relay/pkg/log"
	"github.com/sirupsen/logrus"
)

// CaptureLog 테스트가 끝날 때까지 전역 로거 출력을 JSON 형식으로 버퍼에 모읍니다.
//
// 전역 로거 상태를 바꾸므로 이 함수를 사용하는 테스트는 t.Parallel()을 사용할 수 없습니다.
func CaptureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	logger := applog.StandardLogger()
	prevFormatter := logger.Formatter
	prevLevel := logger.GetLevel()

	buf := new(bytes.Buffer)
	applog.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)

	t.Cleanup(func() {
		applog.SetOutput(os.Stderr)
		logger.SetFormatter(prevFormatter)
		logger.SetLevel(prevLevel)
	})

	return buf
}
