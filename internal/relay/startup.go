package relay

import (
	"fmt"

	"github.com/darkkaiser/intercom-slack-relay/internal/message"
)

// StartupMessage 릴레이가 시작될 때 기본 채널에 게시하는 안내 메시지입니다.
// 릴레이가 중단된 동안 놓친 알림은 백업 채널에서 확인하도록 안내합니다.
func StartupMessage(operator, backupChannel string) message.Message {
	return message.New(
		fmt.Sprintf("Custom <https://github.com/jut-io/intercom-slack-relay|intercom-slack-relay> starting up\nMaintained by <mailto:%[1]s|%[1]s>\nCheck #%[2]s for any messages that may have been missed while relay was offline", operator, backupChannel),
		message.ColorDanger,
	)
}
