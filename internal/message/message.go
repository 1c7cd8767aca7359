// Package message Slack으로 전달되는 정규화된 메시지 표현을 정의합니다.
package message

// Color 메시지 첨부(attachment)의 색상 태그입니다.
// Slack이 이해하는 16진수 색상(접두사 # 없이) 또는 "danger" 같은 예약어를 사용합니다.
type Color string

const (
	// ColorAgent 상담원(Admin)이 발생시킨 이벤트
	ColorAgent Color = "ffce49"

	// ColorCustomer 고객(User)이 발생시킨 이벤트
	ColorCustomer Color = "1414ff"

	// ColorDanger 장애 알림 및 시작 메시지
	ColorDanger Color = "danger"
)

// Message 번역이 끝난 하나의 알림을 나타냅니다. 생성된 이후에는 변경되지 않습니다.
type Message struct {
	Text  string
	Color Color
}

// New 새로운 Message를 생성합니다.
func New(text string, color Color) Message {
	return Message{Text: text, Color: color}
}

// IsZero 메시지가 비어 있는지 여부를 반환합니다.
func (m Message) IsZero() bool {
	return m.Text == "" && m.Color == ""
}
