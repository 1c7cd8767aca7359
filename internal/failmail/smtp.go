package failmail

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/intercom-slack-relay/internal/pkg/errors"
)

// defaultSMTPTimeout 메일 릴레이 접속과 전체 대화에 허용되는 시간
const defaultSMTPTimeout = 10 * time.Second

// SMTPMailer 인증 없이 로컬 메일 릴레이로 메일을 전달합니다.
type SMTPMailer struct {
	addr    string
	timeout time.Duration
}

// NewSMTPMailer 새로운 SMTPMailer를 생성합니다. addr는 "host:port" 형식입니다.
func NewSMTPMailer(addr string) *SMTPMailer {
	return &SMTPMailer{
		addr:    addr,
		timeout: defaultSMTPTimeout,
	}
}

// Send 메일 한 통을 전송합니다. 접속부터 QUIT까지 전체 대화가 timeout 안에 끝나야 합니다.
func (m *SMTPMailer) Send(ctx context.Context, from string, to []string, subject, body string) error {
	d := net.Dialer{Timeout: m.timeout}
	conn, err := d.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.Unavailable, "메일 서버(%s)에 연결할 수 없습니다", m.addr)
	}
	if err := conn.SetDeadline(time.Now().Add(m.timeout)); err != nil {
		conn.Close()
		return apperrors.Wrap(err, apperrors.System, "메일 서버 연결의 제한 시간 설정에 실패했습니다")
	}

	host, _, _ := net.SplitHostPort(m.addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return apperrors.Wrapf(err, apperrors.Unavailable, "메일 서버(%s)와의 SMTP 세션 시작에 실패했습니다", m.addr)
	}
	defer c.Close()

	if err := c.Mail(from); err != nil {
		return apperrors.Wrapf(err, apperrors.ExecutionFailed, "발신자(%s)가 거부되었습니다", from)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return apperrors.Wrapf(err, apperrors.ExecutionFailed, "수신자(%s)가 거부되었습니다", rcpt)
		}
	}

	w, err := c.Data()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ExecutionFailed, "메일 본문 전송을 시작할 수 없습니다")
	}
	if _, err := w.Write(formatMessage(from, to, subject, body, time.Now())); err != nil {
		w.Close()
		return apperrors.Wrap(err, apperrors.ExecutionFailed, "메일 본문 전송에 실패했습니다")
	}
	if err := w.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.ExecutionFailed, "메일 서버가 메일을 수락하지 않았습니다")
	}

	return c.Quit()
}

// formatMessage 평문(text/plain) 메일 메시지를 만듭니다.
func formatMessage(from string, to []string, subject, body string, date time.Time) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\r\n", "\n"))

	return b.Bytes()
}
