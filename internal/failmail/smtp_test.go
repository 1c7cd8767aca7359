package failmail

import (
	"bufio"
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeSMTPServer 메일 한 통을 받아 DATA 내용을 전달하는 최소한의 SMTP 서버입니다.
func fakeSMTPServer(t *testing.T, rejectRcpt bool) (addr string, data <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ch := make(chan string, 1)
	done := make(chan struct{})
	t.Cleanup(func() {
		ln.Close()
		<-done
	})

	go func() {
		defer close(done)

		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")

		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			switch cmd {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 localhost")
			case "MAIL":
				_ = tp.PrintfLine("250 OK")
			case "RCPT":
				if rejectRcpt {
					_ = tp.PrintfLine("550 No such user")
				} else {
					_ = tp.PrintfLine("250 OK")
				}
			case "DATA":
				_ = tp.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
				b, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				ch <- string(b)
				_ = tp.PrintfLine("250 OK")
			case "QUIT":
				_ = tp.PrintfLine("221 Bye")
				return
			default:
				_ = tp.PrintfLine("250 OK")
			}
		}
	}()

	return ln.Addr().String(), ch
}

func TestSMTPMailer_Send(t *testing.T) {
	defer goleak.VerifyNone(t)

	addr, data := fakeSMTPServer(t, false)

	m := NewSMTPMailer(addr)
	err := m.Send(context.Background(), "ops@example.com", []string{"ops@example.com"}, Subject, "line1\nline2")
	require.NoError(t, err)

	select {
	case got := <-data:
		assert.Contains(t, got, "From: ops@example.com\n")
		assert.Contains(t, got, "Subject: intslack failure\n")
		assert.Contains(t, got, "Content-Type: text/plain; charset=UTF-8\n")
		assert.True(t, strings.HasSuffix(got, "\nline1\nline2\n"), "got: %q", got)
	case <-time.After(time.Second):
		t.Fatal("메일 본문이 전달되지 않았습니다")
	}
}

func TestSMTPMailer_RejectedRecipient(t *testing.T) {
	addr, _ := fakeSMTPServer(t, true)

	m := NewSMTPMailer(addr)
	err := m.Send(context.Background(), "ops@example.com", []string{"ops@example.com"}, Subject, "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "수신자")
}

func TestSMTPMailer_Unreachable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	m := NewSMTPMailer(addr)
	err = m.Send(context.Background(), "ops@example.com", []string{"ops@example.com"}, Subject, "body")
	require.Error(t, err)
}

func TestFormatMessage(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := string(formatMessage("a@example.com", []string{"a@example.com", "b@example.com"}, "subj", "x\r\ny", date))

	sc := bufio.NewScanner(strings.NewReader(got))
	var headers []string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			break
		}
		headers = append(headers, line)
	}

	assert.Equal(t, []string{
		"From: a@example.com",
		"To: a@example.com, b@example.com",
		"Subject: subj",
		"Date: Tue, 02 Jan 2024 03:04:05 +0000",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Transfer-Encoding: 8bit",
	}, headers)
	assert.True(t, strings.HasSuffix(got, "\r\n\r\nx\ny"))
}
