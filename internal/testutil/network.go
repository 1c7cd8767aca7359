package testutil

import (
	"fmt"
	"net"
	"time"
)

// GetFreePort 테스트 서버가 바인딩할 수 있는 임의의 빈 포트를 반환합니다.
func GetFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// WaitForServer 주어진 포트에서 연결을 받기 시작할 때까지 timeout 동안 대기합니다.
func WaitForServer(port int, timeout time.Duration) error {
	addr := fmt.Sprintf("localhost:%d", port)

	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
		if conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond); err == nil {
			return conn.Close()
		}
	}

	return fmt.Errorf("%s에서 %v 안에 서버가 시작되지 않았습니다", addr, timeout)
}
