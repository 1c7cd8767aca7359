package constants

import "time"

// 보안 관련 상수입니다.
const (
	// DefaultMaxBodySize 요청 본문의 최대 크기 (2MB)
	// Intercom 알림은 대화 본문 전체를 담아 보내므로 여유 있게 잡는다.
	DefaultMaxBodySize = "2M"

	// DefaultReadHeaderTimeout HTTP 헤더 읽기 최대 대기 시간 (10초)
	// 헤더를 매우 느리게 전송하는 클라이언트가 연결을 점유하지 못하게 한다.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultReadTimeout 요청 전체(헤더+본문) 읽기 최대 대기 시간 (10초)
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout 응답 쓰기 최대 대기 시간
	// 요청 본문을 읽은 시점부터 계산되므로 릴레이 처리 시간(DefaultRequestTimeout)을 포함해야 한다.
	DefaultWriteTimeout = DefaultRequestTimeout + 5*time.Second

	// DefaultIdleTimeout Keep-Alive 연결의 최대 유휴 시간
	DefaultIdleTimeout = 120 * time.Second
)

// SensitiveQueryParams 로그 기록 시 마스킹 처리해야 할 쿼리 파라미터 목록입니다.
var SensitiveQueryParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"secret",
}
