package constants

import "time"

// 서버 설정 기본값 상수입니다.
const (
	// DefaultRequestTimeout HTTP 요청 처리의 최대 시간 (60초)
	// 한 건의 릴레이는 Intercom 조회(최대 10초)와 Slack 전송 재시도가 이어지므로
	// 소켓 타임아웃(10초)보다 넉넉하게 잡는다.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultRateLimitPerSecond IP별 초당 허용 요청 수
	DefaultRateLimitPerSecond = 20

	// DefaultRateLimitBurst IP별 순간 허용 요청 수
	DefaultRateLimitBurst = 40

	// DefaultShutdownTimeout 종료 신호 수신 후 진행 중인 요청을 기다리는 최대 시간
	DefaultShutdownTimeout = 5 * time.Second
)
