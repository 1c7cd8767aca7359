package errors

//go:generate stringer -type=ErrorType

// ErrorType 에러의 종류를 나타내는 타입입니다.
//
// 릴레이 파이프라인의 각 단계는 실패 원인에 맞는 타입을 선택하며,
// API 핸들러는 UnderlyingType으로 근본 타입을 확인하여 HTTP 상태 코드를 결정합니다.
type ErrorType int

// 에러 타입 상수
const (
	// Unknown 알 수 없는 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (버그 등)
	Internal

	// System 시스템 또는 인프라 오류 (SMTP 연결, 파일 I/O 등)
	System

	// InvalidInput 잘못된 입력값 (설정값 검증 실패, 필수 필드 누락 등)
	InvalidInput

	// NotFound 리소스를 찾을 수 없음 (존재하지 않는 Slack 채널 등)
	NotFound

	// ExecutionFailed 외부 API 호출 실패 (Intercom 조회 실패, Slack 전송 실패 등)
	ExecutionFailed

	// ParsingFailed 데이터 파싱 또는 형식 변환 실패 (웹훅 페이로드, 사용자 정보 JSON 등)
	ParsingFailed

	// Unsupported 지원하지 않는 요청 (처리 대상이 아닌 알림 토픽 등)
	Unsupported

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 서비스 일시적 사용 불가
	Unavailable
)
