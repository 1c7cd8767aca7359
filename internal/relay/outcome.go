package relay

// Outcome Translate의 처리 결과입니다.
type Outcome int

const (
	// OutcomeTranslated 메시지로 변환되었습니다.
	OutcomeTranslated Outcome = iota

	// OutcomeUnsupported 처리 대상이 아닌 Topic입니다. (보고됨)
	OutcomeUnsupported

	// OutcomeMalformed 알림에 필요한 필드가 없거나 구조가 맞지 않습니다. (보고됨)
	OutcomeMalformed

	// OutcomeEnrichmentFailed 사용자 정보 조회에 실패했습니다. (조회 클라이언트가 이미 보고함)
	OutcomeEnrichmentFailed

	// OutcomeEmpty 대화 파트가 없어 전달할 메시지가 없습니다. (보고하지 않음)
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTranslated:
		return "translated"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeEnrichmentFailed:
		return "enrichment_failed"
	case OutcomeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Status Relay 한 번의 최종 결과입니다.
type Status int

const (
	// StatusDelivered Slack에 게시되었습니다.
	StatusDelivered Status = iota

	// StatusNotRelayable 알림을 메시지로 만들 수 없습니다. (지원하지 않음, 구조 오류, 빈 대화)
	StatusNotRelayable

	// StatusUpstreamFailed Intercom 조회나 Slack 게시에 실패했습니다.
	StatusUpstreamFailed

	// StatusBadRequest 요청 본문이 JSON 객체가 아닙니다.
	StatusBadRequest

	// StatusFailed 처리 중 예상하지 못한 오류(panic)가 발생했습니다.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusNotRelayable:
		return "not_relayable"
	case StatusUpstreamFailed:
		return "upstream_failed"
	case StatusBadRequest:
		return "bad_request"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
