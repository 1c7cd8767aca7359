package response

// ErrorResponse API 오류 응답
type ErrorResponse struct {
	// ResultCode HTTP 상태 코드 (예: 400, 422, 502)
	ResultCode int `json:"result_code" example:"422"`

	// Message 에러 메시지
	Message string `json:"message" example:"릴레이할 수 없는 알림입니다 (unsupported)"`
}
