// Package middleware Intercom Webhook 서버에서 사용하는 Echo 미들웨어를 제공합니다.
//
// 제공되는 미들웨어:
//
//   - PanicRecovery: 핸들러 밖(미들웨어, 라우터)에서 발생한 패닉 복구 및 로깅
//   - HTTPLogger: HTTP 요청/응답 로깅 (민감한 쿼리 파라미터 마스킹)
//   - RateLimiting: IP 기반 요청 속도 제한
//   - Logger: Echo 내부 로그를 애플리케이션 로거로 연결하는 어댑터
package middleware
