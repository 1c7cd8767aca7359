package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStd = errors.New("standard error")

// =============================================================================
// Error Creation
// =============================================================================

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		errType ErrorType
		message string
	}{
		{name: "입력값 오류", errType: InvalidInput, message: "channel 설정이 비어있습니다"},
		{name: "파싱 실패", errType: ParsingFailed, message: "topic 필드가 없습니다"},
		{name: "미지원 토픽", errType: Unsupported, message: "conversation.user.unsubscribed"},
		{name: "외부 호출 실패", errType: ExecutionFailed, message: "Slack 전송 실패"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := New(tt.errType, tt.message)
			require.Error(t, err)

			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.errType, appErr.Type())
			assert.Equal(t, tt.message, appErr.Message())
			assert.Equal(t, fmt.Sprintf("[%s] %s", tt.errType, tt.message), err.Error())
			assert.Nil(t, appErr.Unwrap())
		})
	}
}

func TestNewf(t *testing.T) {
	t.Parallel()

	err := Newf(ExecutionFailed, "Unexpected status code %d", 503)
	assert.Equal(t, "[ExecutionFailed] Unexpected status code 503", err.Error())
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("원인 에러를 체인에 보존한다", func(t *testing.T) {
		err := Wrap(errStd, System, "SMTP 연결 실패")
		assert.Equal(t, "[System] SMTP 연결 실패: standard error", err.Error())
		assert.True(t, errors.Is(err, errStd))
		assert.Equal(t, errStd, errors.Unwrap(err))
	})

	t.Run("Wrapf는 포맷 문자열을 사용한다", func(t *testing.T) {
		err := Wrapf(errStd, NotFound, "채널 '%s'를 찾을 수 없습니다", "general")
		assert.Equal(t, "[NotFound] 채널 'general'를 찾을 수 없습니다: standard error", err.Error())
	})

	t.Run("nil 에러는 nil로 반환된다", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, Internal, "무시"))
		assert.Nil(t, Wrapf(nil, Internal, "무시 %d", 1))
	})
}

func TestErrorType_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		errType  ErrorType
		expected string
	}{
		{Unknown, "Unknown"},
		{Internal, "Internal"},
		{System, "System"},
		{InvalidInput, "InvalidInput"},
		{NotFound, "NotFound"},
		{ExecutionFailed, "ExecutionFailed"},
		{ParsingFailed, "ParsingFailed"},
		{Unsupported, "Unsupported"},
		{Timeout, "Timeout"},
		{Unavailable, "Unavailable"},
		{ErrorType(99), "ErrorType(99)"},
		{ErrorType(-1), "ErrorType(-1)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.errType.String())
	}
}

// =============================================================================
// Chain Inspection
// =============================================================================

func TestIs(t *testing.T) {
	t.Parallel()

	err := Wrap(Wrap(New(NotFound, "channel not found"), ExecutionFailed, "join failed"), Internal, "post failed")

	assert.True(t, Is(err, NotFound))
	assert.True(t, Is(err, ExecutionFailed))
	assert.True(t, Is(err, Internal))
	assert.False(t, Is(err, Timeout))
	assert.False(t, Is(nil, Unknown))
	assert.False(t, Is(errStd, Unknown))
}

func TestAs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", New(ParsingFailed, "bad json"))

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, ParsingFailed, appErr.Type())
}

func TestRootCause(t *testing.T) {
	t.Parallel()

	assert.Nil(t, RootCause(nil))
	assert.Equal(t, errStd, RootCause(Wrap(Wrap(errStd, System, "a"), Internal, "b")))

	root := New(Timeout, "deadline")
	assert.Equal(t, root, RootCause(Wrap(root, ExecutionFailed, "c")))
}

func TestUnderlyingType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{name: "nil", err: nil, expected: Unknown},
		{name: "표준 에러", err: errStd, expected: Unknown},
		{name: "단일 AppError", err: New(Unsupported, "x"), expected: Unsupported},
		{name: "AppError 체인", err: Wrap(New(NotFound, "x"), ExecutionFailed, "y"), expected: NotFound},
		{name: "외부 에러 래핑", err: Wrap(errStd, Timeout, "x"), expected: Timeout},
		{name: "표준 래핑 사이의 AppError", err: fmt.Errorf("w: %w", Wrap(New(ParsingFailed, "x"), Internal, "y")), expected: ParsingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UnderlyingType(tt.err))
		})
	}
}

// =============================================================================
// Formatting & Diagnostics
// =============================================================================

func TestAppError_Format(t *testing.T) {
	t.Parallel()

	err := Wrap(errStd, ExecutionFailed, "Slack 전송 실패")

	assert.Equal(t, err.Error(), fmt.Sprintf("%s", err))
	assert.Equal(t, err.Error(), fmt.Sprintf("%v", err))
	assert.Equal(t, fmt.Sprintf("%q", err.Error()), fmt.Sprintf("%q", err))

	detailed := fmt.Sprintf("%+v", err)
	assert.True(t, strings.HasPrefix(detailed, "[ExecutionFailed] Slack 전송 실패"))
	assert.Contains(t, detailed, "Stack trace:")
	assert.Contains(t, detailed, "errors_test.go")
	assert.Contains(t, detailed, "Caused by:")
	assert.Contains(t, detailed, "standard error")
}

func TestAppError_Format_StackPrintedOncePerChain(t *testing.T) {
	t.Parallel()

	err := Wrap(New(NotFound, "channel not found"), ExecutionFailed, "join failed")

	detailed := fmt.Sprintf("%+v", err)
	assert.Equal(t, 1, strings.Count(detailed, "Stack trace:"), "AppError 체인의 중간 단계는 스택을 출력하지 않아야 합니다")
	assert.Contains(t, detailed, "[NotFound] channel not found")
}

func TestDiagnostic(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Diagnostic(nil))
	assert.Equal(t, "standard error", Diagnostic(errStd))

	d := Diagnostic(New(ParsingFailed, "missing data.item"))
	assert.Contains(t, d, "[ParsingFailed] missing data.item")
	assert.Contains(t, d, "Stack trace:")
}

func TestStackTrace_CapturesCaller(t *testing.T) {
	t.Parallel()

	err := New(Internal, "boom")

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))

	stack := appErr.Stack()
	require.NotEmpty(t, stack)
	assert.Equal(t, "errors_test.go", stack[0].File)
	assert.Contains(t, stack[0].Function, "TestStackTrace_CapturesCaller")
	assert.Greater(t, stack[0].Line, 0)
}

func TestConcurrentErrorCreation(t *testing.T) {
	t.Parallel()

	const goroutines = 50

	var wg sync.WaitGroup
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = Wrapf(New(ExecutionFailed, "base"), Internal, "wrap %d", idx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.True(t, Is(err, ExecutionFailed))
		assert.Contains(t, err.Error(), fmt.Sprintf("wrap %d", i))
	}
}
