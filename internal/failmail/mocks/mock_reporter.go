// Package mocks failmail 패키지를 사용하는 코드의 테스트를 위한 Mock 구현체를 제공합니다.
package mocks

import (
	"context"
	"sync"

	"github.com/darkkaiser/intercom-slack-relay/internal/failmail"
)

// Report Reporter로 전달된 보고 한 건
type Report struct {
	Text     string
	Mirrored bool
}

// MockReporter 전달된 보고를 순서대로 기록합니다.
type MockReporter struct {
	mu      sync.Mutex
	reports []Report
}

// NewMockReporter 새로운 MockReporter 인스턴스를 생성합니다.
func NewMockReporter() *MockReporter {
	return &MockReporter{}
}

func (m *MockReporter) Report(_ context.Context, text string, opts ...failmail.Option) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports = append(m.reports, Report{Text: text, Mirrored: failmail.MirrorEnabled(opts...)})
}

// Reports 지금까지 기록된 보고의 복사본을 반환합니다.
func (m *MockReporter) Reports() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Report(nil), m.reports...)
}
