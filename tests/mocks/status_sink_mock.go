package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockStatusSink is a mock implementation of the status.Sink interface
type MockStatusSink struct {
	mock.Mock
}

func (m *MockStatusSink) Publish(text string) {
	m.Called(text)
}

// RecordingSink captures published status texts in order for assertions.
type RecordingSink struct {
	mu    sync.Mutex
	texts []string
}

func (r *RecordingSink) Publish(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

// Texts returns a copy of everything published so far.
func (r *RecordingSink) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// Last returns the most recent status text, or "" when nothing was published.
func (r *RecordingSink) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}
