package api

import (
	"sync"

	"github.com/kwhite/smartlife/hub"
)

// NoticeBuffer collects user-visible notices until the shell polls for them.
// It implements hub.Notifier.
type NoticeBuffer struct {
	mu      sync.Mutex
	pending []Notice
}

var _ hub.Notifier = (*NoticeBuffer)(nil)

// NewNoticeBuffer creates an empty buffer.
func NewNoticeBuffer() *NoticeBuffer {
	return &NoticeBuffer{}
}

// Notify appends a notice.
func (b *NoticeBuffer) Notify(level hub.Level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, Notice{Level: level.String(), Message: message})
}

// Drain returns and clears all pending notices.
func (b *NoticeBuffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	notices := b.pending
	b.pending = nil
	return notices
}
