package hub

import "github.com/rs/zerolog"

// Level classifies a user-visible notice.
type Level int

const (
	LevelWarning Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// Notifier receives user-visible notices. The presentation layer renders
// them as toasts; operations degrade to a notice rather than failing the
// process.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

func (h *Hub) notify(level Level, message string) {
	zl := zerolog.WarnLevel
	if level == LevelError {
		zl = zerolog.ErrorLevel
	}
	h.log.WithLevel(zl).Msg(message)
	if h.notifier != nil {
		h.notifier.Notify(level, message)
	}
}
