// Package hub is the synchronization core consumed by the presentation
// layer: it owns the credential lifecycle, the in-memory device directory
// with its persisted cache fallback, and the action-dispatch protocol that
// reconciles optimistic local state with server-confirmed state.
//
// All state lives in an explicit Hub value; consumers receive copied
// snapshots and mutate only through the operations below.
package hub

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kwhite/smartlife/storage"
	"github.com/kwhite/smartlife/tuya"
)

// Hub composes the session manager, device directory, and action dispatcher
// behind the operations the UI shell calls.
type Hub struct {
	api      *tuya.Client
	store    storage.Store
	log      zerolog.Logger
	notifier Notifier
	now      func() time.Time

	mu          sync.Mutex
	initialized bool
	session     *session
	devices     []tuya.Device
	fetchGen    uint64
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the structured logger. Defaults to a disabled logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Hub) { h.log = log }
}

// WithNotifier sets the sink for user-visible notices (the toast surface of
// the original UI). Defaults to logging only.
func WithNotifier(n Notifier) Option {
	return func(h *Hub) { h.notifier = n }
}

// WithNow sets the clock used for expiry checks and cache timestamps.
func WithNow(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// New creates a Hub over the given remote client and persistent store.
func New(api *tuya.Client, store storage.Store, opts ...Option) *Hub {
	h := &Hub{
		api:   api,
		store: store,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LoggedIn reports whether a session is currently held.
func (h *Hub) LoggedIn() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session != nil
}

// Region returns the active session's region, or the empty region when
// logged out.
func (h *Hub) Region() tuya.Region {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		return ""
	}
	return h.session.region
}

// Devices returns a copied snapshot of the in-memory device directory, in
// server-returned order. Nil until a list has been fetched or restored from
// cache.
func (h *Hub) Devices() []tuya.Device {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.devices == nil {
		return nil
	}
	devices := make([]tuya.Device, len(h.devices))
	for i, d := range h.devices {
		devices[i] = d.Clone()
	}
	return devices
}

func (h *Hub) currentSession() *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}
