package hub

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/awnumar/memguard"

	"github.com/kwhite/smartlife/internal/util"
	"github.com/kwhite/smartlife/tuya"
)

const minCredentialLength = 3

// session is the in-memory credential set. The refresh token is the
// long-lived secret, so it is held in a memguard enclave rather than a plain
// string; the short-lived access token travels on every request anyway.
type session struct {
	accessToken string
	tokenType   string
	expiresAt   time.Time
	region      tuya.Region
	refresh     *memguard.Enclave
}

func newSession(s *tuya.Session) *session {
	return &session{
		accessToken: s.AccessToken,
		tokenType:   s.TokenType,
		expiresAt:   s.ExpiresAt,
		region:      s.Region,
		refresh:     memguard.NewEnclave([]byte(s.RefreshToken)),
	}
}

// refreshToken opens the enclave and returns a copy of the refresh token.
func (s *session) refreshToken() (string, error) {
	buf, err := s.refresh.Open()
	if err != nil {
		return "", fmt.Errorf("opening refresh token enclave: %w", err)
	}
	defer buf.Destroy()
	return string(buf.Bytes()), nil
}

// Init restores the persisted session shadow on process start. A restored
// token is never trusted as-is: adoption is immediately followed by a forced
// refresh, and a refresh failure tears the session down and purges the store.
// Init is idempotent; a second call performs no work.
func (h *Hub) Init(ctx context.Context) {
	h.mu.Lock()
	if h.initialized {
		h.mu.Unlock()
		return
	}
	h.initialized = true
	h.mu.Unlock()

	shadow, ok := h.loadSessionShadow()
	if !ok {
		return
	}
	if shadow.Expired(h.now()) {
		h.log.Debug().Msg("stored session expired, waiting for fresh login")
		return
	}

	h.setSession(shadow)

	if err := h.RefreshSession(ctx); err != nil {
		h.log.Warn().Err(err).Msg("restored session could not be refreshed, logging out")
		h.Logout()
		return
	}

	if err := h.RefreshDeviceList(ctx); err != nil {
		h.notify(LevelWarning, "Unable to Refresh Device List, Using Cache Instead")
		h.loadCacheIfEmpty()
	}
}

// Login validates the credentials locally, then performs exactly one remote
// call. On success the new session replaces any previous one and its shadow
// is persisted; on failure nothing is mutated.
func (h *Hub) Login(ctx context.Context, username, password string, region tuya.Region) error {
	username = util.Normalize(username)
	if utf8.RuneCountInString(username) < minCredentialLength {
		return ErrInvalidUsername
	}
	if utf8.RuneCountInString(password) < minCredentialLength {
		return ErrInvalidPassword
	}
	if !region.Valid() {
		return ErrInvalidRegion
	}

	sess, err := h.api.Login(ctx, region, username, password)
	if err != nil {
		h.log.Warn().Err(err).Str("region", string(region)).Msg("login rejected")
		return ErrLoginFailed
	}

	h.setSession(sess)
	h.saveSessionShadow(sess)
	h.log.Info().Str("region", string(region)).Time("expires_at", sess.ExpiresAt).Msg("logged in")

	if err := h.RefreshDeviceList(ctx); err != nil {
		h.notify(LevelError, "Unable to Refresh Device List")
	}
	return nil
}

// Logout drops the in-memory session and device directory and purges every
// persisted session and cache field in one batch.
func (h *Hub) Logout() {
	h.mu.Lock()
	h.session = nil
	h.devices = nil
	h.mu.Unlock()

	h.purgeStore()
	h.log.Info().Msg("logged out")
}

// RefreshSession exchanges the current refresh token for a fresh session.
// On success the session is replaced wholesale and its shadow persisted; on
// failure the caller decides whether to tear down, so state is untouched.
func (h *Hub) RefreshSession(ctx context.Context) error {
	s := h.currentSession()
	if s == nil {
		return ErrNotAuthenticated
	}

	token, err := s.refreshToken()
	if err != nil {
		return err
	}

	fresh, err := h.api.RefreshToken(ctx, s.region, token)
	if err != nil {
		h.log.Debug().Err(err).Msg("token refresh failed")
		return fmt.Errorf("refreshing session: %w", err)
	}

	h.setSession(fresh)
	h.saveSessionShadow(fresh)
	return nil
}

func (h *Hub) setSession(s *tuya.Session) {
	h.mu.Lock()
	h.session = newSession(s)
	h.mu.Unlock()
}
