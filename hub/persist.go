package hub

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/kwhite/smartlife/storage"
	"github.com/kwhite/smartlife/tuya"
)

// The persisted key set. Logout purges exactly these seven keys.
const (
	keyAccessToken    = "access_token"
	keyRefreshToken   = "refresh_token"
	keyTokenType      = "token_type"
	keyExpiresAt      = "expires_at"
	keyRegion         = "region"
	keyDeviceList     = "device_list"
	keyDeviceListTime = "device_list_time"
)

var sessionAndCacheKeys = []string{
	keyAccessToken,
	keyRefreshToken,
	keyTokenType,
	keyExpiresAt,
	keyRegion,
	keyDeviceList,
	keyDeviceListTime,
}

// Writes to the store are fire-and-forget from the core's perspective: a
// persistence failure degrades the next cold start, not the live session, so
// it is logged and swallowed.

func (h *Hub) saveSessionShadow(s *tuya.Session) {
	err := h.store.Batch(func(tx storage.BatchTx) error {
		if err := tx.Set(keyAccessToken, []byte(s.AccessToken)); err != nil {
			return err
		}
		if err := tx.Set(keyRefreshToken, []byte(s.RefreshToken)); err != nil {
			return err
		}
		if err := tx.Set(keyTokenType, []byte(s.TokenType)); err != nil {
			return err
		}
		if err := tx.Set(keyExpiresAt, []byte(strconv.FormatInt(s.ExpiresAt.UnixMilli(), 10))); err != nil {
			return err
		}
		return tx.Set(keyRegion, []byte(s.Region))
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("persisting session shadow failed")
	}
}

// loadSessionShadow reads the persisted session. A shadow missing its access
// token or expiry is treated as absent; a session is all or nothing.
func (h *Hub) loadSessionShadow() (*tuya.Session, bool) {
	accessToken, err := h.store.Get(keyAccessToken)
	if err != nil {
		return nil, false
	}
	expiresRaw, err := h.store.Get(keyExpiresAt)
	if err != nil {
		return nil, false
	}
	expiresMs, err := strconv.ParseInt(string(expiresRaw), 10, 64)
	if err != nil {
		h.log.Warn().Err(err).Msg("stored session expiry unreadable")
		return nil, false
	}

	s := &tuya.Session{
		AccessToken: string(accessToken),
		ExpiresAt:   time.UnixMilli(expiresMs),
	}
	if v, err := h.store.Get(keyRefreshToken); err == nil {
		s.RefreshToken = string(v)
	}
	if v, err := h.store.Get(keyTokenType); err == nil {
		s.TokenType = string(v)
	}
	if v, err := h.store.Get(keyRegion); err == nil {
		s.Region = tuya.Region(v)
	}
	return s, true
}

func (h *Hub) saveDeviceCache(devices []tuya.Device) {
	data, err := json.Marshal(devices)
	if err != nil {
		h.log.Warn().Err(err).Msg("encoding device cache failed")
		return
	}
	err = h.store.Batch(func(tx storage.BatchTx) error {
		if err := tx.Set(keyDeviceList, data); err != nil {
			return err
		}
		return tx.Set(keyDeviceListTime, []byte(strconv.FormatInt(h.now().UnixMilli(), 10)))
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("persisting device cache failed")
	}
}

func (h *Hub) loadDeviceCache() ([]tuya.Device, time.Time, bool) {
	data, err := h.store.Get(keyDeviceList)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.log.Warn().Err(err).Msg("reading device cache failed")
		}
		return nil, time.Time{}, false
	}

	var devices []tuya.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		h.log.Warn().Err(err).Msg("decoding device cache failed")
		return nil, time.Time{}, false
	}

	var fetchedAt time.Time
	if raw, err := h.store.Get(keyDeviceListTime); err == nil {
		if ms, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			fetchedAt = time.UnixMilli(ms)
		}
	}
	return devices, fetchedAt, true
}

func (h *Hub) purgeStore() {
	err := h.store.Batch(func(tx storage.BatchTx) error {
		for _, key := range sessionAndCacheKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("purging persisted session failed")
	}
}
