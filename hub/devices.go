package hub

import (
	"context"
	"fmt"

	"github.com/kwhite/smartlife/tuya"
)

// RefreshDeviceList fetches the device list and, on success, replaces the
// in-memory directory and persists a cache copy with a fetch timestamp. On
// failure nothing is mutated. A completion belonging to a superseded fetch
// is dropped so a stale response can never overwrite a newer one's result.
func (h *Hub) RefreshDeviceList(ctx context.Context) error {
	h.mu.Lock()
	s := h.session
	if s == nil {
		h.mu.Unlock()
		return ErrNotAuthenticated
	}
	h.fetchGen++
	gen := h.fetchGen
	region, token := s.region, s.accessToken
	h.mu.Unlock()

	devices, err := h.api.ListDevices(ctx, region, token)
	if err != nil {
		h.log.Debug().Err(err).Msg("device list fetch failed")
		return fmt.Errorf("fetching device list: %w", err)
	}

	h.mu.Lock()
	if gen != h.fetchGen {
		h.mu.Unlock()
		h.log.Debug().Uint64("generation", gen).Msg("dropping superseded device list fetch")
		return nil
	}
	h.devices = devices
	h.mu.Unlock()

	h.saveDeviceCache(devices)
	h.log.Debug().Int("devices", len(devices)).Msg("device list refreshed")
	return nil
}

// RefreshDeviceListForced renews the token and then refetches the device
// list. The upstream rate-limits list polling but serves a fresh list sooner
// after a token refresh, so confirmed writes piggyback this composite rather
// than polling independently.
func (h *Hub) RefreshDeviceListForced(ctx context.Context) error {
	if err := h.RefreshSession(ctx); err != nil {
		return err
	}
	return h.RefreshDeviceList(ctx)
}

// UpdateDeviceData shallow-merges a partial state into the identified
// device: set fields overwrite, unspecified fields stay untouched. Unknown
// IDs are a no-op. This is the optimistic path used when a confirming fetch
// cannot be obtained; it never touches the persisted cache, whose
// correctness is only guaranteed after a real fetch.
func (h *Hub) UpdateDeviceData(deviceID string, patch tuya.DevicePatch) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.devices {
		if h.devices[i].ID == deviceID {
			h.devices[i].Data.Apply(patch)
			return
		}
	}
}

// loadCacheIfEmpty adopts the last persisted device list when a fetch has
// failed and no list exists in memory yet. The cache timestamp is never
// refreshed by this path.
func (h *Hub) loadCacheIfEmpty() {
	h.mu.Lock()
	empty := h.devices == nil
	h.mu.Unlock()
	if !empty {
		return
	}

	cached, fetchedAt, ok := h.loadDeviceCache()
	if !ok {
		return
	}

	h.mu.Lock()
	if h.devices == nil {
		h.devices = cached
	}
	h.mu.Unlock()
	h.log.Info().Time("fetched_at", fetchedAt).Int("devices", len(cached)).Msg("serving cached device list")
}
