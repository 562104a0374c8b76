package hub

import (
	"context"
	"errors"
	"fmt"

	"github.com/kwhite/smartlife/tuya"
)

// DoDeviceAction issues a raw control command against a device. Most callers
// want PerformAction, which also reconciles local state.
func (h *Hub) DoDeviceAction(ctx context.Context, deviceID, action, attribute string, value any) error {
	s := h.currentSession()
	if s == nil {
		return ErrNotAuthenticated
	}
	if err := h.api.SendAction(ctx, s.region, s.accessToken, deviceID, action, attribute, value); err != nil {
		h.log.Warn().Err(err).Str("device", deviceID).Str("action", action).Msg("device action failed")
		return fmt.Errorf("%w: %s", ErrActionFailed, action)
	}
	return nil
}

// PerformAction runs the full dispatch protocol for one device command:
//
//  1. Require a session.
//  2. Send the command; a send failure notifies the user and stops with no
//     state mutation.
//  3. On send success, force a token refresh and list refetch so in-memory
//     state matches the server.
//  4. If that composite fails at either step (typically the upstream rate
//     limiter), fall back to patching the device with the caller's expected
//     post-action state. Optimism over correctness, by explicit policy.
//
// A failure is never fatal: every step degrades to a notice and the caller
// stays interactive.
func (h *Hub) PerformAction(ctx context.Context, deviceID, action, attribute string, value any, expected tuya.DevicePatch) error {
	if err := h.DoDeviceAction(ctx, deviceID, action, attribute, value); err != nil {
		if !errors.Is(err, ErrNotAuthenticated) {
			h.notify(LevelError, "Failed to Send Interaction")
		}
		return err
	}

	if err := h.RefreshDeviceListForced(ctx); err != nil {
		h.log.Debug().Err(err).Str("device", deviceID).Msg("confirming refresh failed, applying optimistic patch")
		h.UpdateDeviceData(deviceID, expected)
	}
	return nil
}
