package hub

import (
	"context"
	"fmt"

	"github.com/kwhite/smartlife/tuya"
)

// Typed light commands. The control endpoint takes UI-scale values for
// brightness while device data reports the wire scale, so each command pairs
// the value it sends with the expected post-action state used by the
// optimistic fallback.

// TurnOn switches a light on.
func (h *Hub) TurnOn(ctx context.Context, deviceID string) error {
	on := true
	return h.PerformAction(ctx, deviceID, tuya.ActionTurnOnOff, tuya.AttributeValue, 1,
		tuya.DevicePatch{Online: &on, State: &on})
}

// TurnOff switches a light off.
func (h *Hub) TurnOff(ctx context.Context, deviceID string) error {
	on := true
	off := false
	return h.PerformAction(ctx, deviceID, tuya.ActionTurnOnOff, tuya.AttributeValue, 0,
		tuya.DevicePatch{Online: &on, State: &off})
}

// Toggle flips a light based on its last known state. Only a device known to
// be off is turned on; one with an unreported state is turned off, the safe
// direction when the last state is unknown.
func (h *Hub) Toggle(ctx context.Context, deviceID string) error {
	for _, d := range h.Devices() {
		if d.ID == deviceID {
			if d.Data.State != nil && !*d.Data.State {
				return h.TurnOn(ctx, deviceID)
			}
			return h.TurnOff(ctx, deviceID)
		}
	}
	return fmt.Errorf("unknown device %q", deviceID)
}

// SetBrightness sets a light's brightness from a UI-scale level (11-100).
// The command carries the UI-scale value; the expected patch carries the
// wire-scale one, matching what a confirming fetch would report.
func (h *Hub) SetBrightness(ctx context.Context, deviceID string, level int) error {
	if level < 11 || level > 100 {
		return fmt.Errorf("brightness level %d out of range [11,100]", level)
	}
	on := true
	wire := tuya.BrightnessToWire(level)
	return h.PerformAction(ctx, deviceID, tuya.ActionBrightness, tuya.AttributeValue, level,
		tuya.DevicePatch{Online: &on, State: &on, Brightness: &wire})
}

// SetColorTemp sets a light's color temperature from a UI-scale value
// (1000-10000), converting to the wire range for both the command and the
// expected patch.
func (h *Hub) SetColorTemp(ctx context.Context, deviceID string, temp float64) error {
	if temp < 1000 || temp > 10000 {
		return fmt.Errorf("color temperature %.0f out of range [1000,10000]", temp)
	}
	on := true
	wire := int(tuya.ColorTempToWire(temp))
	return h.PerformAction(ctx, deviceID, tuya.ActionColorTemp, tuya.AttributeValue, wire,
		tuya.DevicePatch{Online: &on, State: &on, ColorTemp: &wire})
}
