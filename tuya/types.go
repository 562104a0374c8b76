package tuya

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Region selects the upstream cloud endpoint. The upstream runs one host per
// region and country code, and a session is bound to the region it was
// created in.
type Region string

const (
	RegionEU Region = "eu"
	RegionUS Region = "us"
)

// Valid reports whether r is one of the supported region codes.
func (r Region) Valid() bool {
	return r == RegionEU || r == RegionUS
}

// countryCode returns the dialing code the auth endpoint expects for the
// region.
func (r Region) countryCode() string {
	if r == RegionEU {
		return "44"
	}
	return "1"
}

// Session is the credential set authorizing remote calls. It is always
// replaced wholesale: a Session is either fully present or absent.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Region       Region    `json:"region"`
}

// Expired reports whether the session's access token has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// DeviceType classifies a controllable device.
type DeviceType string

const DeviceTypeLight DeviceType = "light"

// Device is a controllable entity. Identity is stable across fetches;
// directory entries are matched by ID.
type Device struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type DeviceType `json:"dev_type"`
	Data DeviceData `json:"data"`
}

// DeviceData is the typed form of the upstream's loosely-typed attribute bag.
// The upstream encodes the switch state as the strings "true"/"false" and
// brightness as a numeric string on a 0-1000 scale; those encodings are
// resolved at the client boundary so the rest of the system only sees typed
// values. Optional attributes are pointers: nil means the device did not
// report them.
type DeviceData struct {
	Online     bool  `json:"online"`
	State      *bool `json:"state,omitempty"`
	Brightness *int  `json:"brightness,omitempty"`
	ColorTemp  *int  `json:"color_temp,omitempty"`
}

// DevicePatch is a partial update of DeviceData. Set fields overwrite,
// nil fields leave the current value untouched.
type DevicePatch struct {
	Online     *bool
	State      *bool
	Brightness *int
	ColorTemp  *int
}

// Apply merges the patch into d. Set fields overwrite, nil fields leave the
// current value untouched. Pointed-to values are copied so d never aliases
// the patch.
func (d *DeviceData) Apply(p DevicePatch) {
	if p.Online != nil {
		d.Online = *p.Online
	}
	if p.State != nil {
		d.State = copyPtr(p.State)
	}
	if p.Brightness != nil {
		d.Brightness = copyPtr(p.Brightness)
	}
	if p.ColorTemp != nil {
		d.ColorTemp = copyPtr(p.ColorTemp)
	}
}

// Clone returns a copy sharing no pointers with d.
func (d Device) Clone() Device {
	d.Data = d.Data.Clone()
	return d
}

// Clone returns a copy sharing no pointers with d.
func (d DeviceData) Clone() DeviceData {
	d.State = copyPtr(d.State)
	d.Brightness = copyPtr(d.Brightness)
	d.ColorTemp = copyPtr(d.ColorTemp)
	return d
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// wireDevice mirrors the upstream discovery payload, where attribute values
// arrive with mixed encodings.
type wireDevice struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	DevType string         `json:"dev_type"`
	Data    wireDeviceData `json:"data"`
}

type wireDeviceData struct {
	Online     bool            `json:"online"`
	State      json.RawMessage `json:"state"`
	Brightness json.RawMessage `json:"brightness"`
	ColorTemp  json.RawMessage `json:"color_temp"`
}

func (w wireDevice) device() (Device, error) {
	d := Device{
		ID:   w.ID,
		Name: w.Name,
		Type: DeviceType(w.DevType),
		Data: DeviceData{Online: w.Data.Online},
	}

	state, ok, err := parseWireBool(w.Data.State)
	if err != nil {
		return Device{}, fmt.Errorf("device %s: state: %w", w.ID, err)
	}
	if ok {
		d.Data.State = &state
	}

	brightness, ok, err := parseWireInt(w.Data.Brightness)
	if err != nil {
		return Device{}, fmt.Errorf("device %s: brightness: %w", w.ID, err)
	}
	if ok {
		d.Data.Brightness = &brightness
	}

	colorTemp, ok, err := parseWireInt(w.Data.ColorTemp)
	if err != nil {
		return Device{}, fmt.Errorf("device %s: color_temp: %w", w.ID, err)
	}
	if ok {
		d.Data.ColorTemp = &colorTemp
	}

	return d, nil
}

// parseWireBool accepts a JSON bool or the strings "true"/"false".
func parseWireBool(raw json.RawMessage) (value, present bool, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, false, fmt.Errorf("unexpected encoding %s", raw)
	}
	switch strings.TrimSpace(s) {
	case "true":
		return true, true, nil
	case "false":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("unexpected boolean string %q", s)
	}
}

// parseWireInt accepts a JSON number or a numeric string.
func parseWireInt(raw json.RawMessage) (value int, present bool, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false, fmt.Errorf("unexpected encoding %s", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("unexpected numeric string %q", s)
	}
	return n, true, nil
}
