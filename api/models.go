package api

import (
	"github.com/kwhite/smartlife/tuya"
)

// LoginRequest is the JSON body for POST /session.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Region   string `json:"region"`
}

// SessionResponse is returned from GET /session and POST /session.
type SessionResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Region   string `json:"region,omitempty"`
}

// DeviceListResponse is returned from GET /devices. Devices is null until a
// list has been fetched or restored from cache.
type DeviceListResponse struct {
	Devices []tuya.Device `json:"devices"`
}

// Command names accepted by POST /devices/{deviceID}/commands.
const (
	CommandTurnOn     = "turn_on"
	CommandTurnOff    = "turn_off"
	CommandToggle     = "toggle"
	CommandBrightness = "brightness"
	CommandColorTemp  = "color_temp"
)

// CommandRequest is the JSON body for POST /devices/{deviceID}/commands.
type CommandRequest struct {
	Command string `json:"command"`
	// Level is the UI-scale brightness (11-100), required for the
	// brightness command.
	Level *int `json:"level,omitempty"`
	// Temp is the UI-scale color temperature (1000-10000), required for
	// the color_temp command.
	Temp *float64 `json:"temp,omitempty"`
}

// PatchDeviceRequest is the JSON body for PATCH /devices/{deviceID}/data.
// Absent fields leave the current value untouched.
type PatchDeviceRequest struct {
	Online     *bool `json:"online,omitempty"`
	State      *bool `json:"state,omitempty"`
	Brightness *int  `json:"brightness,omitempty"`
	ColorTemp  *int  `json:"color_temp,omitempty"`
}

// Notice is a pending user-visible notice.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// NoticesResponse is returned from GET /notices.
type NoticesResponse struct {
	Notices []Notice `json:"notices"`
}

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}
