package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kwhite/smartlife/tuya"
)

const maxBodySize = 64 << 10

func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return v, false
	}
	return v, true
}

// GetSession handles GET /session.
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{
		LoggedIn: a.hub.LoggedIn(),
		Region:   string(a.hub.Region()),
	})
}

// Login handles POST /session.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}

	if err := a.hub.Login(r.Context(), req.Username, req.Password, tuya.Region(req.Region)); err != nil {
		a.log.Debug().Err(err).Msg("login request failed")
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		LoggedIn: true,
		Region:   req.Region,
	})
}

// Logout handles DELETE /session.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.hub.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// DrainNotices handles GET /notices, returning and clearing pending notices.
func (a *API) DrainNotices(w http.ResponseWriter, r *http.Request) {
	notices := a.notices.Drain()
	if notices == nil {
		notices = []Notice{}
	}
	writeJSON(w, http.StatusOK, NoticesResponse{Notices: notices})
}

// ListDevices handles GET /devices.
func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	if !a.hub.LoggedIn() {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, DeviceListResponse{Devices: a.hub.Devices()})
}

// RefreshDevices handles POST /devices/refresh (the forced refresh).
func (a *API) RefreshDevices(w http.ResponseWriter, r *http.Request) {
	if err := a.hub.RefreshDeviceListForced(r.Context()); err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeviceListResponse{Devices: a.hub.Devices()})
}

// SendCommand handles POST /devices/{deviceID}/commands.
func (a *API) SendCommand(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	req, ok := decodeJSON[CommandRequest](w, r)
	if !ok {
		return
	}

	var err error
	switch req.Command {
	case CommandTurnOn:
		err = a.hub.TurnOn(r.Context(), deviceID)
	case CommandTurnOff:
		err = a.hub.TurnOff(r.Context(), deviceID)
	case CommandToggle:
		err = a.hub.Toggle(r.Context(), deviceID)
	case CommandBrightness:
		if req.Level == nil {
			writeError(w, http.StatusBadRequest, "brightness command requires a level")
			return
		}
		err = a.hub.SetBrightness(r.Context(), deviceID, *req.Level)
	case CommandColorTemp:
		if req.Temp == nil {
			writeError(w, http.StatusBadRequest, "color_temp command requires a temp")
			return
		}
		err = a.hub.SetColorTemp(r.Context(), deviceID, *req.Temp)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown command %q", req.Command))
		return
	}

	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeviceListResponse{Devices: a.hub.Devices()})
}

// PatchDeviceData handles PATCH /devices/{deviceID}/data, the optimistic
// local update.
func (a *API) PatchDeviceData(w http.ResponseWriter, r *http.Request) {
	if !a.hub.LoggedIn() {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	deviceID := chi.URLParam(r, "deviceID")
	req, ok := decodeJSON[PatchDeviceRequest](w, r)
	if !ok {
		return
	}

	a.hub.UpdateDeviceData(deviceID, tuya.DevicePatch{
		Online:     req.Online,
		State:      req.State,
		Brightness: req.Brightness,
		ColorTemp:  req.ColorTemp,
	})
	w.WriteHeader(http.StatusNoContent)
}
