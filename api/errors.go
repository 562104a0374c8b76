package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kwhite/smartlife/hub"
	"github.com/kwhite/smartlife/tuya"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hub.ErrInvalidUsername),
		errors.Is(err, hub.ErrInvalidPassword),
		errors.Is(err, hub.ErrInvalidRegion):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, hub.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, hub.ErrLoginFailed):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, hub.ErrActionFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, tuya.ErrRejected):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
