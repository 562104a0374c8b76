// Package api exposes the hub to the UI shell over a local REST surface.
package api

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"
	"github.com/rs/zerolog"

	"github.com/kwhite/smartlife/hub"
)

//go:embed openapi.yaml
var openapiSpec []byte

// API holds the dependencies needed by the REST handlers.
type API struct {
	hub     *hub.Hub
	notices *NoticeBuffer
	log     zerolog.Logger
}

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for request handling.
func WithLogger(log zerolog.Logger) Option {
	return func(a *API) { a.log = log }
}

// WithNotices attaches a notice buffer so the shell can poll pending
// user-visible notices. Pass the same buffer to the hub as its Notifier.
func WithNotices(buf *NoticeBuffer) Option {
	return func(a *API) { a.notices = buf }
}

// New creates a new API instance over the given hub.
func New(h *hub.Hub, opts ...Option) *API {
	a := &API{
		hub: h,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notices == nil {
		a.notices = NewNoticeBuffer()
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Get("/session", a.GetSession)
	r.Post("/session", a.Login)
	r.Delete("/session", a.Logout)

	r.Get("/notices", a.DrainNotices)

	r.Get("/devices", a.ListDevices)
	r.Post("/devices/refresh", a.RefreshDevices)
	r.Post("/devices/{deviceID}/commands", a.SendCommand)
	r.Patch("/devices/{deviceID}/data", a.PatchDeviceData)

	return r
}
