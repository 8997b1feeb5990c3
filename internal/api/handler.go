package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/guuisouza/smartlocker-backend-api/internal/analytics"
	"github.com/guuisouza/smartlocker-backend-api/internal/auth"
	"github.com/guuisouza/smartlocker-backend-api/internal/resolution"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	resolver  *resolution.Engine
	analytics *analytics.Engine
	auth      *auth.Service
	webpush   *webpush.Options
	loc       *time.Location
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, resolver *resolution.Engine, analyticsEngine *analytics.Engine, authService *auth.Service, webpushOptions *webpush.Options, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		store:     s,
		resolver:  resolver,
		analytics: analyticsEngine,
		auth:      authService,
		webpush:   webpushOptions,
		loc:       loc,
	}
}
