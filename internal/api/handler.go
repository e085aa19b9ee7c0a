package api

import (
	"time"

	"github.com/sirupsen/logrus"

	"residence-occupancy-backend/internal/lifecycle"
	"residence-occupancy-backend/internal/mw"
	"residence-occupancy-backend/internal/registry"
)

// ActorHeader carries the acting user when the body does not name one.
const ActorHeader = mw.ActorHeader

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine   *lifecycle.Engine
	registry *registry.Registry
	log      *logrus.Logger
	loc      *time.Location
}

// NewHandler creates a new API handler. loc is used to read date filters.
func NewHandler(engine *lifecycle.Engine, reg *registry.Registry, log *logrus.Logger, loc *time.Location) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		engine:   engine,
		registry: reg,
		log:      log,
		loc:      loc,
	}
}
