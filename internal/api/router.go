package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gametwin/gaming-twin/server/internal/api/recovery"
	"github.com/gametwin/gaming-twin/server/internal/services"
)

// NewRouter wires the HTTP routes to their handlers.
func NewRouter(
	twinSvc *services.TwinService,
	thresholdSvc *services.ThresholdService,
	reportSvc *services.ReportService,
	storeHealthy func() bool,
	log zerolog.Logger,
) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	events := NewEventHandler(twinSvc, log)
	root.HandleFunc("/events", events.IngestEvent).Methods("POST")

	twins := NewTwinHandler(reportSvc, thresholdSvc, log)
	root.HandleFunc("/digital-twin/{userId}", twins.GetTwin).Methods("GET")
	root.HandleFunc("/digital-twin/{userId}/threshold", twins.UpdateThresholds).Methods("POST")
	root.HandleFunc("/reports/{userId}", twins.GetReport).Methods("GET")

	health := NewHealthHandler(storeHealthy)
	root.HandleFunc("/health", health.CheckHealth).Methods("GET")

	return root
}
