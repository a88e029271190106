package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gametwin/gaming-twin/server/internal/api/respond"
	"github.com/gametwin/gaming-twin/server/internal/api/validate"
	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/services"
)

// EventHandler ingests play events into the twin-update engine.
type EventHandler struct {
	svc *services.TwinService
	log zerolog.Logger
}

func NewEventHandler(svc *services.TwinService, log zerolog.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: log}
}

type ingestEventRequest struct {
	UserID   string `json:"user_id"`
	GameName string `json:"game_name"`
	Duration int    `json:"duration"`
}

type ingestEventResponse struct {
	Status        string      `json:"status"`
	UserID        string      `json:"user_id"`
	Game          string      `json:"game"`
	TodayMinutes  int         `json:"today_minutes"`
	WeeklyMinutes int         `json:"weekly_minutes"`
	State         model.State `json:"state"`
}

// IngestEvent handles POST /events.
func (h *EventHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var req ingestEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.IngestEvent(req.UserID, req.Duration); err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.ApplyEvent(r.Context(), &model.Event{
		UserID:          req.UserID,
		GameName:        req.GameName,
		DurationMinutes: req.Duration,
	})
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteEnvelopeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Stack().Err(err).Str("user_id", req.UserID).Msg("event ingestion failed")
		respond.WriteEnvelopeError(w, http.StatusInternalServerError, "event processing failed")
		return
	}

	respond.WriteJSON(w, http.StatusOK, ingestEventResponse{
		Status:        "processed",
		UserID:        res.UserID,
		Game:          res.GameName,
		TodayMinutes:  res.TodayMinutes,
		WeeklyMinutes: res.WeeklyMinutes,
		State:         res.State,
	})
}
