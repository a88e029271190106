package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gametwin/gaming-twin/server/internal/api/respond"
	"github.com/gametwin/gaming-twin/server/internal/api/validate"
	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/services"
)

// TwinHandler serves twin reads, report reads and threshold updates.
type TwinHandler struct {
	reports    *services.ReportService
	thresholds *services.ThresholdService
	log        zerolog.Logger
}

func NewTwinHandler(reports *services.ReportService, thresholds *services.ThresholdService, log zerolog.Logger) *TwinHandler {
	return &TwinHandler{reports: reports, thresholds: thresholds, log: log}
}

type twinResponse struct {
	UserID     string                  `json:"user_id"`
	Thresholds model.Thresholds        `json:"thresholds"`
	Aggregates model.AggregateSnapshot `json:"aggregates"`
	State      model.State             `json:"state"`
}

// GetTwin handles GET /digital-twin/{userId}.
func (h *TwinHandler) GetTwin(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tw, err := h.reports.GetTwin(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteUserNotFound(w)
			return
		}
		h.log.Error().Stack().Err(err).Str("user_id", userID).Msg("twin read failed")
		respond.WriteEnvelopeError(w, http.StatusInternalServerError, "twin read failed")
		return
	}

	respond.WriteJSON(w, http.StatusOK, twinResponse{
		UserID:     tw.UserID,
		Thresholds: tw.Thresholds,
		Aggregates: tw.Aggregates,
		State:      tw.State,
	})
}

// GetReport handles GET /reports/{userId}.
func (h *TwinHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.reports.Report(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteUserNotFound(w)
			return
		}
		h.log.Error().Stack().Err(err).Str("user_id", userID).Msg("report read failed")
		respond.WriteEnvelopeError(w, http.StatusInternalServerError, "report read failed")
		return
	}

	respond.WriteJSON(w, http.StatusOK, rep)
}

type thresholdUpdateRequest struct {
	Daily *int `json:"daily"`
	Night *int `json:"night"`
}

type thresholdUpdateResponse struct {
	UserID     string           `json:"user_id"`
	Thresholds model.Thresholds `json:"thresholds"`
}

// UpdateThresholds handles POST /digital-twin/{userId}/threshold.
func (h *TwinHandler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := validate.UserID(userID); err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req thresholdUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.ThresholdUpdate(req.Daily, req.Night); err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	th, err := h.thresholds.Update(r.Context(), userID, req.Daily, req.Night)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteEnvelopeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Stack().Err(err).Str("user_id", userID).Msg("threshold update failed")
		respond.WriteEnvelopeError(w, http.StatusInternalServerError, "threshold update failed")
		return
	}

	respond.WriteJSON(w, http.StatusOK, thresholdUpdateResponse{UserID: userID, Thresholds: th})
}
