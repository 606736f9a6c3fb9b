// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/trev-sykes/feels-aggregate/identity"
	"github.com/trev-sykes/feels-aggregate/middleware"
	"github.com/trev-sykes/feels-aggregate/models"
	"github.com/trev-sykes/feels-aggregate/mood"
)

type BackfillHandler struct {
	backfill *mood.BackfillService
	adminKey string
	now      func() time.Time
}

// NewBackfillHandler serves both backfill routes. With an empty adminKey the
// bulk simulation route is disabled.
func NewBackfillHandler(backfill *mood.BackfillService, adminKey string) *BackfillHandler {
	return &BackfillHandler{backfill: backfill, adminKey: adminKey, now: time.Now}
}

// TriggerHourly handles GET /api/hourly-populate
func (h *BackfillHandler) TriggerHourly(w http.ResponseWriter, r *http.Request) {
	res, err := h.backfill.Backfill(r.Context(), h.now())
	if err != nil {
		slog.Error("hourly backfill failed", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Backfill failed")
		return
	}

	var resp models.BackfillResponse
	switch res.Outcome {
	case mood.BackfillSkipped:
		resp = models.BackfillResponse{Skipped: true}
	case mood.BackfillNoActivity:
		resp = models.BackfillResponse{Skipped: "no activity", Day: res.Day, Hour: &res.Hour}
	default:
		resp = models.BackfillResponse{
			Success:   true,
			Day:       res.Day,
			Hour:      &res.Hour,
			VoteCount: &res.VoteCount,
			Counts:    res.Counts,
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Simulate handles POST /api/buffer
func (h *BackfillHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	if h.adminKey == "" {
		middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	provided := r.Header.Get("X-Admin-Key")
	if provided == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Admin-Key header required")
		return
	}
	if err := identity.ValidateAdminKey(provided, h.adminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid admin key")
		return
	}

	// An empty body means "today at the default rate"
	var req models.SimulateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	rate := mood.DefaultVotesPerHour
	if req.VotesPerHour != nil {
		rate = *req.VotesPerHour
	}

	res, err := h.backfill.Simulate(r.Context(), req.Day, h.now(), rate)
	switch {
	case errors.Is(err, mood.ErrInvalidRate), errors.Is(err, mood.ErrInvalidDay):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("simulation failed", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Simulation failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SimulateResponse{
		OK:      true,
		Message: fmt.Sprintf("Simulated %d hours for %s (%d already populated)", res.Hours, res.Day, res.SkippedHours),
		Hours:   res.Hours,
		Votes:   res.Votes,
	})
}
