// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/trev-sykes/feels-aggregate/middleware"
	"github.com/trev-sykes/feels-aggregate/models"
	"github.com/trev-sykes/feels-aggregate/mood"
)

type HeatmapHandler struct {
	heatmap *mood.HeatmapService
	now     func() time.Time
}

func NewHeatmapHandler(heatmap *mood.HeatmapService) *HeatmapHandler {
	return &HeatmapHandler{heatmap: heatmap, now: time.Now}
}

// dayParam returns ?day=, defaulting to the current UTC day
func (h *HeatmapHandler) dayParam(r *http.Request) (string, bool) {
	day := r.URL.Query().Get("day")
	if day == "" {
		day, _ = models.Partition(h.now())
		return day, true
	}
	return day, models.ValidDay(day)
}

// GetSnapshot handles GET /api/heatmap
func (h *HeatmapHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	snap, err := h.heatmap.Snapshot(r.Context(), day)
	if err != nil {
		slog.Error("failed to load heatmap", "day", day, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load heatmap")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}

// GetSummary handles GET /api/summary
// Defaults to the current UTC hour; ?day= and ?hour= select another one.
func (h *HeatmapHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	_, hour := models.Partition(h.now())
	if raw := r.URL.Query().Get("hour"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n >= models.HoursPerDay {
			middleware.ErrorResponse(w, http.StatusBadRequest, "hour must be 0-23")
			return
		}
		hour = n
	}

	sum, err := h.heatmap.Summary(r.Context(), day, hour)
	if err != nil {
		slog.Error("failed to load summary", "day", day, "hour", hour, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load summary")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sum)
}
