// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/trev-sykes/feels-aggregate/middleware"
	"github.com/trev-sykes/feels-aggregate/models"
	"github.com/trev-sykes/feels-aggregate/mood"
)

type VoteHandler struct {
	votes   *mood.VoteService
	proxies *middleware.ProxyTrust
	now     func() time.Time
}

// NewVoteHandler builds the vote endpoints. proxies may be nil, in which case
// forwarding headers are ignored and the peer address is the client.
func NewVoteHandler(votes *mood.VoteService, proxies *middleware.ProxyTrust) *VoteHandler {
	return &VoteHandler{votes: votes, proxies: proxies, now: time.Now}
}

// requester pulls the identity inputs off the request. Missing values are
// left empty and replaced by sentinels during derivation.
func (h *VoteHandler) requester(r *http.Request) mood.Requester {
	return mood.Requester{
		IP:        h.proxies.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// Submit handles POST /api/submit
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.JSONResponse(w, http.StatusBadRequest, models.SubmitVoteResponse{
			Error: models.ErrCodeMissingEmotion,
		})
		return
	}

	emotion, err := models.ParseEmotion(req.Emotion)
	if err != nil {
		middleware.JSONResponse(w, http.StatusBadRequest, models.SubmitVoteResponse{
			Error: models.ErrCodeMissingEmotion,
		})
		return
	}

	hour, err := h.votes.Submit(r.Context(), emotion, h.requester(r), h.now())
	switch {
	case errors.Is(err, mood.ErrAlreadyVoted):
		middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
			Error: models.ErrCodeAlreadyVoted,
		})
		return
	case errors.Is(err, mood.ErrInvalidEmotion):
		middleware.JSONResponse(w, http.StatusBadRequest, models.SubmitVoteResponse{
			Error: models.ErrCodeMissingEmotion,
		})
		return
	case err != nil:
		slog.Error("unexpected vote error", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		OK:   true,
		Hour: &hour,
	})
}

// GetMyVote handles GET /api/me
func (h *VoteHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	emotion, err := h.votes.TodaysVote(r.Context(), h.requester(r), h.now())
	if err != nil {
		slog.Error("failed to look up vote", "error", err, "request_id", middleware.RequestID(r.Context()))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyVoteResponse{Emotion: emotion})
}
