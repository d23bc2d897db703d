// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/danielhkuo/pulsepoll/admission"
	"github.com/danielhkuo/pulsepoll/middleware"
	"github.com/danielhkuo/pulsepoll/models"
)

const (
	// VoterCookie holds the anonymous voter ID
	VoterCookie = "voter_id"

	voterCookieMaxAge = 365 * 24 * time.Hour
)

type VotingHandler struct {
	pipeline *admission.Pipeline
}

func NewVotingHandler(pipeline *admission.Pipeline) *VotingHandler {
	return &VotingHandler{pipeline: pipeline}
}

// Vote handles POST /polls/{id}/vote
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var voterToken string
	if c, err := r.Cookie(VoterCookie); err == nil {
		voterToken = c.Value
	}

	res, err := h.pipeline.Submit(r.Context(), admission.Request{
		PollID:     r.PathValue("id"),
		OptionID:   req.OptionID,
		VoterToken: voterToken,
		ClientIP:   middleware.GetClientIP(r),
	})
	if err != nil {
		writeError(w, "submit vote", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     VoterCookie,
		Value:    res.VoterID,
		Path:     "/",
		MaxAge:   int(voterCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.JSONResponse(w, http.StatusOK, res.Poll)
}
