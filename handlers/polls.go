// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/danielhkuo/pulsepoll/middleware"
	"github.com/danielhkuo/pulsepoll/models"
	"github.com/danielhkuo/pulsepoll/store"
)

type PollHandler struct {
	store store.Polls
}

func NewPollHandler(st store.Polls) *PollHandler {
	return &PollHandler{store: st}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Trim, and drop options that are blank
	req.Question = strings.TrimSpace(req.Question)
	req.Options = lo.FilterMap(req.Options, func(opt string, _ int) (string, bool) {
		opt = strings.TrimSpace(opt)
		return opt, opt != ""
	})

	if err := validate.Struct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	poll, err := h.store.CreatePoll(r.Context(), req.Question, req.Options)
	if err != nil {
		writeError(w, "create poll", err)
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		Poll:      poll,
		SharePath: "/?poll=" + poll.ID,
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.store.GetPoll(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "get poll", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}
