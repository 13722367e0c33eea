// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/lifecycle"
	"github.com/danielhkuo/pollvote/middleware"
	"github.com/danielhkuo/pollvote/models"
)

type PollHandler struct {
	polls *lifecycle.Manager
}

func NewPollHandler(polls *lifecycle.Manager) *PollHandler {
	return &PollHandler{polls: polls}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON")
		return
	}

	pollID, err := h.polls.CreatePoll(r.Context(), models.CreatePollInput{
		Question:         req.Question,
		Options:          req.Options,
		IsAnonymous:      req.IsAnonymous,
		Category:         req.Category,
		IsCustomCategory: req.IsCustomCategory,
	}, auth.FromContext(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: pollID,
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.polls.GetPoll(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ListPolls handles GET /polls?category=
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.polls.ListPolls(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListPollsResponse{Polls: polls})
}

// LatestPolls handles GET /polls/latest?limit=
func (h *PollHandler) LatestPolls(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "limit must be a positive integer")
			return
		}
		limit = n
	}

	polls, err := h.polls.LatestPolls(r.Context(), limit)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListPollsResponse{Polls: polls})
}

// MyPolls handles GET /polls/mine
func (h *PollHandler) MyPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.polls.UserPolls(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListPollsResponse{Polls: polls})
}

// ToggleStatus handles POST /polls/{id}/toggle
func (h *PollHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	isActive, err := h.polls.ToggleStatus(r.Context(), r.PathValue("id"), auth.FromContext(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ToggleStatusResponse{IsActive: isActive})
}

// DeletePoll handles DELETE /polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.polls.DeletePoll(r.Context(), r.PathValue("id"), auth.FromContext(r.Context())); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
