// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/engine"
	"github.com/danielhkuo/pollvote/middleware"
	"github.com/danielhkuo/pollvote/models"
)

type VotingHandler struct {
	votes *engine.Engine
}

func NewVotingHandler(votes *engine.Engine) *VotingHandler {
	return &VotingHandler{votes: votes}
}

// CastVote handles POST /polls/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeInvalidOption, "option_id is required")
		return
	}

	vote, err := h.votes.CastVote(r.Context(), r.PathValue("id"), req.OptionID, auth.FromContext(r.Context()))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{VoteID: vote.ID})
}

// MyVote handles GET /polls/{id}/votes/me
func (h *VotingHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	vote, err := h.votes.UserVote(r.Context(), r.PathValue("id"), auth.FromContext(r.Context()))
	if errors.Is(err, models.ErrNotFound) {
		middleware.JSONResponse(w, http.StatusOK, models.MyVoteResponse{HasVoted: false})
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyVoteResponse{
		HasVoted: true,
		OptionID: &vote.OptionID,
	})
}
