// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll validation policy
const (
	MinQuestionLength = 5
	MinOptions        = 2
)

// AnonymousVoterName is shown for voters who never set a display name.
const AnonymousVoterName = "Anonymous"

// Request types

type CreatePollRequest struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	IsAnonymous      bool     `json:"is_anonymous"`
	Category         string   `json:"category"`
	IsCustomCategory bool     `json:"is_custom_category"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
}

type CastVoteResponse struct {
	VoteID string `json:"vote_id"`
}

type ToggleStatusResponse struct {
	IsActive bool `json:"is_active"`
}

type MyVoteResponse struct {
	HasVoted bool    `json:"has_voted"`
	OptionID *string `json:"option_id,omitempty"`
}

type ListPollsResponse struct {
	Polls []Poll `json:"polls"`
}

// Domain types

type Poll struct {
	ID               string    `json:"id"`
	Question         string    `json:"question"`
	Options          []Option  `json:"options"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	IsActive         bool      `json:"is_active"`
	IsAnonymous      bool      `json:"is_anonymous"`
	Category         string    `json:"category"`
	IsCustomCategory bool      `json:"is_custom_category"`
	TotalVotes       int       `json:"total_votes"`
}

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	VoteCount int    `json:"vote_count"`
}

type Vote struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	UserID   string `json:"-"` // Never expose in JSON
	OptionID string `json:"option_id"`
	// DisplayName is empty for anonymous polls.
	DisplayName string    `json:"-"`
	Seq         int       `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatePollInput is the validated-on-entry form of a new poll.
type CreatePollInput struct {
	Question         string
	Options          []string
	IsAnonymous      bool
	Category         string
	IsCustomCategory bool
}

// Result types

type OptionResult struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	VoteCount  int    `json:"vote_count"`
	Percentage int    `json:"percentage"`
	// Voters is nil for anonymous polls and is never serialized for them.
	Voters []string `json:"voters,omitempty"`
}

type Results struct {
	PollID      string         `json:"poll_id"`
	Question    string         `json:"question"`
	IsActive    bool           `json:"is_active"`
	IsAnonymous bool           `json:"is_anonymous"`
	TotalVotes  int            `json:"total_votes"`
	Options     []OptionResult `json:"options"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
