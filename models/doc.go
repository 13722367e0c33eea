// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, domain and error types.

# Request Types

  - CreatePollRequest: question, options, is_anonymous, category
  - CastVoteRequest: option_id

# Response Types

  - CreatePollResponse: poll_id
  - CastVoteResponse: vote_id
  - ToggleStatusResponse: is_active
  - MyVoteResponse: has_voted, option_id
  - ListPollsResponse: polls
  - ErrorResponse: error, code, message

# Domain Types

  - Poll: question, ordered options and the denormalized tally
  - Option: option text and its vote count
  - Vote: one ledger entry per (poll, user)
  - Results: the projected view with percentages and voters

# Errors

Every engine failure wraps one of the sentinel errors:

	ErrNotFound, ErrPollClosed, ErrInvalidOption, ErrDuplicateVote,
	ErrForbidden, ErrValidation, ErrUnauthenticated, ErrStoreUnavailable

Use errors.Is to classify, Code for the client-facing code and
Retryable to decide whether a retry is safe.
*/
package models
