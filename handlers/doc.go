// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollvote API.

# Handler Types

Each handler is a thin struct over one service:

  - PollHandler: lifecycle.Manager (create, list, toggle, delete)
  - VotingHandler: engine.Engine (cast vote, own vote)
  - ResultsHandler: results.Projector (results, live stream)

Handlers decode the request, take the principal from the request
context and translate service errors with middleware.WriteError. They
hold no state of their own.

# Live Results

LiveResults subscribes before upgrading, so an unknown poll gets a plain
404. After the upgrade it writes one JSON results view per change. The
stream closes with a normal close frame when the poll is deleted and
releases its subscription when the client goes away.
*/
package handlers
