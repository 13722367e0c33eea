// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls, options and votes through database/sql.

Every method takes a DBTX so it can run on its own or inside
Store.InTx. Statements use $N placeholders, which both lib/pq and
modernc.org/sqlite accept.

Counters are denormalized: poll.total_votes and poll_option.vote_count
are only changed inside the same transaction that appends to the vote
ledger, so total_votes always equals the sum of option counts and the
number of ledger rows.
*/
package store
