// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth models the authenticated principal handed to the engine.

# Principals

Identity is issued by an external provider. The engine only sees:

	type Principal struct {
		ID          string
		DisplayName string
		IsAdmin     bool
	}

Poll management checks go through Principal.CanManage, which lets the
poll creator or any admin through.

# Bearer Tokens

Requests carry an HS256 JWT in the Authorization header. Claims:

  - sub: principal ID (required)
  - name: display name shown next to votes on non-anonymous polls
  - admin: admin flag

Verification:

	v, err := auth.NewVerifier(secret)
	p, err := v.Verify(r.Header.Get("Authorization"))

Issuer mints the same tokens for tests and local tooling.

# Context

Middleware stores the principal on the request context:

	ctx = auth.WithPrincipal(ctx, p)
	p := auth.FromContext(ctx) // nil when unauthenticated

# ID Generation

	id := auth.NewID() // UUIDv4 string
*/
package auth
