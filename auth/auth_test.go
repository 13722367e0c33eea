// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()

	if _, err := uuid.Parse(id1); err != nil {
		t.Errorf("NewID() = %q is not a UUID: %v", id1, err)
	}
	if id1 == id2 {
		t.Error("NewID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	verifier, err := NewVerifier("test-secret")
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	tests := []struct {
		name      string
		principal Principal
	}{
		{"regular user", Principal{ID: "user-1", DisplayName: "Alice"}},
		{"admin", Principal{ID: "admin-1", DisplayName: "Root", IsAdmin: true}},
		{"no display name", Principal{ID: "user-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := issuer.Issue(tt.principal)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			// Both raw and "Bearer "-prefixed forms are accepted
			for _, raw := range []string{token, "Bearer " + token} {
				got, err := verifier.Verify(raw)
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				if *got != tt.principal {
					t.Errorf("Verify() = %+v, want %+v", *got, tt.principal)
				}
			}
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	verifier, _ := NewVerifier("test-secret")
	otherIssuer, _ := NewIssuer("other-secret", time.Hour)
	foreign, _ := otherIssuer.Issue(Principal{ID: "user-1"})

	expiredIssuer, _ := NewIssuer("test-secret", time.Minute)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := expiredIssuer.Issue(Principal{ID: "user-1"})

	noSubject, _ := (&Issuer{secret: []byte("test-secret"), now: time.Now}).Issue(Principal{})

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", "", ErrMissingToken},
		{"bearer only", "Bearer ", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"missing subject", noSubject, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmptySecret(t *testing.T) {
	if _, err := NewVerifier(""); !errors.Is(err, ErrNoSecret) {
		t.Errorf("NewVerifier(\"\") error = %v, want ErrNoSecret", err)
	}
	if _, err := NewIssuer("", time.Hour); !errors.Is(err, ErrNoSecret) {
		t.Errorf("NewIssuer(\"\") error = %v, want ErrNoSecret", err)
	}
}

func TestCanManage(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		owner     string
		want      bool
	}{
		{"owner", &Principal{ID: "u1"}, "u1", true},
		{"admin", &Principal{ID: "a1", IsAdmin: true}, "u1", true},
		{"stranger", &Principal{ID: "u2"}, "u1", false},
		{"nil principal", nil, "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.principal.CanManage(tt.owner); got != tt.want {
				t.Errorf("CanManage(%q) = %v, want %v", tt.owner, got, tt.want)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != nil {
		t.Error("expected nil principal on empty context")
	}

	p := &Principal{ID: "u1"}
	ctx = WithPrincipal(ctx, p)
	if got := FromContext(ctx); got != p {
		t.Errorf("FromContext() = %v, want %v", got, p)
	}
}
