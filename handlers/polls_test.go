// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/engine"
	"github.com/danielhkuo/pollvote/lifecycle"
	"github.com/danielhkuo/pollvote/metrics"
	"github.com/danielhkuo/pollvote/middleware"
	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/notify"
	"github.com/danielhkuo/pollvote/results"
	"github.com/danielhkuo/pollvote/store"
	"github.com/danielhkuo/pollvote/testutil"
)

var (
	alice = auth.Principal{ID: "alice", DisplayName: "Alice"}
	bob   = auth.Principal{ID: "bob", DisplayName: "Bob"}
	root  = auth.Principal{ID: "root", DisplayName: "Root", IsAdmin: true}
)

type testEnv struct {
	db      *sql.DB
	handler http.Handler
	broker  *notify.Broker
}

// setupHandlers wires every handler over a fresh sqlite database the same
// way the router does.
func setupHandlers(t *testing.T) testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	s := store.New(db)
	b := notify.NewBroker()
	m := metrics.NewNoop()

	polls := NewPollHandler(lifecycle.New(s, b, m))
	voting := NewVotingHandler(engine.New(s, b, m))
	res := NewResultsHandler(results.New(s, b, m), "")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /polls", middleware.RequireAuth(polls.CreatePoll))
	mux.HandleFunc("GET /polls", polls.ListPolls)
	mux.HandleFunc("GET /polls/latest", polls.LatestPolls)
	mux.HandleFunc("GET /polls/mine", middleware.RequireAuth(polls.MyPolls))
	mux.HandleFunc("GET /polls/{id}", polls.GetPoll)
	mux.HandleFunc("POST /polls/{id}/toggle", middleware.RequireAuth(polls.ToggleStatus))
	mux.HandleFunc("DELETE /polls/{id}", middleware.RequireAuth(polls.DeletePoll))
	mux.HandleFunc("POST /polls/{id}/votes", middleware.RequireAuth(voting.CastVote))
	mux.HandleFunc("GET /polls/{id}/votes/me", middleware.RequireAuth(voting.MyVote))
	mux.HandleFunc("GET /polls/{id}/results", res.GetResults)
	mux.HandleFunc("GET /polls/{id}/results/live", res.LiveResults)

	return testEnv{
		db:      db,
		handler: middleware.Authenticate(testutil.TestVerifier(t), mux),
		broker:  b,
	}
}

func (e testEnv) do(t *testing.T, method, path string, body interface{}, as *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()

	var headers map[string]string
	if as != nil {
		headers = testutil.AuthHeader(t, *as)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
	return w
}

func assertCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Code != code {
		t.Errorf("Expected error code %s, got %s (%s)", code, resp.Code, resp.Message)
	}
}

func TestCreatePoll(t *testing.T) {
	env := setupHandlers(t)

	t.Run("creates active poll", func(t *testing.T) {
		w := env.do(t, "POST", "/polls", models.CreatePollRequest{
			Question:    "Where should we eat?",
			Options:     []string{"Pizza", "Sushi", "Tacos"},
			Category:    "food",
			IsAnonymous: true,
		}, &alice)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreatePollResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.PollID == "" {
			t.Fatal("Expected poll_id in response")
		}

		w = env.do(t, "GET", "/polls/"+resp.PollID, nil, nil)
		testutil.AssertStatus(t, w, http.StatusOK)

		var poll models.Poll
		testutil.AssertJSON(t, w, &poll)
		if !poll.IsActive || !poll.IsAnonymous || poll.CreatedBy != alice.ID || len(poll.Options) != 3 {
			t.Errorf("Unexpected poll: %+v", poll)
		}
	})

	testCases := []struct {
		name   string
		body   interface{}
		as     *auth.Principal
		status int
		code   string
	}{
		{"no token", models.CreatePollRequest{Question: "Valid question", Options: []string{"A", "B"}, Category: "x"}, nil, http.StatusUnauthorized, models.CodeUnauthenticated},
		{"short question", models.CreatePollRequest{Question: "Hi", Options: []string{"A", "B"}, Category: "x"}, &alice, http.StatusBadRequest, models.CodeValidation},
		{"one option", models.CreatePollRequest{Question: "Valid question", Options: []string{"A"}, Category: "x"}, &alice, http.StatusBadRequest, models.CodeValidation},
		{"duplicate options", models.CreatePollRequest{Question: "Valid question", Options: []string{"A", "a"}, Category: "x"}, &alice, http.StatusBadRequest, models.CodeValidation},
		{"missing category", models.CreatePollRequest{Question: "Valid question", Options: []string{"A", "B"}}, &alice, http.StatusBadRequest, models.CodeValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, "POST", "/polls", tc.body, tc.as)
			testutil.AssertStatus(t, w, tc.status)
			assertCode(t, w, tc.code)
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls", nil)
		req.Header.Set("Authorization", "Bearer "+testutil.Token(t, alice))
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestGetPollNotFound(t *testing.T) {
	env := setupHandlers(t)

	w := env.do(t, "GET", "/polls/does-not-exist", nil, nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)
	assertCode(t, w, models.CodeNotFound)
}

func TestListPolls(t *testing.T) {
	env := setupHandlers(t)

	base := time.Now().UTC().Add(-time.Hour)
	testutil.CreateTestPoll(t, env.db, testutil.PollFixture{CreatedBy: alice.ID, Category: "food", CreatedAt: base})
	testutil.CreateTestPoll(t, env.db, testutil.PollFixture{CreatedBy: bob.ID, Category: "dev", CreatedAt: base.Add(time.Minute)})
	newest, _ := testutil.CreateTestPoll(t, env.db, testutil.PollFixture{CreatedBy: alice.ID, Category: "dev", CreatedAt: base.Add(2 * time.Minute)})

	testCases := []struct {
		name  string
		path  string
		as    *auth.Principal
		count int
	}{
		{"all", "/polls", nil, 3},
		{"by category", "/polls?category=dev", nil, 2},
		{"unknown category", "/polls?category=none", nil, 0},
		{"latest default", "/polls/latest", nil, 3},
		{"latest limited", "/polls/latest?limit=1", nil, 1},
		{"mine", "/polls/mine", &alice, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, "GET", tc.path, nil, tc.as)
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.ListPollsResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Polls) != tc.count {
				t.Errorf("Expected %d polls, got %d", tc.count, len(resp.Polls))
			}
			if tc.count > 0 && resp.Polls[0].ID != newest {
				t.Errorf("Expected newest poll first")
			}
		})
	}

	t.Run("bad limit", func(t *testing.T) {
		w := env.do(t, "GET", "/polls/latest?limit=zero", nil, nil)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("mine requires auth", func(t *testing.T) {
		w := env.do(t, "GET", "/polls/mine", nil, nil)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestToggleStatus(t *testing.T) {
	env := setupHandlers(t)
	pollID, _ := testutil.CreateTestPoll(t, env.db, testutil.PollFixture{CreatedBy: alice.ID})

	w := env.do(t, "POST", "/polls/"+pollID+"/toggle", nil, &bob)
	testutil.AssertStatus(t, w, http.StatusForbidden)
	assertCode(t, w, models.CodeForbidden)

	w = env.do(t, "POST", "/polls/"+pollID+"/toggle", nil, &alice)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ToggleStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.IsActive {
		t.Error("Expected poll to be closed after first toggle")
	}

	// Admins bypass ownership
	w = env.do(t, "POST", "/polls/"+pollID+"/toggle", nil, &root)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	if !resp.IsActive {
		t.Error("Expected admin toggle to reopen the poll")
	}

	w = env.do(t, "POST", "/polls/missing/toggle", nil, &alice)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestDeletePoll(t *testing.T) {
	env := setupHandlers(t)
	pollID, opts := testutil.CreateTestPoll(t, env.db, testutil.PollFixture{CreatedBy: alice.ID})
	testutil.AddTestVote(t, env.db, pollID, opts[0], bob.ID, bob.DisplayName)

	w := env.do(t, "DELETE", "/polls/"+pollID, nil, &bob)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = env.do(t, "DELETE", "/polls/"+pollID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = env.do(t, "DELETE", "/polls/"+pollID, nil, &alice)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	var votes int
	env.db.QueryRow(`SELECT COUNT(*) FROM vote WHERE poll_id = $1`, pollID).Scan(&votes)
	if votes != 0 {
		t.Errorf("Expected votes to be deleted with the poll, found %d", votes)
	}

	w = env.do(t, "GET", "/polls/"+pollID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = env.do(t, "DELETE", "/polls/"+pollID, nil, &alice)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
