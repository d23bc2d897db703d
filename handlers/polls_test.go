// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/pulsepoll/models"
	"github.com/danielhkuo/pulsepoll/testutil"
)

// newTestMux registers every handler the way the router does
func newTestMux(t *testing.T) (*http.ServeMux, *testutil.Env) {
	t.Helper()

	env := testutil.NewEnv(t, testutil.GetTestConfig())

	pollHandler := NewPollHandler(env.Store)
	votingHandler := NewVotingHandler(env.Pipeline)
	eventsHandler := NewEventsHandler(env.Store, env.Notifier, env.Metrics, env.Config.CORSOrigins)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /polls", pollHandler.CreatePoll)
	mux.HandleFunc("GET /polls/{id}", pollHandler.GetPoll)
	mux.HandleFunc("POST /polls/{id}/vote", votingHandler.Vote)
	mux.HandleFunc("GET /polls/{id}/events", eventsHandler.Stream)
	mux.HandleFunc("GET /polls/{id}/ws", eventsHandler.WebSocket)

	return mux, env
}

func TestCreatePoll_Success(t *testing.T) {
	env := testutil.NewEnv(t, testutil.GetTestConfig())
	handler := NewPollHandler(env.Store)

	reqBody := models.CreatePollRequest{
		Question: "  Pizza or Pasta?  ",
		Options:  []string{" Pizza", "Pasta "},
	}

	req := testutil.MakeRequest("POST", "/polls", reqBody, nil)
	w := httptest.NewRecorder()

	handler.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatePollResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.ID == "" {
		t.Fatal("Expected poll id in response")
	}
	if resp.Question != "Pizza or Pasta?" {
		t.Errorf("Expected trimmed question, got %q", resp.Question)
	}
	if len(resp.Options) != 2 {
		t.Fatalf("Expected 2 options, got %d", len(resp.Options))
	}
	if resp.Options[0].Text != "Pizza" || resp.Options[1].Text != "Pasta" {
		t.Errorf("Expected trimmed options in order, got %+v", resp.Options)
	}
	if resp.TotalVotes != 0 || resp.Version != 1 {
		t.Errorf("Expected total_votes=0 version=1, got %d and %d", resp.TotalVotes, resp.Version)
	}
	if resp.SharePath != "/?poll="+resp.ID {
		t.Errorf("Expected share_path /?poll=%s, got %s", resp.ID, resp.SharePath)
	}

	// Verify it was persisted
	stored, err := env.Store.GetPoll(req.Context(), resp.ID)
	if err != nil {
		t.Fatalf("Poll not persisted: %v", err)
	}
	if stored.Question != "Pizza or Pasta?" {
		t.Errorf("Expected stored question, got %q", stored.Question)
	}
}

func TestCreatePoll_DropsBlankOptions(t *testing.T) {
	env := testutil.NewEnv(t, testutil.GetTestConfig())
	handler := NewPollHandler(env.Store)

	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Question: "Q",
		Options:  []string{"A", "", "   ", "B", "\t"},
	}, nil)
	w := httptest.NewRecorder()

	handler.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreatePollResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Options) != 2 {
		t.Errorf("Expected 2 options after dropping blanks, got %d", len(resp.Options))
	}
}

func TestCreatePoll_Validation(t *testing.T) {
	env := testutil.NewEnv(t, testutil.GetTestConfig())
	handler := NewPollHandler(env.Store)

	manyOptions := make([]string, models.MaxOptions+1)
	for i := range manyOptions {
		manyOptions[i] = "option"
	}

	testCases := []struct {
		name string
		body any
	}{
		{"missing question", models.CreatePollRequest{Options: []string{"A", "B"}}},
		{"blank question", models.CreatePollRequest{Question: "   ", Options: []string{"A", "B"}}},
		{"question too long", models.CreatePollRequest{Question: strings.Repeat("q", models.MaxQuestionLength+1), Options: []string{"A", "B"}}},
		{"one option", models.CreatePollRequest{Question: "Q", Options: []string{"A"}}},
		{"one option after trimming", models.CreatePollRequest{Question: "Q", Options: []string{"A", "  "}}},
		{"too many options", models.CreatePollRequest{Question: "Q", Options: manyOptions}},
		{"no options", models.CreatePollRequest{Question: "Q"}},
		{"unknown field", map[string]any{"question": "Q", "options": []string{"A", "B"}, "closes_at": "tomorrow"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/polls", tc.body, nil)
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls", strings.NewReader("{not json"))
		w := httptest.NewRecorder()

		handler.CreatePoll(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestCreatePoll_MaxLengthQuestion(t *testing.T) {
	env := testutil.NewEnv(t, testutil.GetTestConfig())
	handler := NewPollHandler(env.Store)

	// 500 multi-byte characters is within the limit
	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Question: strings.Repeat("é", models.MaxQuestionLength),
		Options:  []string{"Oui", "Non"},
	}, nil)
	w := httptest.NewRecorder()

	handler.CreatePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)
}

func TestGetPoll(t *testing.T) {
	env := testutil.NewEnv(t, testutil.GetTestConfig())
	handler := NewPollHandler(env.Store)
	poll := testutil.CreateTestPoll(t, env.Store, "Lunch?", "Pizza", "Pasta", "Salad")

	t.Run("existing poll", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+poll.ID, nil)
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()

		handler.GetPoll(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var got models.Poll
		testutil.AssertJSON(t, w, &got)
		if got.ID != poll.ID || got.Question != "Lunch?" {
			t.Errorf("Unexpected poll: %+v", got)
		}
		if len(got.Options) != 3 {
			t.Errorf("Expected 3 options, got %d", len(got.Options))
		}
	})

	t.Run("unknown poll", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/missing", nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()

		handler.GetPoll(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("json field names", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/"+poll.ID, nil)
		req.SetPathValue("id", poll.ID)
		w := httptest.NewRecorder()

		handler.GetPoll(w, req)

		body := w.Body.String()
		for _, field := range []string{`"id"`, `"question"`, `"version"`, `"created_at"`, `"updated_at"`, `"total_votes"`, `"options"`, `"votes"`, `"text"`} {
			if !strings.Contains(body, field) {
				t.Errorf("Expected field %s in %s", field, body)
			}
		}
	})
}
