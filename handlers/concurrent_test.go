// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/pulsepoll/cliparse"
	"github.com/danielhkuo/pulsepoll/models"
	"github.com/danielhkuo/pulsepoll/testutil"
)

func concurrentConfig() cliparse.Config {
	cfg := testutil.GetTestConfig()
	cfg.RateLimitMaxAttempts = 1000
	return cfg
}

// TestConcurrentVotesSameVoter verifies that simultaneous votes from one
// browser are counted exactly once
func TestConcurrentVotesSameVoter(t *testing.T) {
	env := testutil.NewEnv(t, concurrentConfig())
	handler := NewVotingHandler(env.Pipeline)
	poll := testutil.CreateTestPoll(t, env.Store, "Q", "A", "B")

	const attempts = 20
	var okCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := voteRequest(poll.ID, poll.Options[i%2].ID, nil)
			req.AddCookie(&http.Cookie{Name: VoterCookie, Value: "one-browser"})
			w := httptest.NewRecorder()
			handler.Vote(w, req)

			switch w.Code {
			case http.StatusOK:
				okCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}
	wg.Wait()

	if okCount.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted vote, got %d", okCount.Load())
	}
	if conflictCount.Load() != attempts-1 {
		t.Errorf("Expected %d conflicts, got %d", attempts-1, conflictCount.Load())
	}

	stored, err := env.Store.GetPoll(t.Context(), poll.ID)
	if err != nil {
		t.Fatalf("Failed to load poll: %v", err)
	}
	if stored.TotalVotes != 1 {
		t.Errorf("Expected total_votes 1, got %d", stored.TotalVotes)
	}
}

// TestConcurrentVotesManyVoters verifies no updates are lost and every
// response is a consistent snapshot
func TestConcurrentVotesManyVoters(t *testing.T) {
	env := testutil.NewEnv(t, concurrentConfig())
	handler := NewVotingHandler(env.Pipeline)
	poll := testutil.CreateTestPoll(t, env.Store, "Q", "A", "B", "C", "D")

	const voters = 40
	var wg sync.WaitGroup

	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			req := voteRequest(poll.ID, poll.Options[i%4].ID, nil)
			req.AddCookie(&http.Cookie{Name: VoterCookie, Value: fmt.Sprintf("voter-%d", i)})
			w := httptest.NewRecorder()
			handler.Vote(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Voter %d: unexpected status %d", i, w.Code)
				return
			}

			var snap models.Poll
			testutil.AssertJSON(t, w, &snap)

			var sum int64
			for _, opt := range snap.Options {
				sum += opt.Votes
			}
			if sum != snap.TotalVotes {
				t.Errorf("Snapshot total %d does not match option sum %d", snap.TotalVotes, sum)
			}
		}(i)
	}
	wg.Wait()

	stored, err := env.Store.GetPoll(t.Context(), poll.ID)
	if err != nil {
		t.Fatalf("Failed to load poll: %v", err)
	}
	if stored.TotalVotes != voters {
		t.Errorf("Expected %d votes, got %d", voters, stored.TotalVotes)
	}
	if stored.Version != voters+1 {
		t.Errorf("Expected version %d, got %d", voters+1, stored.Version)
	}
	for _, opt := range stored.Options {
		if opt.Votes != voters/4 {
			t.Errorf("Option %s: expected %d votes, got %d", opt.Text, voters/4, opt.Votes)
		}
	}
}
