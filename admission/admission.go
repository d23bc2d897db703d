// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/pulsepoll/auth"
	"github.com/danielhkuo/pulsepoll/event"
	"github.com/danielhkuo/pulsepoll/metrics"
	"github.com/danielhkuo/pulsepoll/models"
	"github.com/danielhkuo/pulsepoll/notify"
	"github.com/danielhkuo/pulsepoll/ratelimit"
	"github.com/danielhkuo/pulsepoll/store"
)

var (
	ErrValidation  = errors.New("invalid vote request")
	ErrRateLimited = errors.New("too many vote attempts, try again later")
)

// MaxOptionIDLength bounds option IDs accepted from clients
const MaxOptionIDLength = 64

const publishTimeout = 5 * time.Second

// Store is the part of the store the pipeline writes to
type Store interface {
	store.Polls
	store.Ledger
}

type Request struct {
	PollID     string
	OptionID   string
	VoterToken string // from the voter cookie, may be empty
	ClientIP   string
}

type Result struct {
	Poll    models.Poll
	VoterID string
}

// Pipeline admits votes. It is safe for concurrent use; all
// serialization happens in the store.
type Pipeline struct {
	store     Store
	limiter   ratelimit.Limiter
	notifier  *notify.Notifier
	publisher event.VotePublisher
	metrics   *metrics.Admission
	salt      string
	now       func() time.Time
}

func New(st Store, limiter ratelimit.Limiter, notifier *notify.Notifier, publisher event.VotePublisher, m *metrics.Admission, salt string) *Pipeline {
	return &Pipeline{
		store:     st,
		limiter:   limiter,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		salt:      salt,
		now:       time.Now,
	}
}

// Submit runs one vote through validation, the rate limit, the ledger and
// the aggregate update, in that order. Each gate that fails stops the
// vote with a distinct error:
//
//   - ErrValidation: malformed option ID
//   - store.ErrPollNotFound: no such poll
//   - store.ErrOptionNotFound: the option is not part of the poll
//   - ErrRateLimited: too many attempts from this address
//   - store.ErrDuplicateVote: the voter already voted
//   - store.ErrUnavailable: storage failure
func (p *Pipeline) Submit(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, err := p.submit(ctx, req)
	p.metrics.ObserveVote(outcome(err), time.Since(start))
	return res, err
}

func (p *Pipeline) submit(ctx context.Context, req Request) (Result, error) {
	if err := validateOptionID(req.OptionID); err != nil {
		return Result{}, err
	}

	if err := p.store.CheckOption(ctx, req.PollID, req.OptionID); err != nil {
		return Result{}, err
	}

	now := p.now().UTC()
	fingerprint := auth.FingerprintIP(req.ClientIP, p.salt)

	allowed, err := p.limiter.Allow(ctx, req.PollID, fingerprint, now)
	if err != nil {
		return Result{}, err
	}
	if !allowed {
		slog.Info("vote rejected", "reason", "rate_limited", "poll_id", req.PollID)
		return Result{}, ErrRateLimited
	}

	voterID := auth.ResolveVoterID(req.VoterToken)
	err = p.store.RecordVote(ctx, models.Vote{
		PollID:    req.PollID,
		OptionID:  req.OptionID,
		VoterID:   voterID,
		IPHash:    fingerprint,
		CreatedAt: now,
	})
	if errors.Is(err, store.ErrDuplicateVote) {
		slog.Info("vote rejected", "reason", "duplicate", "poll_id", req.PollID)
		return Result{}, err
	}
	if err != nil {
		return Result{}, err
	}

	poll, err := p.store.ApplyVote(ctx, req.PollID, req.OptionID, now)
	if err != nil {
		// The ledger row stays; the voter cannot retry into a double count.
		return Result{}, err
	}

	p.notifier.Signal(req.PollID)
	p.publish(ctx, req.OptionID, poll, now)

	return Result{Poll: poll, VoterID: voterID}, nil
}

// publish exports the vote. The vote is already committed, so failures
// are only logged.
func (p *Pipeline) publish(ctx context.Context, optionID string, poll models.Poll, at time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := p.publisher.Publish(ctx, models.VoteEvent{
		PollID:     poll.ID,
		OptionID:   optionID,
		Version:    poll.Version,
		TotalVotes: poll.TotalVotes,
		VotedAt:    at,
	})
	if err != nil {
		slog.Warn("failed to publish vote event", "poll_id", poll.ID, "error", err)
	}
}

func validateOptionID(optionID string) error {
	switch {
	case optionID == "":
		return fmt.Errorf("%w: option_id is required", ErrValidation)
	case len(optionID) > MaxOptionIDLength:
		return fmt.Errorf("%w: option_id must be at most %d characters", ErrValidation, MaxOptionIDLength)
	case !auth.ValidToken(optionID):
		return fmt.Errorf("%w: option_id contains invalid characters", ErrValidation)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAccepted
	case errors.Is(err, store.ErrDuplicateVote):
		return metrics.OutcomeDuplicate
	case errors.Is(err, ErrRateLimited):
		return metrics.OutcomeRateLimited
	case errors.Is(err, store.ErrOptionNotFound):
		return metrics.OutcomeInvalidOption
	case errors.Is(err, store.ErrPollNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
