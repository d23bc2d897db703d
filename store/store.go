// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/pulsepoll/auth"
	"github.com/danielhkuo/pulsepoll/models"
)

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrOptionNotFound = errors.New("option not found for this poll")
	ErrDuplicateVote  = errors.New("already voted on this poll")
	ErrUnavailable    = errors.New("storage unavailable")
)

const (
	pollIDBytes   = 6
	optionIDBytes = 8

	// attempts at finding a free poll ID before giving up
	maxIDAttempts = 5
)

// Polls is the poll aggregate store.
type Polls interface {
	CreatePoll(ctx context.Context, question string, optionTexts []string) (models.Poll, error)
	GetPoll(ctx context.Context, pollID string) (models.Poll, error)
	// CheckOption returns ErrPollNotFound or ErrOptionNotFound
	CheckOption(ctx context.Context, pollID, optionID string) error
	// ApplyVote atomically bumps the option, total and version counters
	ApplyVote(ctx context.Context, pollID, optionID string, at time.Time) (models.Poll, error)
}

// Ledger records admitted votes. RecordVote returns ErrDuplicateVote when
// the voter already has a vote on the poll.
type Ledger interface {
	RecordVote(ctx context.Context, vote models.Vote) error
}

// Attempts is the append-only vote attempt log.
type Attempts interface {
	RecordAttempt(ctx context.Context, attempt models.VoteAttempt) error
	CountAttempts(ctx context.Context, pollID, ipHash string, since time.Time) (int, error)
}

type Store interface {
	Polls
	Ledger
	Attempts
	Ping(ctx context.Context) error
	Close() error
}

// newPoll builds a fresh poll with random IDs, zero counters and version 1
func newPoll(question string, optionTexts []string, now time.Time) (models.Poll, error) {
	pollID, err := auth.GenerateID(pollIDBytes)
	if err != nil {
		return models.Poll{}, err
	}

	seen := make(map[string]bool, len(optionTexts))
	options := make([]models.Option, 0, len(optionTexts))
	for len(options) < len(optionTexts) {
		optionID, err := auth.GenerateID(optionIDBytes)
		if err != nil {
			return models.Poll{}, err
		}
		if seen[optionID] {
			continue
		}
		seen[optionID] = true
		options = append(options, models.Option{ID: optionID, Text: optionTexts[len(options)]})
	}

	return models.Poll{
		ID:        pollID,
		Question:  question,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Options:   options,
	}, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
