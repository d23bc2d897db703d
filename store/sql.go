// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pulsepoll/db"
	"github.com/danielhkuo/pulsepoll/models"
)

// SQL dialects, matching the database/sql driver names
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// SQLStore keeps polls, votes and attempts in PostgreSQL or SQLite.
// Every query uses $N placeholders in order of first appearance so the
// same text binds correctly on both drivers.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// NewSQLStore wraps an open connection. The schema must already exist.
func NewSQLStore(conn *sql.DB, dialect string) *SQLStore {
	if dialect == DialectSQLite {
		// SQLite allows one writer; a single connection serializes
		// transactions instead of failing them with SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
	}
	return &SQLStore{db: conn, dialect: dialect}
}

// OpenSQL connects, verifies the connection and creates the schema
func OpenSQL(ctx context.Context, dialect, url string) (*SQLStore, error) {
	conn, err := sql.Open(dialect, url)
	if err != nil {
		return nil, unavailable("open database", err)
	}

	s := NewSQLStore(conn, dialect)
	if err := s.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, unavailable("create schema", err)
	}

	return s, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping database", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for tests and tooling
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) CreatePoll(ctx context.Context, question string, optionTexts []string) (models.Poll, error) {
	now := time.Now().UTC()

	for i := 0; i < maxIDAttempts; i++ {
		poll, err := newPoll(question, optionTexts, now)
		if err != nil {
			return models.Poll{}, err
		}

		inserted, err := s.insertPoll(ctx, poll)
		if err != nil {
			return models.Poll{}, err
		}
		if inserted {
			return poll, nil
		}
	}

	return models.Poll{}, fmt.Errorf("create poll: %w: no free poll id", ErrUnavailable)
}

// insertPoll returns false when the poll ID is already taken
func (s *SQLStore) insertPoll(ctx context.Context, poll models.Poll) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO poll (id, question, version, total_votes, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, poll.ID, poll.Question, poll.Version, poll.CreatedAt, poll.UpdatedAt)
	if err != nil {
		return false, unavailable("insert poll", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, unavailable("insert poll", err)
	} else if n == 0 {
		return false, nil
	}

	for i, opt := range poll.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_option (id, poll_id, position, label, votes)
			VALUES ($1, $2, $3, $4, 0)
		`, opt.ID, poll.ID, i, opt.Text)
		if err != nil {
			return false, unavailable("insert option", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, unavailable("commit poll", err)
	}

	return true, nil
}

func (s *SQLStore) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	return readPoll(ctx, s.db, pollID)
}

// readPoll loads a poll and its options with a single statement so the
// snapshot always reflects whole vote updates.
func readPoll(ctx context.Context, q querier, pollID string) (models.Poll, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.id, p.question, p.version, p.total_votes, p.created_at, p.updated_at,
		       o.id, o.label, o.votes
		FROM poll p
		JOIN poll_option o ON o.poll_id = p.id
		WHERE p.id = $1
		ORDER BY o.position
	`, pollID)
	if err != nil {
		return models.Poll{}, unavailable("query poll", err)
	}
	defer rows.Close()

	var poll models.Poll
	found := false
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(
			&poll.ID, &poll.Question, &poll.Version, &poll.TotalVotes, &poll.CreatedAt, &poll.UpdatedAt,
			&opt.ID, &opt.Text, &opt.Votes,
		); err != nil {
			return models.Poll{}, unavailable("scan poll", err)
		}
		poll.Options = append(poll.Options, opt)
		found = true
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, unavailable("query poll", err)
	}
	if !found {
		return models.Poll{}, ErrPollNotFound
	}

	poll.CreatedAt = poll.CreatedAt.UTC()
	poll.UpdatedAt = poll.UpdatedAt.UTC()
	return poll, nil
}

func (s *SQLStore) CheckOption(ctx context.Context, pollID, optionID string) error {
	var polls, options int
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM poll WHERE id = $1),
			(SELECT COUNT(*) FROM poll_option WHERE poll_id = $1 AND id = $2)
	`, pollID, optionID).Scan(&polls, &options)
	if err != nil {
		return unavailable("check option", err)
	}

	if polls == 0 {
		return ErrPollNotFound
	}
	if options == 0 {
		return ErrOptionNotFound
	}
	return nil
}

func (s *SQLStore) ApplyVote(ctx context.Context, pollID, optionID string, at time.Time) (models.Poll, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	// The poll row is locked first so concurrent votes on the same poll
	// queue behind each other instead of interleaving counter updates.
	res, err := tx.ExecContext(ctx, `
		UPDATE poll
		SET total_votes = total_votes + 1, version = version + 1, updated_at = $1
		WHERE id = $2
		  AND EXISTS (SELECT 1 FROM poll_option WHERE poll_id = $2 AND id = $3)
	`, at.UTC(), pollID, optionID)
	if err != nil {
		return models.Poll{}, unavailable("update poll", err)
	}
	if err := expectOneRow(res); err != nil {
		return models.Poll{}, err
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE poll_option SET votes = votes + 1
		WHERE poll_id = $1 AND id = $2
	`, pollID, optionID)
	if err != nil {
		return models.Poll{}, unavailable("update option", err)
	}
	if err := expectOneRow(res); err != nil {
		return models.Poll{}, err
	}

	poll, err := readPoll(ctx, tx, pollID)
	if err != nil {
		return models.Poll{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, unavailable("commit vote", err)
	}

	return poll, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("rows affected", err)
	}
	if n != 1 {
		return ErrOptionNotFound
	}
	return nil
}

func (s *SQLStore) RecordVote(ctx context.Context, vote models.Vote) error {
	// UNIQUE (poll_id, voter_id) decides the winner between concurrent
	// votes from the same voter; the losers insert nothing.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO vote (poll_id, option_id, voter_id, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (poll_id, voter_id) DO NOTHING
	`, vote.PollID, vote.OptionID, vote.VoterID, vote.IPHash, vote.CreatedAt.UTC())
	if err != nil {
		return unavailable("insert vote", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("insert vote", err)
	}
	if n == 0 {
		return ErrDuplicateVote
	}
	return nil
}

func (s *SQLStore) RecordAttempt(ctx context.Context, attempt models.VoteAttempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vote_attempt (poll_id, ip_hash, attempted_at)
		VALUES ($1, $2, $3)
	`, attempt.PollID, attempt.IPHash, attempt.AttemptedAt.UTC())
	if err != nil {
		return unavailable("insert attempt", err)
	}
	return nil
}

func (s *SQLStore) CountAttempts(ctx context.Context, pollID, ipHash string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote_attempt
		WHERE poll_id = $1 AND ip_hash = $2 AND attempted_at >= $3
	`, pollID, ipHash, since.UTC()).Scan(&count)
	if err != nil {
		return 0, unavailable("count attempts", err)
	}
	return count, nil
}
