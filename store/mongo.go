// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/pulsepoll/models"
)

const (
	pollsCollection    = "polls"
	votesCollection    = "votes"
	attemptsCollection = "vote_attempts"

	mongoTimeout = 10 * time.Second
)

// MongoStore keeps each poll as one document with embedded options so a
// vote is a single-document update.
type MongoStore struct {
	client   *mongo.Client
	polls    *mongo.Collection
	votes    *mongo.Collection
	attempts *mongo.Collection
}

// OpenMongo connects to uri, pings the server and ensures indexes exist
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable("connect to mongodb", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable("ping mongodb", err)
	}

	s := NewMongoStore(client, dbName)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	database := client.Database(dbName)
	return &MongoStore{
		client:   client,
		polls:    database.Collection(pollsCollection),
		votes:    database.Collection(votesCollection),
		attempts: database.Collection(attemptsCollection),
	}
}

// EnsureIndexes creates the ledger's unique index and the lookup indexes.
// Safe to call multiple times.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.polls.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: 1}},
	})
	if err != nil {
		return unavailable("create poll index", err)
	}

	_, err = s.votes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "poll_id", Value: 1}, {Key: "voter_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "poll_id", Value: 1}},
		},
	})
	if err != nil {
		return unavailable("create vote indexes", err)
	}

	_, err = s.attempts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "poll_id", Value: 1},
			{Key: "ip_hash", Value: 1},
			{Key: "attempted_at", Value: 1},
		},
	})
	if err != nil {
		return unavailable("create attempt index", err)
	}

	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return unavailable("ping mongodb", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreatePoll(ctx context.Context, question string, optionTexts []string) (models.Poll, error) {
	// Mongo stores millisecond precision; truncate so the returned
	// snapshot matches what a later read sees.
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < maxIDAttempts; i++ {
		poll, err := newPoll(question, optionTexts, now)
		if err != nil {
			return models.Poll{}, err
		}

		_, err = s.polls.InsertOne(ctx, poll)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return models.Poll{}, unavailable("insert poll", err)
		}
		return poll, nil
	}

	return models.Poll{}, fmt.Errorf("create poll: %w: no free poll id", ErrUnavailable)
}

func (s *MongoStore) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	var poll models.Poll
	err := s.polls.FindOne(ctx, bson.M{"_id": pollID}).Decode(&poll)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Poll{}, ErrPollNotFound
	}
	if err != nil {
		return models.Poll{}, unavailable("find poll", err)
	}

	poll.CreatedAt = poll.CreatedAt.UTC()
	poll.UpdatedAt = poll.UpdatedAt.UTC()
	return poll, nil
}

func (s *MongoStore) CheckOption(ctx context.Context, pollID, optionID string) error {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if !poll.HasOption(optionID) {
		return ErrOptionNotFound
	}
	return nil
}

func (s *MongoStore) ApplyVote(ctx context.Context, pollID, optionID string, at time.Time) (models.Poll, error) {
	filter := bson.M{"_id": pollID, "options.id": optionID}
	update := bson.M{
		"$inc": bson.M{
			"options.$.votes": 1,
			"total_votes":     1,
			"version":         1,
		},
		"$set": bson.M{"updated_at": at.UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var poll models.Poll
	err := s.polls.FindOneAndUpdate(ctx, filter, update, opts).Decode(&poll)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Poll{}, ErrOptionNotFound
	}
	if err != nil {
		return models.Poll{}, unavailable("apply vote", err)
	}

	poll.CreatedAt = poll.CreatedAt.UTC()
	poll.UpdatedAt = poll.UpdatedAt.UTC()
	return poll, nil
}

func (s *MongoStore) RecordVote(ctx context.Context, vote models.Vote) error {
	vote.CreatedAt = vote.CreatedAt.UTC()
	_, err := s.votes.InsertOne(ctx, vote)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateVote
	}
	if err != nil {
		return unavailable("insert vote", err)
	}
	return nil
}

func (s *MongoStore) RecordAttempt(ctx context.Context, attempt models.VoteAttempt) error {
	attempt.AttemptedAt = attempt.AttemptedAt.UTC()
	if _, err := s.attempts.InsertOne(ctx, attempt); err != nil {
		return unavailable("insert attempt", err)
	}
	return nil
}

func (s *MongoStore) CountAttempts(ctx context.Context, pollID, ipHash string, since time.Time) (int, error) {
	count, err := s.attempts.CountDocuments(ctx, bson.M{
		"poll_id":      pollID,
		"ip_hash":      ipHash,
		"attempted_at": bson.M{"$gte": since.UTC()},
	})
	if err != nil {
		return 0, unavailable("count attempts", err)
	}
	return int(count), nil
}
