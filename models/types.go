package models

import "time"

// Poll limits
const (
	MaxQuestionLength = 500
	MinOptions        = 2
	MaxOptions        = 20
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question" validate:"required,max=500"`
	Options  []string `json:"options" validate:"min=2,max=20"`
}

type VoteRequest struct {
	OptionID string `json:"option_id" validate:"required,max=64"`
}

// Response types

type CreatePollResponse struct {
	Poll
	SharePath string `json:"share_path"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Storage string `json:"storage"`
}

// Domain types

// Poll is a point-in-time snapshot of a poll and its counters.
// TotalVotes always equals the sum of the option votes.
type Poll struct {
	ID         string    `json:"id" bson:"_id"`
	Question   string    `json:"question" bson:"question"`
	Version    int64     `json:"version" bson:"version"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
	TotalVotes int64     `json:"total_votes" bson:"total_votes"`
	Options    []Option  `json:"options" bson:"options"`
}

type Option struct {
	ID    string `json:"id" bson:"id"`
	Text  string `json:"text" bson:"text"`
	Votes int64  `json:"votes" bson:"votes"`
}

// HasOption reports whether optionID belongs to the poll
func (p Poll) HasOption(optionID string) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

type Vote struct {
	PollID    string    `json:"poll_id" bson:"poll_id"`
	OptionID  string    `json:"option_id" bson:"option_id"`
	VoterID   string    `json:"-" bson:"voter_id"` // Never expose in JSON
	IPHash    string    `json:"-" bson:"ip_hash"`  // Never expose in JSON
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// VoteAttempt is logged for every vote request, whatever its outcome
type VoteAttempt struct {
	PollID      string    `bson:"poll_id"`
	IPHash      string    `bson:"ip_hash"`
	AttemptedAt time.Time `bson:"attempted_at"`
}

// VoteEvent is exported to downstream consumers after a vote is admitted
type VoteEvent struct {
	PollID     string    `json:"poll_id"`
	OptionID   string    `json:"option_id"`
	Version    int64     `json:"version"`
	TotalVotes int64     `json:"total_votes"`
	VotedAt    time.Time `json:"voted_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
