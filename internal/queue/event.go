// Package queue carries domain events over RabbitMQ: a publisher used by the
// API and a consumer run by the worker binary.
package queue

import "time"

// Event types published by the API.
const (
	TypeUserCreated       = "user.created"
	TypeSessionCreated    = "session.created"
	TypeWaitlistSubmitted = "waitlist.submitted"
)

// Event is the envelope every message on the events queue uses. Data holds
// the type-specific payload.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(typ string, data any) Event {
	return Event{Type: typ, OccurredAt: time.Now().UTC(), Data: data}
}

// UserCreated is the payload of TypeUserCreated.
type UserCreated struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// SessionCreated is the payload of TypeSessionCreated.
type SessionCreated struct {
	SessionID uint64    `json:"session_id"`
	UserID    uint64    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WaitlistSubmitted is the payload of TypeWaitlistSubmitted.
type WaitlistSubmitted struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	CurrentRole       string   `json:"current_role"`
	ExperienceLevel   string   `json:"experience_level"`
	JobSearchPain     []string `json:"job_search_pain"`
	ResumeChallenges  []string `json:"resume_challenges"`
	CareerGoals       string   `json:"career_goals"`
	PreferredFeatures []string `json:"preferred_features"`
}
