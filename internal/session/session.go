// Package session keeps per-user questionnaire state between messages.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/assetbot/internal/asset"
	"github.com/m3rciful/assetbot/internal/catalog"
)

// Session stores conversation progress for one user.
type Session struct {
	ID        string
	UserID    int64
	Step      catalog.StepID
	Answers   asset.Answers
	Submitter string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New returns an idle session for userID with a fresh correlation id.
func New(userID int64, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Step:      catalog.Idle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Answers = s.Answers.Clone()
	return &out
}

// Store persists sessions keyed by user id. Implementations must be safe for
// concurrent use; Lock serializes the read-modify-write of one user.
type Store interface {
	Get(userID int64) (*Session, bool)
	Put(s *Session)
	Delete(userID int64)
	// Lock blocks until the user's lock is held and returns its release func.
	Lock(userID int64) func()
	Len() int
}
