package domain

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionPending  SessionStatus = "PENDING"
	SessionVerified SessionStatus = "VERIFIED"
	SessionExpired  SessionStatus = "EXPIRED"
)

// Valid reports whether s is one of the known session states.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionPending, SessionVerified, SessionExpired:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionVerified || s == SessionExpired
}

// ActionSession is one pending human-verification challenge. The token is
// the public identifier embedded in verification URLs; it carries no meaning
// beyond its own randomness. ProofData is attached exactly once, when the
// session is verified.
type ActionSession struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Token       string         `gorm:"size:64;uniqueIndex;not null" json:"token"`
	ProjectID   string         `gorm:"size:36;index;not null" json:"project_id"`
	Status      SessionStatus  `gorm:"size:16;index;not null;default:PENDING" json:"status"`
	ProofData   datatypes.JSON `gorm:"type:json" json:"proof_data,omitempty"`
	CallbackURL string         `gorm:"size:2048" json:"callback_url,omitempty"`
	ExpiresAt   time.Time      `gorm:"index;not null" json:"expires_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ExpiredBy reports whether a still-pending session has outlived its TTL at
// the given instant. Terminal sessions are never considered expiring again.
func (s *ActionSession) ExpiredBy(now time.Time) bool {
	return s.Status == SessionPending && s.ExpiresAt.Before(now)
}
