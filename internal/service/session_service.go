package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/observability"
	"github.com/DragonRU1/silentauth/internal/repository"
	"github.com/DragonRU1/silentauth/internal/security"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionTTL is how long a created session stays verifiable. It is a property
// of the protocol, not a per-session knob.
const SessionTTL = 10 * time.Minute

var emptyProof = datatypes.JSON([]byte("{}"))

// SessionService owns the action-session lifecycle: creation, lookup with
// lazy expiry, and one-shot verification. Expiry is observed on the read
// path; no background sweeper exists, so a session's externally visible state
// can change between reads purely because time passed.
type SessionService struct {
	sessions repository.SessionRepository
	now      func() time.Time
}

func NewSessionService(sessions repository.SessionRepository) *SessionService {
	return &SessionService{sessions: sessions, now: time.Now}
}

func (s *SessionService) Create(ctx context.Context, projectID, callbackURL string) (*domain.ActionSession, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	session := &domain.ActionSession{
		ID:          uuid.NewString(),
		Token:       token,
		ProjectID:   projectID,
		Status:      domain.SessionPending,
		CallbackURL: callbackURL,
		ExpiresAt:   now.Add(SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrDuplicateToken) {
			return nil, fmt.Errorf("%w: session token collision", ErrIntegrityViolation)
		}
		return nil, err
	}
	return session, nil
}

// GetByToken looks a session up by its public token. A pending session past
// its deadline is atomically flipped to EXPIRED before being returned; the
// read is the expiry transition.
func (s *SessionService) GetByToken(ctx context.Context, token string) (*domain.ActionSession, error) {
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !session.ExpiredBy(s.now()) {
		return session, nil
	}

	flipped, err := s.sessions.ExpireIfPending(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if flipped {
		observability.RecordSessionTransition(ctx, string(domain.SessionPending), string(domain.SessionExpired), "lazy_read")
		session.Status = domain.SessionExpired
		return session, nil
	}
	// Lost the race against a concurrent terminal write; the store has the
	// authoritative state.
	return s.sessions.FindByToken(ctx, token)
}

// Verify transitions a pending session to VERIFIED, attaching the proof
// payload. The operation is one-shot: exactly one caller wins, every later
// call reports the terminal state it found.
func (s *SessionService) Verify(ctx context.Context, token string, proofData map[string]any) (*domain.ActionSession, error) {
	session, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case domain.SessionExpired:
		return nil, ErrSessionExpired
	case domain.SessionVerified:
		return nil, ErrSessionAlreadyVerified
	}

	proof := emptyProof
	if proofData != nil {
		encoded, err := json.Marshal(proofData)
		if err != nil {
			return nil, fmt.Errorf("encode proof data: %w", err)
		}
		proof = datatypes.JSON(encoded)
	}

	won, err := s.sessions.MarkVerified(ctx, session.ID, proof)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, s.loserError(ctx, token)
	}
	observability.RecordSessionTransition(ctx, string(domain.SessionPending), string(domain.SessionVerified), "verify")
	session.Status = domain.SessionVerified
	session.ProofData = proof
	return session, nil
}

// loserError translates a lost verify race into the deterministic state
// error the second caller must see.
func (s *SessionService) loserError(ctx context.Context, token string) error {
	current, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if current.Status == domain.SessionExpired {
		return ErrSessionExpired
	}
	return ErrSessionAlreadyVerified
}

func (s *SessionService) List(ctx context.Context, projectID string, status *domain.SessionStatus) ([]domain.ActionSession, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("invalid status filter %q", *status)
	}
	return s.sessions.ListByProject(ctx, projectID, status)
}
