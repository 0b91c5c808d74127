package service

import (
	"context"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/security"
)

// SessionManager is the boundary the transport layer programs against.
type SessionManager interface {
	Create(ctx context.Context, projectID, callbackURL string) (*domain.ActionSession, error)
	GetByToken(ctx context.Context, token string) (*domain.ActionSession, error)
	Verify(ctx context.Context, token string, proofData map[string]any) (*domain.ActionSession, error)
	List(ctx context.Context, projectID string, status *domain.SessionStatus) ([]domain.ActionSession, error)
}

// CredentialResolver authenticates opaque bearer keys.
type CredentialResolver interface {
	Resolve(ctx context.Context, rawKey string) (*ResolvedKey, error)
}

// IdentityVerifier validates signed identity assertions.
type IdentityVerifier interface {
	VerifyIdentity(raw string) (*security.IdentityClaims, error)
}
