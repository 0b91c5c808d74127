package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/observability"
	"github.com/DragonRU1/silentauth/internal/repository"
	"github.com/DragonRU1/silentauth/internal/security"

	"github.com/google/uuid"
)

const resolveCacheNamespace = "apikey_resolve"

// ResolvedKey is what a successful credential resolution yields. Scope
// enforcement is the caller's job, not the resolver's.
type ResolvedKey struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Scopes    []string `json:"scopes"`
}

// ApiKeyService issues project credentials and authenticates raw bearer keys
// against their stored hashes. Resolution is deliberately linear in the
// candidate set: the stored form is a salted one-way hash, so no index over
// the plaintext can exist. The non-secret lookup prefix narrows candidates
// and a negative cache absorbs repeated garbage, but the slow comparison
// remains the authentication step.
type ApiKeyService struct {
	keys          repository.ApiKeyRepository
	negativeCache NegativeLookupCacheStore
	negativeTTL   time.Duration
}

func NewApiKeyService(keys repository.ApiKeyRepository, negativeCache NegativeLookupCacheStore, negativeTTL time.Duration) *ApiKeyService {
	if negativeCache == nil {
		negativeCache = NewNoopNegativeLookupCacheStore()
	}
	return &ApiKeyService{keys: keys, negativeCache: negativeCache, negativeTTL: negativeTTL}
}

// Resolve authenticates a raw key. Absence of a match is the only failure
// mode surfaced to callers; they learn nothing about why.
func (s *ApiKeyService) Resolve(ctx context.Context, rawKey string) (*ResolvedKey, error) {
	if !security.LooksLikeAPIKey(rawKey) {
		observability.RecordApiKeyResolve(ctx, "malformed", 0)
		return nil, ErrUnauthenticated
	}

	fingerprint := security.FingerprintSecret(rawKey)
	if hit, err := s.negativeCache.Get(ctx, resolveCacheNamespace, fingerprint); err == nil && hit {
		observability.RecordApiKeyResolve(ctx, "negative_cache_hit", 0)
		return nil, ErrUnauthenticated
	}

	candidates, err := s.keys.ListActiveByPrefix(ctx, security.LookupPrefix(rawKey))
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		k := &candidates[i]
		if security.CompareAPIKey(k.KeyHash, rawKey) {
			observability.RecordApiKeyResolve(ctx, "success", len(candidates))
			return &ResolvedKey{ID: k.ID, ProjectID: k.ProjectID, Scopes: k.ScopeList()}, nil
		}
	}

	_ = s.negativeCache.Set(ctx, resolveCacheNamespace, fingerprint, s.negativeTTL)
	observability.RecordApiKeyResolve(ctx, "no_match", len(candidates))
	return nil, ErrUnauthenticated
}

// IssuedKey pairs a stored key record with the raw secret. The raw value
// exists only in this response; afterwards only the hash remains.
type IssuedKey struct {
	Key    *domain.ApiKey
	RawKey string
}

func (s *ApiKeyService) Issue(ctx context.Context, projectID string, scopes []string) (*IssuedKey, error) {
	raw, err := security.NewAPIKey()
	if err != nil {
		return nil, err
	}
	hash, err := security.HashAPIKey(raw)
	if err != nil {
		return nil, err
	}
	key := &domain.ApiKey{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		KeyHash:      hash,
		LookupPrefix: security.LookupPrefix(raw),
		Scopes:       domain.EncodeScopes(scopes),
	}
	if err := s.keys.Create(ctx, key); err != nil {
		if errors.Is(err, repository.ErrDuplicateToken) {
			return nil, fmt.Errorf("%w: api key hash collision", ErrIntegrityViolation)
		}
		return nil, err
	}
	// A fresh key may have been probed before it existed; cached negatives
	// for it are now wrong.
	_ = s.negativeCache.InvalidateNamespace(ctx, resolveCacheNamespace)
	return &IssuedKey{Key: key, RawKey: raw}, nil
}

// Rotate issues a replacement credential for a project and revokes every key
// that was active before it. The new raw key is surfaced exactly once.
func (s *ApiKeyService) Rotate(ctx context.Context, projectID string) (*IssuedKey, error) {
	existing, err := s.keys.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	scopes := []string{domain.ScopeSessionCreate}
	var active []string
	for i := range existing {
		if existing[i].RevokedAt == nil {
			active = append(active, existing[i].ID)
			scopes = existing[i].ScopeList()
		}
	}
	if len(active) == 0 {
		return nil, ErrApiKeyNotFound
	}

	issued, err := s.Issue(ctx, projectID, scopes)
	if err != nil {
		return nil, err
	}
	for _, id := range active {
		if _, err := s.keys.RevokeByID(ctx, projectID, id); err != nil {
			return nil, err
		}
	}
	return issued, nil
}
