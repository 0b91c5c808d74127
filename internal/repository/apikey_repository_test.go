package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DragonRU1/silentauth/internal/domain"
)

func newKey(id, projectID, hash, prefix string) *domain.ApiKey {
	return &domain.ApiKey{
		ID:           id,
		ProjectID:    projectID,
		KeyHash:      hash,
		LookupPrefix: prefix,
		Scopes:       domain.EncodeScopes([]string{domain.ScopeSessionCreate}),
	}
}

func TestApiKeyRepositoryPrefixCandidates(t *testing.T) {
	repo := NewApiKeyRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, newKey("k1", "p1", "h1", "sa_aaaaaaaaa")); err != nil {
		t.Fatalf("create k1: %v", err)
	}
	if err := repo.Create(ctx, newKey("k2", "p2", "h2", "sa_aaaaaaaaa")); err != nil {
		t.Fatalf("create k2: %v", err)
	}
	if err := repo.Create(ctx, newKey("k3", "p1", "h3", "sa_bbbbbbbbb")); err != nil {
		t.Fatalf("create k3: %v", err)
	}

	candidates, err := repo.ListActiveByPrefix(ctx, "sa_aaaaaaaaa")
	if err != nil {
		t.Fatalf("list by prefix: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
}

func TestApiKeyRepositoryRevokedKeysLeaveCandidateSet(t *testing.T) {
	repo := NewApiKeyRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, newKey("k1", "p1", "h1", "sa_aaaaaaaaa")); err != nil {
		t.Fatalf("create: %v", err)
	}

	revoked, err := repo.RevokeByID(ctx, "p1", "k1")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !revoked {
		t.Fatal("expected revoke to change the row")
	}

	candidates, err := repo.ListActiveByPrefix(ctx, "sa_aaaaaaaaa")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("revoked key still a candidate: %+v", candidates)
	}

	// Revoking again is a no-op.
	revoked, err = repo.RevokeByID(ctx, "p1", "k1")
	if err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if revoked {
		t.Fatal("expected second revoke to change nothing")
	}
}

func TestApiKeyRepositoryRevokeIsProjectScoped(t *testing.T) {
	repo := NewApiKeyRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, newKey("k1", "p1", "h1", "sa_aaaaaaaaa")); err != nil {
		t.Fatalf("create: %v", err)
	}

	revoked, err := repo.RevokeByID(ctx, "p2", "k1")
	if err != nil {
		t.Fatalf("revoke with wrong project: %v", err)
	}
	if revoked {
		t.Fatal("revoke must not cross project boundaries")
	}
}

func TestApiKeyRepositoryListByProjectAndCounts(t *testing.T) {
	repo := NewApiKeyRepository(newTestDB(t))
	ctx := context.Background()

	k1 := newKey("k1", "p1", "h1", "sa_aaaaaaaaa")
	if err := repo.Create(ctx, k1); err != nil {
		t.Fatalf("create: %v", err)
	}
	k2 := newKey("k2", "p1", "h2", "sa_ccccccccc")
	now := time.Now().UTC()
	k2.RevokedAt = &now
	if err := repo.Create(ctx, k2); err != nil {
		t.Fatalf("create: %v", err)
	}

	keys, err := repo.ListByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("list by project: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}

	active, err := repo.CountActiveByProject(ctx, "p1")
	if err != nil || active != 1 {
		t.Fatalf("active count = %d, %v", active, err)
	}
}
