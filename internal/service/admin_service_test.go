package service

import (
	"context"
	"testing"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/google/uuid"
)

func TestAdminServiceGetStats(t *testing.T) {
	identity := newFakeIdentityStore()
	projects := newFakeProjectRepo()
	sessions := newFakeSessionRepo()
	svc := NewAdminService(identity, fakeUserStore{store: identity}, projects, sessions)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		org := &domain.Organization{ID: uuid.NewString(), Name: "org", Active: true}
		admin := &domain.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: domain.RoleAdmin}
		if err := identity.CreateWithAdmin(ctx, org, admin); err != nil {
			t.Fatalf("seed org: %v", err)
		}
	}
	if err := projects.Create(ctx, &domain.Project{ID: "p1", OrgID: "org1", Name: "p"}); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	sessionSvc := NewSessionService(sessions)
	var tokens []string
	for i := 0; i < 3; i++ {
		s, err := sessionSvc.Create(ctx, "p1", "")
		if err != nil {
			t.Fatalf("seed session: %v", err)
		}
		tokens = append(tokens, s.Token)
	}
	if _, err := sessionSvc.Verify(ctx, tokens[0], nil); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := sessions.ExpireIfPending(ctx, mustFindID(t, sessions, tokens[1])); err != nil {
		t.Fatalf("expire: %v", err)
	}

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := PlatformStats{
		Organizations: 2,
		Users:         2,
		Projects:      1,
		Sessions:      3,
		Verified:      1,
		Pending:       1,
		Expired:       1,
	}
	if *stats != want {
		t.Fatalf("stats mismatch:\n got %+v\nwant %+v", *stats, want)
	}
}

func mustFindID(t *testing.T, repo *fakeSessionRepo, token string) string {
	t.Helper()
	s, err := repo.FindByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("find %s: %v", token, err)
	}
	return s.ID
}
