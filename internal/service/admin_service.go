package service

import (
	"context"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/repository"

	"golang.org/x/sync/errgroup"
)

// AdminService serves the super-admin dashboard: platform-wide counts and a
// cross-project session listing.
type AdminService struct {
	orgs     repository.OrgRepository
	users    repository.UserRepository
	projects repository.ProjectRepository
	sessions repository.SessionRepository
}

func NewAdminService(orgs repository.OrgRepository, users repository.UserRepository, projects repository.ProjectRepository, sessions repository.SessionRepository) *AdminService {
	return &AdminService{orgs: orgs, users: users, projects: projects, sessions: sessions}
}

type PlatformStats struct {
	Organizations int64 `json:"organizations"`
	Users         int64 `json:"users"`
	Projects      int64 `json:"projects"`
	Sessions      int64 `json:"sessions"`
	Verified      int64 `json:"verified"`
	Pending       int64 `json:"pending"`
	Expired       int64 `json:"expired"`
}

func (s *AdminService) GetStats(ctx context.Context) (*PlatformStats, error) {
	var stats PlatformStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Organizations, err = s.orgs.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		stats.Users, err = s.users.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		stats.Projects, err = s.projects.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		stats.Sessions, err = s.sessions.Count(ctx)
		return
	})
	g.Go(func() (err error) {
		stats.Verified, err = s.sessions.CountByStatus(ctx, domain.SessionVerified)
		return
	})
	g.Go(func() (err error) {
		stats.Pending, err = s.sessions.CountByStatus(ctx, domain.SessionPending)
		return
	})
	g.Go(func() (err error) {
		stats.Expired, err = s.sessions.CountByStatus(ctx, domain.SessionExpired)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *AdminService) ListSessions(ctx context.Context, status *domain.SessionStatus, req repository.PageRequest) (repository.PageResult[domain.ActionSession], error) {
	return s.sessions.ListAll(ctx, status, req)
}
