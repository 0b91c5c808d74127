package service

import (
	"context"
	"errors"
	"time"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/repository"

	"github.com/google/uuid"
)

// ProjectService manages tenant projects and fronts key issuance for them.
type ProjectService struct {
	projects repository.ProjectRepository
	keys     repository.ApiKeyRepository
	sessions repository.SessionRepository
	apiKeys  *ApiKeyService
}

func NewProjectService(projects repository.ProjectRepository, keys repository.ApiKeyRepository, sessions repository.SessionRepository, apiKeys *ApiKeyService) *ProjectService {
	return &ProjectService{projects: projects, keys: keys, sessions: sessions, apiKeys: apiKeys}
}

// CreatedProject carries the one and only plaintext appearance of the
// project's first API key.
type CreatedProject struct {
	Project *domain.Project `json:"project"`
	APIKey  string          `json:"api_key"`
}

type ProjectSummary struct {
	Project      domain.Project `json:"project"`
	SessionCount int64          `json:"session_count"`
	ActiveKeys   int64          `json:"active_keys"`
}

type ApiKeySummary struct {
	ID        string     `json:"id"`
	Scopes    []string   `json:"scopes"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

type ProjectDetail struct {
	Project      domain.Project  `json:"project"`
	Keys         []ApiKeySummary `json:"keys"`
	SessionCount int64           `json:"session_count"`
}

func (s *ProjectService) Create(ctx context.Context, name, orgID string) (*CreatedProject, error) {
	project := &domain.Project{
		ID:    uuid.NewString(),
		OrgID: orgID,
		Name:  name,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	issued, err := s.apiKeys.Issue(ctx, project.ID, []string{domain.ScopeSessionCreate})
	if err != nil {
		return nil, err
	}
	return &CreatedProject{Project: project, APIKey: issued.RawKey}, nil
}

func (s *ProjectService) List(ctx context.Context, orgID string) ([]ProjectSummary, error) {
	projects, err := s.projects.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		sessionCount, err := s.sessions.CountByProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		keyCount, err := s.keys.CountActiveByProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ProjectSummary{Project: p, SessionCount: sessionCount, ActiveKeys: keyCount})
	}
	return summaries, nil
}

func (s *ProjectService) Get(ctx context.Context, projectID, orgID string) (*ProjectDetail, error) {
	project, err := s.projects.FindByIDForOrg(ctx, projectID, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	keys, err := s.keys.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	keySummaries := make([]ApiKeySummary, 0, len(keys))
	for i := range keys {
		keySummaries = append(keySummaries, ApiKeySummary{
			ID:        keys[i].ID,
			Scopes:    keys[i].ScopeList(),
			CreatedAt: keys[i].CreatedAt,
			RevokedAt: keys[i].RevokedAt,
		})
	}
	sessionCount, err := s.sessions.CountByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{Project: *project, Keys: keySummaries, SessionCount: sessionCount}, nil
}

// RotateKey replaces a project's active credentials after confirming the
// caller's organization owns the project.
func (s *ProjectService) RotateKey(ctx context.Context, projectID, orgID string) (*IssuedKey, error) {
	if _, err := s.projects.FindByIDForOrg(ctx, projectID, orgID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return s.apiKeys.Rotate(ctx, projectID)
}
