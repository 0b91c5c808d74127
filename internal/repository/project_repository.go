package repository

import (
	"context"
	"errors"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/observability"

	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	// FindByIDForOrg scopes the lookup to the owning organization; a project
	// belonging to another org reads as not found.
	FindByIDForOrg(ctx context.Context, id, orgID string) (*domain.Project, error)
	ListByOrg(ctx context.Context, orgID string) ([]domain.Project, error)
	Count(ctx context.Context) (int64, error)
}

type GormProjectRepository struct{ db *gorm.DB }

func NewProjectRepository(db *gorm.DB) ProjectRepository { return &GormProjectRepository{db: db} }

func (r *GormProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "project", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "project", "create", "success")
	return nil
}

func (r *GormProjectRepository) FindByIDForOrg(ctx context.Context, id, orgID string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.WithContext(ctx).Where("id = ? AND org_id = ?", id, orgID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "project", "find_by_id_for_org", "not_found")
			return nil, ErrProjectNotFound
		}
		observability.RecordRepositoryOperation(ctx, "project", "find_by_id_for_org", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "project", "find_by_id_for_org", "success")
	return &p, nil
}

func (r *GormProjectRepository) ListByOrg(ctx context.Context, orgID string) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "project", "list_by_org", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "project", "list_by_org", "success")
	return projects, nil
}

func (r *GormProjectRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "project", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "project", "count", "success")
	return n, nil
}
