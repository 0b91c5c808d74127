package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/observability"

	"gorm.io/gorm"
)

type ApiKeyRepository interface {
	Create(ctx context.Context, k *domain.ApiKey) error
	// ListActiveByPrefix returns the non-revoked candidate set for one
	// lookup prefix, oldest first. The resolver still authenticates each
	// candidate with the slow hash comparison.
	ListActiveByPrefix(ctx context.Context, prefix string) ([]domain.ApiKey, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.ApiKey, error)
	RevokeByID(ctx context.Context, projectID, id string) (bool, error)
	CountActiveByProject(ctx context.Context, projectID string) (int64, error)
}

type GormApiKeyRepository struct{ db *gorm.DB }

func NewApiKeyRepository(db *gorm.DB) ApiKeyRepository { return &GormApiKeyRepository{db: db} }

func (r *GormApiKeyRepository) Create(ctx context.Context, k *domain.ApiKey) error {
	err := r.db.WithContext(ctx).Create(k).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "apikey", "create", "hash_collision")
			return ErrDuplicateToken
		}
		observability.RecordRepositoryOperation(ctx, "apikey", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "apikey", "create", "success")
	return nil
}

func (r *GormApiKeyRepository) ListActiveByPrefix(ctx context.Context, prefix string) ([]domain.ApiKey, error) {
	var keys []domain.ApiKey
	err := r.db.WithContext(ctx).
		Where("lookup_prefix = ? AND revoked_at IS NULL", prefix).
		Order("created_at ASC").
		Find(&keys).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "apikey", "list_active_by_prefix", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "apikey", "list_active_by_prefix", "success")
	return keys, nil
}

func (r *GormApiKeyRepository) ListByProject(ctx context.Context, projectID string) ([]domain.ApiKey, error) {
	var keys []domain.ApiKey
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&keys).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "apikey", "list_by_project", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "apikey", "list_by_project", "success")
	return keys, nil
}

func (r *GormApiKeyRepository) RevokeByID(ctx context.Context, projectID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.ApiKey{}).
		Where("id = ? AND project_id = ? AND revoked_at IS NULL", id, projectID).
		Update("revoked_at", time.Now().UTC())
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "apikey", "revoke_by_id", "error")
		return false, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "apikey", "revoke_by_id", "success")
	return res.RowsAffected > 0, nil
}

func (r *GormApiKeyRepository) CountActiveByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ApiKey{}).
		Where("project_id = ? AND revoked_at IS NULL", projectID).
		Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "apikey", "count_active_by_project", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "apikey", "count_active_by_project", "success")
	return n, nil
}
