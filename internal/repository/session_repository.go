package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/observability"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionListLimit bounds project-scoped session listings.
const SessionListLimit = 50

type SessionRepository interface {
	Create(ctx context.Context, s *domain.ActionSession) error
	FindByToken(ctx context.Context, token string) (*domain.ActionSession, error)
	// ExpireIfPending flips a still-pending session to EXPIRED. It reports
	// false when another writer got to a terminal state first.
	ExpireIfPending(ctx context.Context, id string) (bool, error)
	// MarkVerified flips a still-pending session to VERIFIED, attaching the
	// proof payload. It reports false when the guard lost the race.
	MarkVerified(ctx context.Context, id string, proof datatypes.JSON) (bool, error)
	ListByProject(ctx context.Context, projectID string, status *domain.SessionStatus) ([]domain.ActionSession, error)
	ListAll(ctx context.Context, status *domain.SessionStatus, req PageRequest) (PageResult[domain.ActionSession], error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.SessionStatus) (int64, error)
	CountByProject(ctx context.Context, projectID string) (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

func (r *GormSessionRepository) Create(ctx context.Context, s *domain.ActionSession) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "session", "create", "token_collision")
			return ErrDuplicateToken
		}
		observability.RecordRepositoryOperation(ctx, "session", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "session", "create", "success")
	return nil
}

func (r *GormSessionRepository) FindByToken(ctx context.Context, token string) (*domain.ActionSession, error) {
	var s domain.ActionSession
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "session", "find_by_token", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(ctx, "session", "find_by_token", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "find_by_token", "success")
	return &s, nil
}

func (r *GormSessionRepository) ExpireIfPending(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.ActionSession{}).
		Where("id = ? AND status = ?", id, domain.SessionPending).
		Updates(map[string]any{"status": domain.SessionExpired, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "expire_if_pending", "error")
		return false, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "session", "expire_if_pending", "success")
	return res.RowsAffected > 0, nil
}

func (r *GormSessionRepository) MarkVerified(ctx context.Context, id string, proof datatypes.JSON) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.ActionSession{}).
		Where("id = ? AND status = ?", id, domain.SessionPending).
		Updates(map[string]any{
			"status":     domain.SessionVerified,
			"proof_data": proof,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "mark_verified", "error")
		return false, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "session", "mark_verified", "success")
	return res.RowsAffected > 0, nil
}

func (r *GormSessionRepository) ListByProject(ctx context.Context, projectID string, status *domain.SessionStatus) ([]domain.ActionSession, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var sessions []domain.ActionSession
	err := q.Order("created_at DESC").Limit(SessionListLimit).Find(&sessions).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "list_by_project", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "list_by_project", "success")
	return sessions, nil
}

func (r *GormSessionRepository) ListAll(ctx context.Context, status *domain.SessionStatus, req PageRequest) (PageResult[domain.ActionSession], error) {
	req = normalizePageRequest(req)
	result := PageResult[domain.ActionSession]{Page: req.Page, PageSize: req.PageSize}

	base := r.db.WithContext(ctx).Model(&domain.ActionSession{})
	if status != nil {
		base = base.Where("status = ?", *status)
	}
	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "list_all", "error")
		return PageResult[domain.ActionSession]{}, err
	}
	offset := (req.Page - 1) * req.PageSize
	if err := base.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "list_all", "error")
		return PageResult[domain.ActionSession]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(ctx, "session", "list_all", "success")
	return result, nil
}

func (r *GormSessionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ActionSession{}).Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "count", "success")
	return n, nil
}

func (r *GormSessionRepository) CountByStatus(ctx context.Context, status domain.SessionStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ActionSession{}).Where("status = ?", status).Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "count_by_status", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "count_by_status", "success")
	return n, nil
}

func (r *GormSessionRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ActionSession{}).Where("project_id = ?", projectID).Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "count_by_project", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "count_by_project", "success")
	return n, nil
}
