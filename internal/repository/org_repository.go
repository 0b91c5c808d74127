package repository

import (
	"context"
	"errors"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/observability"

	"gorm.io/gorm"
)

type OrgRepository interface {
	// CreateWithAdmin inserts the organization and its first ADMIN user in
	// one transaction; registration never leaves an org without an owner.
	CreateWithAdmin(ctx context.Context, org *domain.Organization, admin *domain.User) error
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type GormOrgRepository struct{ db *gorm.DB }

func NewOrgRepository(db *gorm.DB) OrgRepository { return &GormOrgRepository{db: db} }

func (r *GormOrgRepository) CreateWithAdmin(ctx context.Context, org *domain.Organization, admin *domain.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		admin.OrgID = org.ID
		return tx.Create(admin).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "organization", "create_with_admin", "duplicate")
			return ErrEmailTaken
		}
		observability.RecordRepositoryOperation(ctx, "organization", "create_with_admin", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "organization", "create_with_admin", "success")
	return nil
}

func (r *GormOrgRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Organization{}).Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "organization", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "organization", "count", "success")
	return n, nil
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "user", "find_by_email", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(ctx, "user", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "find_by_email", "success")
	return &u, nil
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("role <> ?", domain.RoleSuperAdmin).
		Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "user", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "user", "count", "success")
	return n, nil
}
