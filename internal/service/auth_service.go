package service

import (
	"context"
	"errors"
	"strings"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/observability"
	"github.com/DragonRU1/silentauth/internal/repository"
	"github.com/DragonRU1/silentauth/internal/security"

	"github.com/google/uuid"
)

// AuthService covers dashboard identity: organization registration, login,
// and verification of the signed identity assertions both produce.
type AuthService struct {
	orgs  repository.OrgRepository
	users repository.UserRepository
	jwt   *security.JWTManager
}

func NewAuthService(orgs repository.OrgRepository, users repository.UserRepository, jwt *security.JWTManager) *AuthService {
	return &AuthService{orgs: orgs, users: users, jwt: jwt}
}

type OrganizationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserSummary struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

type RegisterResult struct {
	Organization OrganizationSummary `json:"organization"`
	Token        string              `json:"token"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

func (s *AuthService) RegisterOrganization(ctx context.Context, name, adminEmail, adminPassword string) (*RegisterResult, error) {
	passwordHash, err := security.HashPassword(adminPassword)
	if err != nil {
		return nil, err
	}
	org := &domain.Organization{
		ID:     uuid.NewString(),
		Name:   name,
		Active: true,
	}
	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(adminEmail)),
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
	}
	if err := s.orgs.CreateWithAdmin(ctx, org, admin); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	token, err := s.jwt.Issue(admin.ID, org.ID, string(admin.Role))
	if err != nil {
		return nil, err
	}
	return &RegisterResult{
		Organization: OrganizationSummary{ID: org.ID, Name: org.Name},
		Token:        token,
	}, nil
}

// Login authenticates a dashboard user. Unknown email and wrong password are
// indistinguishable from the outside.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthLogin(ctx, "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.VerifyPassword(user.PasswordHash, password) {
		observability.RecordAuthLogin(ctx, "bad_password")
		return nil, ErrInvalidCredentials
	}
	token, err := s.jwt.Issue(user.ID, user.OrgID, string(user.Role))
	if err != nil {
		return nil, err
	}
	observability.RecordAuthLogin(ctx, "success")
	return &LoginResult{
		Token: token,
		User:  UserSummary{ID: user.ID, Email: user.Email, Role: user.Role},
	}, nil
}

func (s *AuthService) VerifyIdentity(raw string) (*security.IdentityClaims, error) {
	return s.jwt.Verify(raw)
}
