package domain

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleMember     UserRole = "MEMBER"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// Organization is the tenant root. Projects and users hang off it.
type Organization struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	Users     []User    `gorm:"foreignKey:OrgID" json:"users,omitempty"`
	Projects  []Project `gorm:"foreignKey:OrgID" json:"projects,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a dashboard account. PasswordHash is bcrypt, never serialized.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	OrgID        string    `gorm:"size:36;index;not null" json:"org_id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         UserRole  `gorm:"size:32;not null;default:MEMBER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Project owns API keys and action sessions, and belongs to one organization.
type Project struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OrgID     string    `gorm:"size:36;index;not null" json:"org_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	ApiKeys   []ApiKey  `gorm:"foreignKey:ProjectID" json:"api_keys,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
