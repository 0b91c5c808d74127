package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ScopeSessionCreate gates action-session creation at the API surface.
// Scope enforcement happens in the callers, never in the resolver itself.
const ScopeSessionCreate = "session:create"

// ApiKey stores the salted hash of a project credential. The raw secret is
// returned to the caller exactly once at creation and is not recoverable from
// this record. LookupPrefix is the non-secret leading fragment of the raw key
// used to narrow resolver candidates before the slow hash comparison.
type ApiKey struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	ProjectID    string         `gorm:"size:36;index;not null" json:"project_id"`
	KeyHash      string         `gorm:"size:128;uniqueIndex;not null" json:"-"`
	LookupPrefix string         `gorm:"size:16;index;not null" json:"-"`
	Scopes       datatypes.JSON `gorm:"type:json" json:"scopes"`
	RevokedAt    *time.Time     `gorm:"index" json:"revoked_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ScopeList decodes the stored scope set. A key with no stored scopes has no
// capabilities.
func (k *ApiKey) ScopeList() []string {
	if len(k.Scopes) == 0 {
		return nil
	}
	var scopes []string
	if err := json.Unmarshal(k.Scopes, &scopes); err != nil {
		return nil
	}
	return scopes
}

// HasScope reports whether the key carries the named capability.
func (k *ApiKey) HasScope(scope string) bool {
	for _, s := range k.ScopeList() {
		if s == scope {
			return true
		}
	}
	return false
}

// EncodeScopes builds the JSON column value for a scope set.
func EncodeScopes(scopes []string) datatypes.JSON {
	if scopes == nil {
		scopes = []string{}
	}
	b, _ := json.Marshal(scopes)
	return datatypes.JSON(b)
}
