package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityClaims is the signed identity assertion carried by dashboard
// callers. Validity is purely a function of signature and expiry; there is no
// revocation list.
type IdentityClaims struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrTokenExpired = errors.New("identity assertion expired")
	ErrTokenInvalid = errors.New("invalid identity assertion")
)

// JWTManager signs and verifies identity assertions with an explicitly
// configured secret. A previous secret, when set, is honored for verification
// only, giving rotations a grace window without double-issuing.
type JWTManager struct {
	issuer         string
	audience       string
	secret         []byte
	previousSecret []byte
	ttl            time.Duration
}

func NewJWTManager(issuer, audience, secret, previousSecret string, ttl time.Duration) *JWTManager {
	m := &JWTManager{
		issuer:   issuer,
		audience: audience,
		secret:   []byte(secret),
		ttl:      ttl,
	}
	if previousSecret != "" {
		m.previousSecret = []byte(previousSecret)
	}
	return m
}

func (m *JWTManager) Issue(userID, orgID, role string) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		UserID: userID,
		OrgID:  orgID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			Audience:  []string{m.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a signed assertion, failing closed. During a
// secret rotation a signature failure is retried once against the previous
// secret; expiry is never forgiven.
func (m *JWTManager) Verify(raw string) (*IdentityClaims, error) {
	claims, err := m.verifyWith(raw, m.secret)
	if err == nil {
		return claims, nil
	}
	if errors.Is(err, ErrTokenExpired) || m.previousSecret == nil {
		return nil, err
	}
	return m.verifyWith(raw, m.previousSecret)
}

func (m *JWTManager) verifyWith(raw string, secret []byte) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithAudience(m.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
