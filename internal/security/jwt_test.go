package security

import (
	"errors"
	"testing"
	"time"
)

const (
	testSecret     = "0123456789abcdef0123456789abcdef"
	testOldSecret  = "fedcba9876543210fedcba9876543210"
	testIssuer     = "silentauth"
	testAudience   = "silentauth-dashboard"
	testIdentityID = "user-1"
)

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager(testIssuer, testAudience, testSecret, "", 24*time.Hour)

	raw, err := m.Issue(testIdentityID, "org-1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != testIdentityID || claims.OrgID != "org-1" || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTManagerRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager(testIssuer, testAudience, testSecret, "", 24*time.Hour)
	verifier := NewJWTManager(testIssuer, testAudience, testOldSecret, "", 24*time.Hour)

	raw, err := issuer.Issue(testIdentityID, "org-1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTManagerRejectsExpired(t *testing.T) {
	m := NewJWTManager(testIssuer, testAudience, testSecret, "", -time.Minute)

	raw, err := m.Issue(testIdentityID, "org-1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTManagerRotationGraceWindow(t *testing.T) {
	old := NewJWTManager(testIssuer, testAudience, testOldSecret, "", 24*time.Hour)
	rotated := NewJWTManager(testIssuer, testAudience, testSecret, testOldSecret, 24*time.Hour)

	raw, err := old.Issue(testIdentityID, "org-1", "MEMBER")
	if err != nil {
		t.Fatalf("issue on old secret: %v", err)
	}
	claims, err := rotated.Verify(raw)
	if err != nil {
		t.Fatalf("verify during grace window: %v", err)
	}
	if claims.UserID != testIdentityID {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// New issuance must use the current secret only.
	fresh, err := rotated.Issue(testIdentityID, "org-1", "MEMBER")
	if err != nil {
		t.Fatalf("issue on rotated manager: %v", err)
	}
	if _, err := old.Verify(fresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("old manager must not accept fresh tokens, got %v", err)
	}
}

func TestJWTManagerGraceWindowNeverForgivesExpiry(t *testing.T) {
	old := NewJWTManager(testIssuer, testAudience, testOldSecret, "", -time.Minute)
	rotated := NewJWTManager(testIssuer, testAudience, testSecret, testOldSecret, 24*time.Hour)

	raw, err := old.Issue(testIdentityID, "org-1", "MEMBER")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := rotated.Verify(raw); err == nil {
		t.Fatal("expired token accepted through the grace window")
	}
}

func TestJWTManagerRejectsWrongAudience(t *testing.T) {
	issuer := NewJWTManager(testIssuer, "other-audience", testSecret, "", 24*time.Hour)
	verifier := NewJWTManager(testIssuer, testAudience, testSecret, "", 24*time.Hour)

	raw, err := issuer.Issue(testIdentityID, "org-1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong audience, got %v", err)
	}
}
