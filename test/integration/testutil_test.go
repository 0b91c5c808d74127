package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DragonRU1/silentauth/internal/domain"
	"github.com/DragonRU1/silentauth/internal/http/handler"
	"github.com/DragonRU1/silentauth/internal/http/router"
	"github.com/DragonRU1/silentauth/internal/repository"
	"github.com/DragonRU1/silentauth/internal/security"
	"github.com/DragonRU1/silentauth/internal/service"
)

const testJWTSecret = "integration-secret-0123456789abcdef"

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	baseURL string
	client  *http.Client
	db      *gorm.DB
	jwt     *security.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Organization{},
		&domain.User{},
		&domain.Project{},
		&domain.ApiKey{},
		&domain.ActionSession{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	orgRepo := repository.NewOrgRepository(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	jwtManager := security.NewJWTManager("silentauth", "silentauth-dashboard", testJWTSecret, "", time.Hour)

	apiKeySvc := service.NewApiKeyService(apiKeyRepo, service.NewInMemoryNegativeLookupCacheStore(), 5*time.Minute)
	sessionSvc := service.NewSessionService(sessionRepo)
	authSvc := service.NewAuthService(orgRepo, userRepo, jwtManager)
	projectSvc := service.NewProjectService(projectRepo, apiKeyRepo, sessionRepo, apiKeySvc)
	adminSvc := service.NewAdminService(orgRepo, userRepo, projectRepo, sessionRepo)

	h := router.New(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc),
		ProjectHandler:   handler.NewProjectHandler(projectSvc),
		SessionHandler:   handler.NewSessionHandler(sessionSvc),
		AdminHandler:     handler.NewAdminHandler(adminSvc),
		IdentityVerifier: authSvc,
		Resolver:         apiKeySvc,
		APIRateLimitRPM:  10000,
		AuthRateLimitRPM: 10000,
		ReadyCheck:       func() error { return nil },
	})

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &testServer{baseURL: srv.URL, client: srv.Client(), db: db, jwt: jwtManager}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope for %s %s: %v", method, url, err)
	}
	return resp, env
}

func decodeData(t *testing.T, env apiEnvelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// seedSuperAdmin inserts a platform operator directly; there is no public
// registration path for that role.
func seedSuperAdmin(t *testing.T, ts *testServer, email, password string) {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	org := &domain.Organization{ID: "platform-org", Name: "Platform", Active: true}
	if err := ts.db.Create(org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}
	user := &domain.User{
		ID:           "platform-root",
		OrgID:        org.ID,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
	}
	if err := ts.db.Create(user).Error; err != nil {
		t.Fatalf("seed super admin: %v", err)
	}
}
