package app

import (
	"context"
	"net/http"
	"strings"
	"time"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Owhab/nexacms-sub003/internal/config"
	"github.com/Owhab/nexacms-sub003/pkg/cache"
	"github.com/Owhab/nexacms-sub003/pkg/validator"
)

func newTestApplication(t *testing.T, mutate func(cfg *config.Config)) *Application {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Init()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	cfg := config.New()
	cfg.JWTSecret = "test-secret"
	cfg.RateLimitRequests = 0
	if mutate != nil {
		mutate(cfg)
	}

	disabled, err := cache.NewCache("", false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	application := &Application{cfg: cfg, db: db, cache: disabled}
	require.NoError(t, application.build(ctx))
	return application
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	application := newTestApplication(t, nil)
	router := application.Router()

	rec := serve(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(router, http.MethodGet, "/api/v1/section-types")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/admin/pages/1/sections")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/nothing-here")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestAdminRoutesFollowRolePermissions(t *testing.T) {
	application := newTestApplication(t, nil)
	router := application.Router()

	token := func(role string) string {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": 7,
			"role":    role,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return signed
	}
	call := func(method, path, role, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token(role))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	recommend := `{"properties":{"title":"Hi","backgroundImage":"/a.jpg"}}`
	assert.Equal(t, http.StatusOK, call(http.MethodPost, "/api/v1/admin/migrations/recommend", "author", recommend))
	assert.Equal(t, http.StatusForbidden, call(http.MethodPost, "/api/v1/admin/migrations/recommend", "user", recommend))
	assert.Equal(t, http.StatusForbidden, call(http.MethodPost, "/api/v1/admin/pages/1/sections", "author", `{"type_id":"hero-centered"}`))
	assert.Equal(t, http.StatusForbidden, call(http.MethodGet, "/api/v1/admin/section-factory/stats", "editor", ""))
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/api/v1/admin/section-factory/stats", "admin", ""))
}

func TestMetricsRouteFollowsConfig(t *testing.T) {
	enabled := newTestApplication(t, func(cfg *config.Config) { cfg.EnableMetrics = true })
	assert.Equal(t, http.StatusOK, serve(enabled.Router(), http.MethodGet, "/metrics").Code)

	disabled := newTestApplication(t, func(cfg *config.Config) { cfg.EnableMetrics = false })
	assert.Equal(t, http.StatusNotFound, serve(disabled.Router(), http.MethodGet, "/metrics").Code)
}

func TestSectionCatalogIsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
patch:
  - id: hero-gallery
    is_active: false
unregister:
  - features
`), 0o600))

	application := newTestApplication(t, func(cfg *config.Config) { cfg.SectionCatalogFile = path })

	gallery, ok := application.registry.Get("hero-gallery")
	require.True(t, ok)
	assert.False(t, gallery.IsActive)
	_, ok = application.registry.Get("features")
	assert.False(t, ok)
}

func TestMissingSectionCatalogFails(t *testing.T) {
	application := &Application{
		cfg: &config.Config{SectionCatalogFile: filepath.Join(t.TempDir(), "missing.yaml")},
	}
	assert.Error(t, application.initSections())
}
