package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/campuslabs/equiptrack-backend/pkg/auth"
	"github.com/campuslabs/equiptrack-backend/pkg/config"
	"github.com/campuslabs/equiptrack-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubSessionChecker struct {
	live map[string]bool
}

func (s *stubSessionChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	return s.live[accessID], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test1234",
		Issuer:            "equiptrack-test",
		ExpirationMinutes: 30,
		CookieName:        "equiptrack_session",
	}
}

func mintToken(t *testing.T, cfg config.JWTConfig, jti string) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.RoleTeacher,
		Name:   "Pat Doe",
		JTI:    jti,
	})
	require.NoError(t, err)
	return token, userID
}

func authHandler(t *testing.T, cfg config.JWTConfig, checker *stubSessionChecker) (http.Handler, *http.Request) {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return Auth(cfg, checker, nil)(next), httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
}

func TestAuthAcceptsSessionCookie(t *testing.T) {
	cfg := testJWTConfig()
	token, userID := mintToken(t, cfg, "jti-cookie")
	checker := &stubSessionChecker{live: map[string]bool{"jti-cookie": true}}

	var seenUser, seenRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = UserIDFromContext(r.Context())
		seenRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Auth(cfg, checker, nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/equipment", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, userID.String(), seenUser)
	require.Equal(t, string(enums.RoleTeacher), seenRole)
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := mintToken(t, cfg, "jti-bearer")
	checker := &stubSessionChecker{live: map[string]bool{"jti-bearer": true}}

	handler, req := authHandler(t, cfg, checker)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthRejectsMissingCredentials(t *testing.T) {
	cfg := testJWTConfig()
	handler, req := authHandler(t, cfg, &stubSessionChecker{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestAuthRejectsForgedToken(t *testing.T) {
	cfg := testJWTConfig()
	other := cfg
	other.Secret = "another-secret-another-secret-12"
	token, _ := mintToken(t, other, "jti-forged")

	handler, req := authHandler(t, cfg, &stubSessionChecker{})
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := mintToken(t, cfg, "jti-revoked")
	checker := &stubSessionChecker{live: map[string]bool{}}

	handler, req := authHandler(t, cfg, checker)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
