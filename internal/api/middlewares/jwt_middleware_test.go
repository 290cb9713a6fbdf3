package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func viewerCapture(out *models.Viewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v, ok := ViewerFromContext(r.Context()); ok {
			*out = v
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAttachesViewer(t *testing.T) {
	var got models.Viewer
	h := Auth(testSecret)(viewerCapture(&got))

	token := signToken(t, jwt.MapClaims{
		"user_id":  "u-1",
		"is_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Viewer{UserID: "u-1", IsAdmin: true}, got)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	h := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not.a.jwt",
		"expired": "Bearer " + signToken(t, jwt.MapClaims{
			"user_id": "u-1",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}),
		"no user_id": "Bearer " + signToken(t, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
	}
	for name, auth := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestAdminOnly(t *testing.T) {
	var ran bool
	h := Auth(testSecret)(AdminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	})))

	token := signToken(t, jwt.MapClaims{
		"user_id": "u-2",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran)

	adminToken := signToken(t, jwt.MapClaims{
		"user_id":  "u-3",
		"is_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
}
