package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func protected(roles ...models.UserRole) (http.Handler, *int) {
	var userID int
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err == nil {
			userID = id
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(testSecret)(Authorize(roles...)(h)), &userID
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	valid := func(role string) jwt.MapClaims {
		return jwt.MapClaims{"user_id": 17, "role": role, "exp": time.Now().Add(time.Hour).Unix()}
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"organizer", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, valid("organizer")), http.StatusNoContent},
		{"admin", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, valid("admin")), http.StatusNoContent},
		{"viewer", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, valid("viewer")), http.StatusForbidden},
		{"unknown role", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, valid("owner")), http.StatusForbidden},
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), valid("organizer")), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret,
			jwt.MapClaims{"user_id": 17, "role": "organizer", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"alg none", "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid("organizer")), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, userID := protected(models.RoleOrganizer, models.RoleAdmin)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/1/complete", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, 17, *userID)
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestAuthorizeWithoutAuthenticate(t *testing.T) {
	h := Authorize(models.RoleOrganizer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001").Code)
	limited := call("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	// другой клиент со своим бюджетом
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5003").Code)
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(5, 10)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiterFor("10.0.0.1")
	now = now.Add(2 * limiterIdleTTL)
	rl.limiterFor("10.0.0.2")

	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.2")
}
