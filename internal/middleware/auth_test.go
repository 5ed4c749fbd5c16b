package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell-go/internal/crypto"
)

func authedRequest(t *testing.T, issuer *crypto.TokenIssuer, userID string) *http.Request {
	t.Helper()
	token, err := issuer.Issue(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func runJWTAuth(verifier TokenVerifier, req *http.Request) (*httptest.ResponseRecorder, string, bool) {
	var gotUserID string
	var called bool

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, called = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	JWTAuth(verifier)(next).ServeHTTP(rec, req)
	return rec, gotUserID, called
}

func TestJWTAuthValidToken(t *testing.T) {
	issuer := crypto.NewTokenIssuer("test-secret", time.Hour)

	rec, userID, called := runJWTAuth(issuer, authedRequest(t, issuer, "u1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.Equal(t, "u1", userID)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	issuer := crypto.NewTokenIssuer("test-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec, _, called := runJWTAuth(issuer, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestJWTAuthBadFormat(t *testing.T) {
	issuer := crypto.NewTokenIssuer("test-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec, _, called := runJWTAuth(issuer, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	expiredIssuer := crypto.NewTokenIssuer("test-secret", -time.Minute)
	verifier := crypto.NewTokenIssuer("test-secret", time.Hour)

	rec, _, called := runJWTAuth(verifier, authedRequest(t, expiredIssuer, "u1"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "token expired", body["error"])
}

func TestJWTAuthWrongSecret(t *testing.T) {
	issuer := crypto.NewTokenIssuer("other-secret", time.Hour)
	verifier := crypto.NewTokenIssuer("test-secret", time.Hour)

	rec, _, called := runJWTAuth(verifier, authedRequest(t, issuer, "u1"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid token", body["error"])
}

func TestJWTAuthMissingSecretIsServerError(t *testing.T) {
	issuer := crypto.NewTokenIssuer("test-secret", time.Hour)
	verifier := crypto.NewTokenIssuer("", time.Hour)

	rec, _, called := runJWTAuth(verifier, authedRequest(t, issuer, "u1"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, called)
}
