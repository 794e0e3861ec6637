package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T) http.Handler {
	t.Helper()
	require.NoError(t, Init("test-secret"))
	return JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(claims.UserID))
	}))
}

func TestJWTMiddleware(t *testing.T) {
	h := protected(t)
	token, err := GenerateToken("op-1", "ops@example.ie", "operator")
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "/api/classify", "Bearer " + token, http.StatusOK, "op-1"},
		{"missing header", "/api/classify", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/classify", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "/api/classify", "Bearer not.a.jwt", http.StatusUnauthorized, ""},
		{"health is open", "/health", "", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestParseToken_Expired(t *testing.T) {
	require.NoError(t, Init("test-secret"))
	old := TokenTTL
	TokenTTL = -time.Minute
	defer func() { TokenTTL = old }()

	token, err := GenerateToken("op-1", "", "operator")
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	require.NoError(t, Init("secret-a"))
	token, err := GenerateToken("op-1", "", "operator")
	require.NoError(t, err)

	require.NoError(t, Init("secret-b"))
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestInit_EmptySecret(t *testing.T) {
	assert.Error(t, Init(""))
}
