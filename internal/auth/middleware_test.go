package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtected(t *testing.T, issuer *Issuer) (http.Handler, *Identity) {
	seen := new(Identity)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Middleware(issuer, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		require.True(t, ok)
		*seen = identity
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, seen
}

func TestMiddleware_AttachesIdentity(t *testing.T) {
	issuer := newTestIssuer(t)
	h, seen := newProtected(t, issuer)

	token, err := issuer.Sign(Identity{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", seen.ID)
	assert.Equal(t, "alice", seen.Username)
}

func TestMiddleware_Rejects(t *testing.T) {
	issuer := newTestIssuer(t)
	expired, err := issuer.SignAt(Identity{ID: "u1"}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "authorization token required"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "authorization token required"},
		{"empty token", "Bearer ", "authorization token required"},
		{"garbage token", "Bearer abc.def.ghi", "invalid token"},
		{"expired token", "Bearer " + expired, "token has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, seen := newProtected(t, issuer)

			req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rec.Body.String())
			assert.Empty(t, seen.ID, "handler must not run")
		})
	}
}

func TestIdentityFrom_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFrom(req.Context())
	assert.False(t, ok)
}
