package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidstream/vidstream-api/internal/domain"
)

type stubAuthenticator struct {
	tokens map[string]*domain.User
	calls  []string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	s.calls = append(s.calls, token)
	if user, ok := s.tokens[token]; ok {
		return user, nil
	}
	return nil, domain.AuthError("invalid access token", errors.New("token is malformed"))
}

func TestAuth(t *testing.T) {
	alice := &domain.User{ID: uuid.New(), Username: "alice"}

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantUser   bool
		wantToken  string
	}{
		{
			name:       "no credentials",
			prepare:    func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
			},
			wantStatus: http.StatusOK,
			wantUser:   true,
			wantToken:  "good",
		},
		{
			name: "valid bearer header",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good")
			},
			wantStatus: http.StatusOK,
			wantUser:   true,
			wantToken:  "good",
		},
		{
			name: "bearer scheme is case-insensitive",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "bearer good")
			},
			wantStatus: http.StatusOK,
			wantUser:   true,
			wantToken:  "good",
		},
		{
			name: "cookie wins over header",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
				r.Header.Set("Authorization", "Bearer bad")
			},
			wantStatus: http.StatusOK,
			wantUser:   true,
			wantToken:  "good",
		},
		{
			name: "non-bearer scheme",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid token",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer bad")
			},
			wantStatus: http.StatusUnauthorized,
			wantToken:  "bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAuthenticator{tokens: map[string]*domain.User{"good": alice}}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				user, ok := GetUser(r.Context())
				require.True(t, ok)
				assert.Equal(t, alice.ID, user.ID)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			Auth(stub, nil)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, called, "handler invocation")

			if tt.wantToken != "" {
				assert.Equal(t, []string{tt.wantToken}, stub.calls)
			} else {
				assert.Empty(t, stub.calls)
			}

			if !tt.wantUser {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, false, body["success"])
				assert.Nil(t, body["data"])
				assert.NotEmpty(t, body["errors"])
			}
		})
	}
}

func TestGetUser_Missing(t *testing.T) {
	_, ok := GetUser(context.Background())
	assert.False(t, ok)
}
