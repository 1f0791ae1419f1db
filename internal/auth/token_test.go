package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer("access-secret", 15*time.Minute, "refresh-secret", 24*time.Hour)
}

func TestTokenIssuer_AccessRoundTrip(t *testing.T) {
	issuer := newTestIssuer()
	userID := uuid.New()

	token, err := issuer.MintAccess(AccessClaims{
		UserID:   userID,
		Email:    "alice@example.com",
		Username: "alice",
		FullName: "Alice Smith",
	})
	require.NoError(t, err)

	claims, err := issuer.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Alice Smith", claims.FullName)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenIssuer_RefreshRoundTrip(t *testing.T) {
	issuer := newTestIssuer()
	userID := uuid.New()

	token, err := issuer.MintRefresh(userID)
	require.NoError(t, err)

	got, err := issuer.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenIssuer_RefreshTokensAreUnique(t *testing.T) {
	issuer := newTestIssuer()
	userID := uuid.New()

	first, err := issuer.MintRefresh(userID)
	require.NoError(t, err)
	second, err := issuer.MintRefresh(userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenIssuer_SecretsAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer()
	userID := uuid.New()

	access, err := issuer.MintAccess(AccessClaims{UserID: userID})
	require.NoError(t, err)
	refresh, err := issuer.MintRefresh(userID)
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := newTestIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	access, err := issuer.MintAccess(AccessClaims{UserID: uuid.New()})
	require.NoError(t, err)
	refresh, err := issuer.MintRefresh(uuid.New())
	require.NoError(t, err)

	issuer.now = time.Now

	_, err = issuer.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsInvalid(t *testing.T) {
	issuer := newTestIssuer()
	other := NewTokenIssuer("other-access", time.Minute, "other-refresh", time.Hour)

	forged, err := other.MintAccess(AccessClaims{UserID: uuid.New()})
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: uuid.NewString(),
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "notavalidjwt"},
		{"garbage segments", "invalid.token.here"},
		{"wrong secret", forged},
		{"alg none", noneAlg},
		{"missing expiry", noExpiry},
		{"non-uuid subject", badSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
