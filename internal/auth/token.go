package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// AccessClaims is the identity carried by an access token.
type AccessClaims struct {
	UserID   uuid.UUID `json:"-"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 access and refresh tokens. The two
// kinds use distinct secrets, so one can never be accepted as the other.
type TokenIssuer struct {
	accessSecret  []byte
	accessExpiry  time.Duration
	refreshSecret []byte
	refreshExpiry time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret string, accessExpiry time.Duration, refreshSecret string, refreshExpiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		accessExpiry:  accessExpiry,
		refreshSecret: []byte(refreshSecret),
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

func (i *TokenIssuer) registered(userID uuid.UUID, expiry time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
}

func (i *TokenIssuer) MintAccess(claims AccessClaims) (string, error) {
	claims.RegisteredClaims = i.registered(claims.UserID, i.accessExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.accessSecret)
}

func (i *TokenIssuer) MintRefresh(userID uuid.UUID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		RegisteredClaims: i.registered(userID, i.refreshExpiry),
	})
	return token.SignedString(i.refreshSecret)
}

func (i *TokenIssuer) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(tokenString, claims, i.accessSecret); err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	claims.UserID = userID
	return claims, nil
}

// VerifyRefresh returns the user id a refresh token was minted for.
func (i *TokenIssuer) VerifyRefresh(tokenString string) (uuid.UUID, error) {
	claims := &refreshClaims{}
	if err := i.parse(tokenString, claims, i.refreshSecret); err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	return userID, nil
}

func (i *TokenIssuer) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
