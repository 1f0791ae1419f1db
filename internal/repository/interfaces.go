package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository is the credential store. Reads named Public* omit the
// password hash and refresh token columns.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetPublicByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// FindByUsernameOrEmail matches either column; empty arguments are ignored.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)

	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	// RotateRefreshToken swaps current for next only if current is still the
	// stored value. It returns false when the swap did not happen.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, url, publicID string) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, id uuid.UUID, url, publicID string) (*domain.User, error)
	AppendWatchHistory(ctx context.Context, id uuid.UUID, videoID uuid.UUID) error
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	// GetByIDs loads videos with their owners preloaded. Order is unspecified.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Video, error)
}

type Repositories struct {
	User  UserRepository
	Video VideoRepository
}
