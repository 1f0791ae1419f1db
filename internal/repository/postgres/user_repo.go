package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/repository"
	"gorm.io/gorm"
)

var privateColumns = []string{"password_hash", "refresh_token"}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.WatchHistory == nil {
		user.WatchHistory = []uuid.UUID{}
	}
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) GetPublicByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Omit(privateColumns...).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	if username == "" && email == "" {
		return nil, repository.ErrNotFound
	}

	query := r.db.WithContext(ctx).Model(&domain.User{})
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	default:
		query = query.Where("email = ?", email)
	}

	var user domain.User
	if err := query.First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"refresh_token": token})
}

func (r *userRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND refresh_token = ?", id, current).
		Update("refresh_token", next)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"refresh_token": nil})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

func (r *userRepository) UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (*domain.User, error) {
	if err := r.updateColumns(ctx, id, map[string]interface{}{
		"full_name": fullName,
		"email":     email,
	}); err != nil {
		return nil, err
	}
	return r.GetPublicByID(ctx, id)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, url, publicID string) (*domain.User, error) {
	if err := r.updateColumns(ctx, id, map[string]interface{}{
		"avatar_url":       url,
		"avatar_public_id": publicID,
	}); err != nil {
		return nil, err
	}
	return r.GetPublicByID(ctx, id)
}

func (r *userRepository) UpdateCoverImage(ctx context.Context, id uuid.UUID, url, publicID string) (*domain.User, error) {
	if err := r.updateColumns(ctx, id, map[string]interface{}{
		"cover_image_url":       url,
		"cover_image_public_id": publicID,
	}); err != nil {
		return nil, err
	}
	return r.GetPublicByID(ctx, id)
}

// AppendWatchHistory appends in a single statement so concurrent watches
// never drop each other's entries.
func (r *userRepository) AppendWatchHistory(ctx context.Context, id uuid.UUID, videoID uuid.UUID) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"watch_history": gorm.Expr("COALESCE(watch_history, '[]'::jsonb) || jsonb_build_array(?::text)", videoID.String()),
	})
}

// updateColumns writes only the named columns and reports ErrNotFound when
// no row matched.
func (r *userRepository) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
