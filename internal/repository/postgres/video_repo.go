package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
	"gorm.io/gorm"
)

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *videoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *domain.Video) error {
	return translateError(r.db.WithContext(ctx).Create(video).Error)
}

func (r *videoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	var video domain.Video
	if err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &video, nil
}

func (r *videoRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Video, error) {
	if len(ids) == 0 {
		return []*domain.Video{}, nil
	}

	var videos []*domain.Video
	err := r.db.WithContext(ctx).
		Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "full_name", "avatar_url")
		}).
		Where("id IN ?", ids).
		Find(&videos).Error
	if err != nil {
		return nil, translateError(err)
	}
	return videos, nil
}
