package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/logging"
	"github.com/vidstream/vidstream-api/internal/media"
	"github.com/vidstream/vidstream-api/internal/repository"
)

type ProfileService struct {
	userRepo  repository.UserRepository
	videoRepo repository.VideoRepository
	media     media.Store
	log       *slog.Logger
}

func NewProfileService(userRepo repository.UserRepository, videoRepo repository.VideoRepository, store media.Store, log *slog.Logger) *ProfileService {
	return &ProfileService{
		userRepo:  userRepo,
		videoRepo: videoRepo,
		media:     store,
		log:       logging.WithComponent(log, "profile"),
	}
}

type UpdateAccountInput struct {
	FullName string
	Email    string
}

func (s *ProfileService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetPublicByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError("current_user", err)
	}
	return user, nil
}

// UpdateAccount writes the display name and email only.
func (s *ProfileService) UpdateAccount(ctx context.Context, userID uuid.UUID, input UpdateAccountInput) (*domain.User, error) {
	var missing []string
	if domain.IsBlank(input.FullName) {
		missing = append(missing, "fullName is required")
	}
	if domain.IsBlank(input.Email) {
		missing = append(missing, "email is required")
	}
	if len(missing) > 0 {
		return nil, domain.ValidationError("all fields are required", missing...)
	}
	if !domain.IsEmailValid(input.Email) {
		return nil, domain.ValidationError("invalid email format", "email must be a valid address")
	}

	user, err := s.userRepo.UpdateAccount(ctx, userID, domain.TitleCase(input.FullName), domain.NormalizeHandle(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ConflictError("email is already in use")
		}
		return nil, s.lookupError("update_account", err)
	}
	return user, nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error) {
	if localPath == "" {
		return nil, domain.ValidationError("avatar file is missing", "avatar is required")
	}
	return s.replaceImage(ctx, userID, localPath, "avatar", s.userRepo.UpdateAvatar,
		func(u *domain.User) string { return u.AvatarPublicID })
}

func (s *ProfileService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error) {
	if localPath == "" {
		return nil, domain.ValidationError("cover image file is missing", "coverImage is required")
	}
	return s.replaceImage(ctx, userID, localPath, "cover image", s.userRepo.UpdateCoverImage,
		func(u *domain.User) string { return u.CoverImagePublicID })
}

type imageUpdater func(ctx context.Context, id uuid.UUID, url, publicID string) (*domain.User, error)

// replaceImage uploads the new file, points the record at it and only then
// deletes the previous object. A failed delete leaves an orphan in the
// bucket but the account stays consistent, so it is logged, not returned.
func (s *ProfileService) replaceImage(
	ctx context.Context,
	userID uuid.UUID,
	localPath, label string,
	update imageUpdater,
	previousID func(*domain.User) string,
) (*domain.User, error) {
	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError("replace_image.lookup", err)
	}
	oldID := previousID(current)

	asset, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, domain.UploadError("error while uploading "+label, err)
	}

	user, err := update(ctx, userID, asset.URL, asset.PublicID)
	if err != nil {
		if delErr := s.media.Delete(ctx, asset.PublicID); delErr != nil {
			logging.LogError(s.log, "delete unreferenced upload", delErr, "public_id", asset.PublicID)
		}
		return nil, s.lookupError("replace_image.update", err)
	}

	if oldID != "" && oldID != asset.PublicID {
		if err := s.media.Delete(ctx, oldID); err != nil {
			logging.LogError(s.log, "delete previous "+label, err, "user_id", userID, "public_id", oldID)
		}
	}

	return user, nil
}

// GetWatchHistory returns watched videos, most recent first. Entries whose
// video no longer exists are skipped.
func (s *ProfileService) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]domain.WatchedVideo, error) {
	user, err := s.userRepo.GetPublicByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError("watch_history.lookup", err)
	}

	history := []domain.WatchedVideo{}
	if len(user.WatchHistory) == 0 {
		return history, nil
	}

	videos, err := s.videoRepo.GetByIDs(ctx, user.WatchHistory)
	if err != nil {
		return nil, domain.InternalError("watch_history.videos", err)
	}
	byID := make(map[uuid.UUID]*domain.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	for i := len(user.WatchHistory) - 1; i >= 0; i-- {
		if v, ok := byID[user.WatchHistory[i]]; ok {
			history = append(history, domain.NewWatchedVideo(v))
		}
	}
	return history, nil
}

// RecordWatch appends videoID to the user's watch history.
func (s *ProfileService) RecordWatch(ctx context.Context, userID, videoID uuid.UUID) error {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("video not found")
		}
		return domain.InternalError("record_watch.video", err)
	}

	if err := s.userRepo.AppendWatchHistory(ctx, userID, videoID); err != nil {
		return s.lookupError("record_watch.append", err)
	}
	return nil
}

func (s *ProfileService) lookupError(operation string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundError("user not found")
	}
	return domain.InternalError(operation, err)
}
