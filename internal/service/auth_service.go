package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/auth"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/logging"
	"github.com/vidstream/vidstream-api/internal/media"
	"github.com/vidstream/vidstream-api/internal/observability"
	"github.com/vidstream/vidstream-api/internal/ratelimit"
	"github.com/vidstream/vidstream-api/internal/repository"
)

// AuthService owns the session lifecycle: registration, login, refresh
// rotation, logout and password changes.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	tokens   *auth.TokenIssuer
	media    media.Store
	limiter  ratelimit.Limiter
	metrics  *observability.Metrics
	log      *slog.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	store media.Store,
	limiter ratelimit.Limiter,
	metrics *observability.Metrics,
	log *slog.Logger,
) *AuthService {
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		media:    store,
		limiter:  limiter,
		metrics:  metrics,
		log:      logging.WithComponent(log, "auth"),
	}
}

type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	Email    string
	Username string
	Password string
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

type AuthResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Register creates an account. The avatar is mandatory; the cover image is
// optional. Media uploaded before a failed insert is deleted again.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (user *domain.User, err error) {
	defer func() { s.metrics.RecordAuth("register", err) }()

	var missing []string
	for _, field := range []struct{ name, value string }{
		{"fullName", input.FullName},
		{"email", input.Email},
		{"username", input.Username},
		{"password", input.Password},
	} {
		if domain.IsBlank(field.value) {
			missing = append(missing, field.name+" is required")
		}
	}
	if len(missing) > 0 {
		return nil, domain.ValidationError("all fields are required", missing...)
	}
	if !domain.IsEmailValid(input.Email) {
		return nil, domain.ValidationError("invalid email format", "email must be a valid address")
	}
	if err := checkPasswordLength(input.Password); err != nil {
		return nil, err
	}

	username := domain.NormalizeHandle(input.Username)
	email := domain.NormalizeHandle(input.Email)

	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ConflictError("user with email or username already exists")
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, domain.InternalError("register.lookup", err)
	}

	if input.AvatarPath == "" {
		return nil, domain.ValidationError("avatar file is required", "avatar is required")
	}

	avatar, err := s.media.Upload(ctx, input.AvatarPath)
	if err != nil {
		return nil, domain.UploadError("failed to upload avatar", err)
	}
	uploaded := []string{avatar.PublicID}

	var cover *media.Asset
	if input.CoverImagePath != "" {
		cover, err = s.media.Upload(ctx, input.CoverImagePath)
		if err != nil {
			s.discardMedia(ctx, uploaded...)
			return nil, domain.UploadError("failed to upload cover image", err)
		}
		uploaded = append(uploaded, cover.PublicID)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.discardMedia(ctx, uploaded...)
		return nil, domain.InternalError("register.hash", err)
	}

	created := &domain.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		FullName:       domain.TitleCase(input.FullName),
		AvatarURL:      avatar.URL,
		AvatarPublicID: avatar.PublicID,
		PasswordHash:   hash,
	}
	if cover != nil {
		created.CoverImageURL = cover.URL
		created.CoverImagePublicID = cover.PublicID
	}

	if err := s.userRepo.Create(ctx, created); err != nil {
		s.discardMedia(ctx, uploaded...)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ConflictError("user with email or username already exists")
		}
		return nil, domain.InternalError("register.create", err)
	}

	user, err = s.userRepo.GetPublicByID(ctx, created.ID)
	if err != nil {
		return nil, domain.InternalError("register.reload", err)
	}
	return user, nil
}

// Login verifies credentials and starts a new session, replacing any
// refresh token issued earlier.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (result *AuthResult, err error) {
	defer func() { s.metrics.RecordAuth("login", err) }()

	username := domain.NormalizeHandle(input.Username)
	email := domain.NormalizeHandle(input.Email)
	if username == "" && email == "" {
		return nil, domain.ValidationError("username or email is required", "username or email is required")
	}
	if input.Password == "" {
		return nil, domain.ValidationError("password is required", "password is required")
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError("user does not exist")
		}
		return nil, domain.InternalError("login.lookup", err)
	}

	throttleKey := user.ID.String()
	decision, err := s.limiter.Check(ctx, throttleKey)
	if err != nil {
		return nil, domain.InternalError("login.throttle", err)
	}
	if decision.Locked {
		return nil, domain.TooManyAttemptsError("too many failed login attempts, try again later")
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		if err := s.limiter.RecordFailure(ctx, throttleKey); err != nil {
			logging.LogError(s.log, "record login failure", err, "user_id", user.ID)
		}
		return nil, domain.AuthError("invalid user credentials", nil)
	}

	if err := s.limiter.Reset(ctx, throttleKey); err != nil {
		logging.LogError(s.log, "reset login failures", err, "user_id", user.ID)
	}

	access, refresh, err := s.mintPair(user)
	if err != nil {
		return nil, domain.InternalError("login.mint", err)
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, domain.InternalError("login.persist", err)
	}

	public, err := s.userRepo.GetPublicByID(ctx, user.ID)
	if err != nil {
		return nil, domain.InternalError("login.reload", err)
	}

	return &AuthResult{User: public, AccessToken: access, RefreshToken: refresh}, nil
}

// Logout drops the stored refresh token so it can no longer be exchanged.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) (err error) {
	defer func() { s.metrics.RecordAuth("logout", err) }()

	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("user not found")
		}
		return domain.InternalError("logout.clear", err)
	}
	return nil
}

// Refresh exchanges the current refresh token for a new pair. The presented
// token must be the one stored on the account; the swap is conditional so
// two concurrent refreshes with the same token cannot both succeed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (result *AuthResult, err error) {
	defer func() { s.metrics.RecordAuth("refresh", err) }()

	if refreshToken == "" {
		return nil, domain.AuthError("unauthorized request", nil)
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.AuthError("invalid refresh token", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.AuthError("invalid refresh token", err)
		}
		return nil, domain.InternalError("refresh.lookup", err)
	}

	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, domain.AuthError("refresh token is expired or used", nil)
	}

	access, refresh, err := s.mintPair(user)
	if err != nil {
		return nil, domain.InternalError("refresh.mint", err)
	}

	rotated, err := s.userRepo.RotateRefreshToken(ctx, user.ID, refreshToken, refresh)
	if err != nil {
		return nil, domain.InternalError("refresh.rotate", err)
	}
	if !rotated {
		return nil, domain.AuthError("refresh token is expired or used", nil)
	}

	user.RefreshToken = nil
	user.PasswordHash = ""
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// ChangePassword replaces the password hash after checking the old password.
// No other column is written.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) (err error) {
	defer func() { s.metrics.RecordAuth("change_password", err) }()

	var missing []string
	if input.OldPassword == "" {
		missing = append(missing, "oldPassword is required")
	}
	if input.NewPassword == "" {
		missing = append(missing, "newPassword is required")
	}
	if len(missing) > 0 {
		return domain.ValidationError("old and new password are required", missing...)
	}
	if err := checkPasswordLength(input.NewPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("user not found")
		}
		return domain.InternalError("change_password.lookup", err)
	}

	if !s.hasher.Verify(input.OldPassword, user.PasswordHash) {
		return domain.AuthError("invalid old password", nil)
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return domain.InternalError("change_password.hash", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFoundError("user not found")
		}
		return domain.InternalError("change_password.update", err)
	}
	return nil
}

func checkPasswordLength(password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return domain.ValidationError("password is too long", "password must be at most 72 bytes")
	}
	return nil
}

// Authenticate resolves an access token to the stored user, without the
// password hash or refresh token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, domain.AuthError("invalid access token", err)
	}

	user, err := s.userRepo.GetPublicByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.AuthError("invalid access token", err)
		}
		return nil, domain.InternalError("authenticate.lookup", err)
	}
	return user, nil
}

func (s *AuthService) mintPair(user *domain.User) (access, refresh string, err error) {
	access, err = s.tokens.MintAccess(auth.AccessClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	})
	if err != nil {
		return "", "", err
	}
	refresh, err = s.tokens.MintRefresh(user.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// discardMedia removes uploaded objects that no record will reference.
func (s *AuthService) discardMedia(ctx context.Context, publicIDs ...string) {
	for _, id := range publicIDs {
		if err := s.media.Delete(ctx, id); err != nil {
			logging.LogError(s.log, "delete orphaned media", err, "public_id", id)
		}
	}
}
