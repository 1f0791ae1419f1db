package service

import (
	"log/slog"

	"github.com/vidstream/vidstream-api/internal/auth"
	"github.com/vidstream/vidstream-api/internal/config"
	"github.com/vidstream/vidstream-api/internal/media"
	"github.com/vidstream/vidstream-api/internal/observability"
	"github.com/vidstream/vidstream-api/internal/ratelimit"
	"github.com/vidstream/vidstream-api/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Profile *ProfileService
}

func NewServices(
	repos *repository.Repositories,
	store media.Store,
	limiter ratelimit.Limiter,
	metrics *observability.Metrics,
	cfg *config.Config,
	log *slog.Logger,
) *Services {
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(
		cfg.AccessTokenSecret, cfg.AccessTokenExpiry,
		cfg.RefreshTokenSecret, cfg.RefreshTokenExpiry,
	)

	return &Services{
		Auth:    NewAuthService(repos.User, hasher, tokens, store, limiter, metrics, log),
		Profile: NewProfileService(repos.User, repos.Video, store, log),
	}
}
