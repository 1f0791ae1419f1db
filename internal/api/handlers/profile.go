package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/api/middleware"
	"github.com/vidstream/vidstream-api/internal/api/response"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/logging"
	"github.com/vidstream/vidstream-api/internal/service"
	"github.com/vidstream/vidstream-api/internal/upload"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	stager         *upload.Stager
	log            *slog.Logger
}

func NewProfileHandler(profileService *service.ProfileService, stager *upload.Stager, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		stager:         stager,
		log:            logging.WithComponent(log, "handlers.profile"),
	}
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *ProfileHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, r, errUnauthenticated, h.log)
		return
	}

	current, err := h.profileService.GetCurrentUser(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	response.JSON(w, http.StatusOK, current, "current user fetched successfully")
}

func (h *ProfileHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, r, errUnauthenticated, h.log)
		return
	}

	var req UpdateAccountRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	updated, err := h.profileService.UpdateAccount(r.Context(), user.ID, service.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	response.JSON(w, http.StatusOK, updated, "account details updated successfully")
}

func (h *ProfileHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.profileService.UpdateAvatar, "avatar updated successfully")
}

func (h *ProfileHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.profileService.UpdateCoverImage, "cover image updated successfully")
}

func (h *ProfileHandler) replaceImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	update func(ctx context.Context, userID uuid.UUID, localPath string) (*domain.User, error),
	message string,
) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, r, errUnauthenticated, h.log)
		return
	}

	staged, err := parseMultipart(w, r, h.stager, field)
	defer staged.cleanup(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	updated, err := update(r.Context(), user.ID, staged.get(field))
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	response.JSON(w, http.StatusOK, updated, message)
}

func (h *ProfileHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, r, errUnauthenticated, h.log)
		return
	}

	history, err := h.profileService.GetWatchHistory(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	response.JSON(w, http.StatusOK, history, "watch history fetched successfully")
}

func (h *ProfileHandler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, r, errUnauthenticated, h.log)
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(w, r, domain.ValidationError("invalid video id", "videoId must be a UUID"), h.log)
		return
	}

	if err := h.profileService.RecordWatch(r.Context(), user.ID, videoID); err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"videoId": videoID.String()}, "watch history updated")
}
