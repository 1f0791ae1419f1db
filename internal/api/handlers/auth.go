package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vidstream/vidstream-api/internal/api/middleware"
	"github.com/vidstream/vidstream-api/internal/api/response"
	"github.com/vidstream/vidstream-api/internal/config"
	"github.com/vidstream/vidstream-api/internal/logging"
	"github.com/vidstream/vidstream-api/internal/service"
	"github.com/vidstream/vidstream-api/internal/upload"
)

type AuthHandler struct {
	authService *service.AuthService
	stager      *upload.Stager
	cookies     sessionCookies
	log         *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, stager *upload.Stager, cfg *config.Config, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stager:      stager,
		cookies: sessionCookies{
			accessTTL:  cfg.AccessTokenExpiry,
			refreshTTL: cfg.RefreshTokenExpiry,
		},
		log: logging.WithComponent(log, "handlers.auth"),
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Register accepts multipart/form-data with username, email, fullName,
// password and the avatar (required) and coverImage (optional) files.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	staged, err := parseMultipart(w, r, h.stager, "avatar", "coverImage")
	defer staged.cleanup(r)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username:       r.FormValue("username"),
		Email:          r.FormValue("email"),
		FullName:       r.FormValue("fullName"),
		Password:       r.FormValue("password"),
		AvatarPath:     staged.get("avatar"),
		CoverImagePath: staged.get("coverImage"),
	})
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	response.JSON(w, http.StatusCreated, user, "user registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	h.cookies.set(w, result.AccessToken, result.RefreshToken)
	response.JSON(w, http.StatusOK, result, "user logged in successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, r, errUnauthenticated, h.log)
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	h.cookies.clear(w)
	response.JSON(w, http.StatusOK, map[string]any{}, "user logged out")
}

// Refresh reads the refresh token from its cookie, falling back to the
// JSON body. An unreadable body counts as a missing token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req RefreshRequest
		if err := decodeJSON(w, r, &req, true); err == nil {
			token = req.RefreshToken
		}
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	h.cookies.set(w, result.AccessToken, result.RefreshToken)
	response.JSON(w, http.StatusOK, map[string]string{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "access token refreshed")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, r, errUnauthenticated, h.log)
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	err := h.authService.ChangePassword(r.Context(), user.ID, service.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		response.Error(w, r, err, h.log)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{}, "password changed successfully")
}
