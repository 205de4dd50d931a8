package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/welth-app/welth/internal/api/dto"
	"github.com/welth-app/welth/internal/api/middleware"
	"github.com/welth-app/welth/internal/auth"
	"github.com/welth-app/welth/internal/config"
	"github.com/welth-app/welth/internal/domain/user"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/utils"
	"github.com/welth-app/welth/internal/pkg/validator"
)

// RefreshTokenCookie carries the refresh token for browser clients
const RefreshTokenCookie = "refreshToken"

// AuthHandler handles authentication requests
type AuthHandler struct {
	userService user.Service
	config      *config.Config
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService user.Service, cfg *config.Config, log *logger.Logger, val *validator.Validator) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		config:      cfg,
		logger:      log,
		validator:   val,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticate with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Successfully authenticated"
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 401 {object} utils.ErrorResponse "Invalid credentials"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"username": req.Username,
		}).Warn("Failed login attempt")
		utils.WriteErr(w, err)
		return
	}

	h.issueTokens(w, u, http.StatusOK)

	h.logger.WithFields(map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
	}).Info("User logged in successfully")
}

// Register handles user registration
// @Summary User registration
// @Description Register a new account; the username becomes the login handle
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse "User successfully registered"
// @Failure 400 {object} utils.ErrorResponse "Invalid request or validation error"
// @Failure 403 {object} utils.ErrorResponse "Signups disabled"
// @Failure 409 {object} utils.ErrorResponse "Username taken"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	h.logger.Infof("Registration attempt for username: %s", req.Username)

	u, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Code(err) == errors.ErrCodeInternal {
			h.logger.ErrorWithErr(err, "Failed to create user")
		}
		utils.WriteErr(w, err)
		return
	}

	h.issueTokens(w, u, http.StatusCreated)
}

// RefreshToken exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Description Exchange a refresh token (body or cookie) for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /api/auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	// An empty body is fine when the cookie is present
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		utils.WriteError(w, errors.Unauthenticated(middleware.MsgUnauthenticated))
		return
	}

	claims, err := auth.ParseKind(req.RefreshToken, h.config.Auth.JWTSecret, auth.KindRefresh)
	if err != nil {
		utils.WriteError(w, errors.Unauthenticated(middleware.MsgUnauthenticated))
		return
	}

	u, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		utils.WriteError(w, errors.Unauthenticated(middleware.MsgUnauthenticated))
		return
	}

	h.issueTokens(w, u, http.StatusOK)
}

// Logout handles user logout
// @Summary User logout
// @Description Clear the session cookies
// @Tags Auth
// @Success 200 {object} utils.MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, middleware.AccessTokenCookie, "", -1)
	h.setCookie(w, RefreshTokenCookie, "", -1)

	utils.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

// Me returns the current user's information
// @Summary Get current user
// @Description Get authenticated user's information
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.UserDTO "User information"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	u, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		utils.WriteErr(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.NewUserDTO(u))
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, u *user.User, status int) {
	tokens, err := auth.MintTokens(
		u.ID,
		u.Username,
		h.config.Auth.JWTSecret,
		h.config.Auth.AccessTokenExpiry,
		h.config.Auth.RefreshTokenExpiry,
	)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate tokens")
		utils.WriteError(w, errors.Internal("Failed to generate tokens", err))
		return
	}

	h.setCookie(w, middleware.AccessTokenCookie, tokens.AccessToken, h.config.Auth.AccessTokenExpiry)
	h.setCookie(w, RefreshTokenCookie, tokens.RefreshToken, h.config.Auth.RefreshTokenExpiry)

	utils.WriteJSON(w, status, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         dto.NewUserDTO(u),
	})
}

// setCookie writes an HttpOnly session cookie; a negative ttl clears it
func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   h.config.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}
