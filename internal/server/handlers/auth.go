package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
	"github.com/maati-dev/maati/internal/validation"
	"github.com/maati-dev/maati/pkg/api"
)

// Cookie names used for browser sessions. App clients (isApp=true) get the
// tokens in the response body instead.
const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// AuthHandler handles employee authentication.
// Accounts are pre-provisioned by an administrator; Register only sets the
// password on an existing record.
type AuthHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	villages     storage.VillageStorage
	jwtConfig    JWTConfig
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	tokenStorage storage.TokenStorage,
	villages storage.VillageStorage,
	jwtConfig JWTConfig,
) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		villages:     villages,
		jwtConfig:    jwtConfig,
	}
}

// Register handles POST /api/v1/auth/register.
// Sets the password on a pre-provisioned employee record. The supplied
// mobile number and role must match the provisioned values.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request", slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateEmpID(req.EmpID); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateMobile(req.Mobile); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUser(ctx, req.EmpID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "register: employee not provisioned", slog.String("emp_id", req.EmpID))
			sendError(h.logger, w, "employee record not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if user.Mobile != req.Mobile || !strings.EqualFold(user.Role, req.Role) {
		h.logger.WarnContext(ctx, "register: employee details mismatch", slog.String("emp_id", req.EmpID))
		sendError(h.logger, w, "employee details do not match", http.StatusUnauthorized)
		return
	}

	if user.Verified {
		sendError(h.logger, w, "account already registered", http.StatusConflict)
		return
	}

	if err := h.checkPasswordReuse(ctx, req.EmpID, req.Password); err != nil {
		if errors.Is(err, storage.ErrPasswordReused) {
			sendError(h.logger, w, "password was used before, choose a different one", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to check password history", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.userStorage.SetPassword(ctx, req.EmpID, string(hash), time.Now()); err != nil {
		h.logger.ErrorContext(ctx, "failed to set password", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "employee registered", slog.String("emp_id", req.EmpID))
	sendResult(h.logger, w, http.StatusCreated, "registration successful", nil)
}

// Login handles POST /api/v1/auth/login.
// On success the result carries the employee, their assigned village and,
// for app clients, the token pair with expiresIn. Browser clients get the
// tokens in http-only cookies instead.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid login request", slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUser(ctx, req.EmpID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("emp_id", req.EmpID))
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !user.Verified || user.Mobile != req.Mobile || !strings.EqualFold(user.Role, req.Role) {
		h.logger.WarnContext(ctx, "login failed: details mismatch", slog.String("emp_id", req.EmpID))
		sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: wrong password", slog.String("emp_id", req.EmpID))
		sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	result, err := h.issueTokens(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.userStorage.UpdateLastLogin(ctx, user.UserID, time.Now()); err != nil {
		// Not critical, the login still succeeds.
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	if !req.IsApp {
		h.setAuthCookies(w, result.Token, result.RefreshToken)
		result.Token = ""
		result.RefreshToken = ""
		result.ExpiresIn = 0
	}

	h.logger.InfoContext(ctx, "employee logged in",
		slog.String("emp_id", user.UserID),
		slog.Bool("is_app", req.IsApp))

	sendResult(h.logger, w, http.StatusOK, "login successful", result)
}

// Refresh handles POST /api/v1/auth/refresh.
// The refresh token travels in the request body for app clients or in the
// refresh_token cookie for browser sessions. Tokens rotate on every call.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if r.Body != nil {
		// Body is optional for cookie-based sessions.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	fromCookie := false
	refreshToken := req.RefreshToken
	if refreshToken == "" {
		cookie, err := r.Cookie(refreshCookieName)
		if err != nil || cookie.Value == "" {
			sendError(h.logger, w, "refresh token is required", http.StatusUnauthorized)
			return
		}
		refreshToken = cookie.Value
		fromCookie = true
	}

	stored, err := h.tokenStorage.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			sendError(h.logger, w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if time.Now().After(stored.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", stored.UserID))
		if err := h.tokenStorage.DeleteRefreshToken(ctx, refreshToken); err != nil {
			h.logger.WarnContext(ctx, "failed to delete expired token", slog.Any("error", err))
		}
		sendError(h.logger, w, "refresh token expired", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUser(ctx, stored.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	result, err := h.issueTokens(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Rotate: the presented token is spent.
	if err := h.tokenStorage.DeleteRefreshToken(ctx, refreshToken); err != nil {
		h.logger.WarnContext(ctx, "failed to delete old refresh token", slog.Any("error", err))
	}

	if fromCookie {
		h.setAuthCookies(w, result.Token, result.RefreshToken)
	}

	h.logger.InfoContext(ctx, "tokens refreshed", slog.String("user_id", user.UserID))
	sendResult(h.logger, w, http.StatusOK, "token refreshed", result)
}

// Logout handles POST /api/v1/auth/logout.
// Deletes every refresh token of the caller and clears session cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accessToken := bearerToken(r)
	if accessToken == "" {
		if cookie, err := r.Cookie(accessCookieName); err == nil {
			accessToken = cookie.Value
		}
	}
	if accessToken == "" {
		sendError(h.logger, w, "access token is required", http.StatusUnauthorized)
		return
	}

	claims, err := ValidateAccessToken(h.jwtConfig, accessToken)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
		sendError(h.logger, w, "invalid or expired access token", http.StatusUnauthorized)
		return
	}

	deleted, err := h.tokenStorage.DeleteUserTokens(ctx, claims.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user tokens", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.clearAuthCookies(w)

	h.logger.InfoContext(ctx, "employee logged out",
		slog.String("user_id", claims.UserID),
		slog.Int("tokens_deleted", deleted))

	sendResult(h.logger, w, http.StatusOK, "logged out", nil)
}

// issueTokens generates a fresh access/refresh pair, persists the refresh
// token and assembles the auth result with user and village info.
func (h *AuthHandler) issueTokens(ctx context.Context, user *models.User) (*api.AuthResult, error) {
	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, user.UserID, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		return nil, err
	}

	if err := h.tokenStorage.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.UserID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	result := &api.AuthResult{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User: &api.UserInfo{
			UserID: user.UserID,
			Name:   user.Name,
			Role:   user.Role,
			Email:  user.Email,
			Mobile: user.Mobile,
		},
	}

	if user.VillageID != "" {
		village, err := h.villages.GetVillage(ctx, user.VillageID)
		if err != nil {
			// The assigned village may have been removed; the session still works.
			h.logger.WarnContext(ctx, "failed to load assigned village",
				slog.String("village_id", user.VillageID), slog.Any("error", err))
		} else if raw, err := json.Marshal(village); err == nil {
			result.Village = raw
		}
	}

	return result, nil
}

// checkPasswordReuse rejects a password that matches any past hash.
func (h *AuthHandler) checkPasswordReuse(ctx context.Context, userID, password string) error {
	records, err := h.userStorage.PasswordHistory(ctx, userID)
	if err != nil {
		return err
	}
	for _, record := range records {
		if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) == nil {
			return storage.ErrPasswordReused
		}
	}
	return nil
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.jwtConfig.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/api/v1/auth",
		MaxAge:   int(h.jwtConfig.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name: accessCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name: refreshCookieName, Value: "", Path: "/api/v1/auth", MaxAge: -1, HttpOnly: true,
	})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
