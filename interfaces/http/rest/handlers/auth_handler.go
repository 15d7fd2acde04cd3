package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mathtree-backend/application/ports"
	"mathtree-backend/domain/core/entities"
	"mathtree-backend/pkg/auth"
	pkgerrors "mathtree-backend/pkg/errors"
	"mathtree-backend/pkg/utils"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	userRepo     ports.UserRepository
	publisher    ports.EventPublisher
	jwtService   *auth.JWTService
	loginLimiter *auth.LoginLimiter
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userRepo ports.UserRepository,
	publisher ports.EventPublisher,
	jwtService *auth.JWTService,
	loginLimiter *auth.LoginLimiter,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		userRepo:     userRepo,
		publisher:    publisher,
		jwtService:   jwtService,
		loginLimiter: loginLimiter,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName,omitempty" validate:"omitempty,min=1,max=100"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a fresh access token and the account it belongs to
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	User      UserResponse `json:"user"`
}

// UserResponse represents a user profile
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
}

func toUserResponse(user *entities.User) UserResponse {
	return UserResponse{
		ID:          user.ID(),
		Email:       user.Email(),
		DisplayName: user.DisplayName(),
		CreatedAt:   user.CreatedAt().Format(time.RFC3339Nano),
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Password does not meet requirements")
		return
	}

	user, err := entities.NewUser(req.Email, req.DisplayName, passwordHash)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.userRepo.Save(r.Context(), user); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.publisher.Publish(r.Context(), user.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish events",
			zap.String("userID", user.ID()),
			zap.Error(err),
		)
	}
	user.MarkEventsAsCommitted()

	token, err := h.jwtService.GenerateToken(user.ID(), user.Email(), user.DisplayName())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("User registered", zap.String("userID", user.ID()))

	h.respondJSON(w, http.StatusCreated, AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtService.TTL().Seconds()),
		User:      toUserResponse(user),
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	allowed, err := h.loginLimiter.Allow(r.Context(), req.Email)
	if err != nil {
		h.logger.Warn("Login limiter degraded", zap.Error(err))
	}
	if !allowed {
		h.respondError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password
		h.respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !auth.ComparePassword(user.PasswordHash(), req.Password) {
		h.respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID(), user.Email(), user.DisplayName())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.jwtService.TTL().Seconds()),
		User:      toUserResponse(user),
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userCtx.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *AuthHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
