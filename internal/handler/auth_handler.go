package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/splicerhq/groupbuy_api/internal/middleware"
	"github.com/splicerhq/groupbuy_api/internal/service"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

// AuthHandler handles registration, login, and the profile endpoint.
type AuthHandler struct {
	authService *service.AuthService
	rateLimiter *middleware.LoginRateLimiter
}

func NewAuthHandler(authService *service.AuthService, rateLimiter *middleware.LoginRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, rateLimiter: rateLimiter}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 201, "Account created", user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_ATTEMPTS", "Too many login attempts, try again later")
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.Error(c, 404, "USER_NOT_FOUND", "User not found")
		return
	}
	utils.Success(c, 200, "Profile retrieved", user)
}

func (h *AuthHandler) handleError(c *gin.Context, err error) {
	var fieldErrs service.ValidationErrors
	if errors.As(err, &fieldErrs) {
		utils.ValidationError(c, "Validation failed", fieldErrs)
		return
	}
	switch err {
	case utils.ErrEmailTaken:
		utils.Error(c, 409, "EMAIL_TAKEN", "An account with this email already exists")
	case utils.ErrInvalidCredentials:
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}
