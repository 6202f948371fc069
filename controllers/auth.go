package controllers

import (
	"errors"
	"net/http"

	"iris-api/middleware"
	"iris-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	users  *services.UserService
	tokens *middleware.TokenIssuer
	logger *zap.Logger
}

func NewAuthController(users *services.UserService, tokens *middleware.TokenIssuer, logger *zap.Logger) *AuthController {
	return &AuthController{users: users, tokens: tokens, logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginUser struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Login handles POST /users/login. The response shape is
// {status, token, user} on success and {status:"error", message} otherwise.
func (h *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Email and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password, services.LoginMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		status, _ := classify(err)
		msg := "Invalid credentials"
		if errors.Is(err, services.ErrValidation) {
			msg = err.Error()
		} else if status == http.StatusInternalServerError {
			_ = c.Error(err)
			msg = "Login failed"
		}
		c.JSON(status, gin.H{"status": "error", "message": msg})
		return
	}

	token, expires, err := h.tokens.Issue(*user)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to generate token"})
		return
	}

	h.logger.Info("user logged in", zap.String("user_id", user.UserID))
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"token":      token,
		"expires_at": expires,
		"user": loginUser{
			UserID:   user.UserID,
			FullName: user.FullName,
			Email:    user.Email,
		},
	})
}

// FindUsers handles GET /users?email=.
func (h *AuthController) FindUsers(c *gin.Context) {
	users, err := h.users.FindByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, users)
}

func (h *AuthController) Profile(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	profile, err := h.users.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, profile)
}
