package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealquest/backend/internal/middleware"
	"github.com/pageza/mealquest/backend/internal/service"
	"github.com/pageza/mealquest/backend/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes mounts the sign-in endpoints, which need no identity.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/guest", h.Guest)
		auth.POST("/password-reset", h.RequestPasswordReset)
	}
}

// RegisterIdentityRoutes mounts endpoints that describe the caller.
func (h *AuthHandler) RegisterIdentityRoutes(router *gin.RouterGroup) {
	router.GET("/me", h.Me)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, types.AuthResponse{
		Token:       token,
		UserID:      user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		return
	}

	c.JSON(http.StatusOK, types.AuthResponse{
		Token:       token,
		UserID:      user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
}

func (h *AuthHandler) Guest(c *gin.Context) {
	userID, token, err := h.authService.Guest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start guest session"})
		return
	}
	c.JSON(http.StatusCreated, types.AuthResponse{Token: token, UserID: userID, Guest: true})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req types.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	if errors.Is(err, service.ErrInvalidEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request password reset"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "if the address is registered, a reset link is on its way"})
}

// Me describes the caller's identity.
func (h *AuthHandler) Me(c *gin.Context) {
	key := middleware.IdentityKey(c)
	resp := gin.H{
		"identity_key": key,
		"guest":        c.GetBool(middleware.ContextGuest),
	}
	if userID := c.GetString(middleware.ContextUserID); userID != "" && !c.GetBool(middleware.ContextGuest) {
		resp["user_id"] = userID
		if user, err := h.authService.GetUserByID(c.Request.Context(), userID); err == nil {
			resp["email"] = user.Email
			resp["display_name"] = user.DisplayName
		}
	}
	c.JSON(http.StatusOK, resp)
}
