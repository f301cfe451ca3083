package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/transport/http/middleware"
	"github.com/Emmakaranja1/Finance-Tracker/internal/usecase"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgTokenRequired      = "Access token required"
	msgTokenInvalid       = "Invalid or expired token"
	msgUserNotFound       = "User not found"
)

// AuthHandler exposes login and the current-user endpoint.
type AuthHandler struct {
	auth   *usecase.AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// RegisterRoutes attaches the login and me routes. loginMiddlewares run before Login.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	loginHandlers := append(append([]gin.HandlerFunc{}, loginMiddlewares...), h.Login)
	rg.POST("/login", loginHandlers...)
	rg.GET("/me", h.Me)
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload: email and password are required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		RespondWithMappedError(c, h.logger, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: msgInvalidCredentials},
		}, http.StatusInternalServerError, msgInternal)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		RespondWithMappedError(c, h.logger, err, []ErrorCase{
			{Err: usecase.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: msgTokenRequired},
			{Err: usecase.ErrInvalidToken, Status: http.StatusUnauthorized, Message: msgTokenInvalid},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: msgUserNotFound},
		}, http.StatusInternalServerError, msgInternal)
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: *user})
}
