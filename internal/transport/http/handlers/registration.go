package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/usecase"
)

const (
	msgSignupSuccess = "User registered successfully. Please log in."
	msgEmailTaken    = "Email already registered"
	msgInternal      = "Internal server error"
)

// RegistrationHandler exposes account creation.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	logger       *zap.Logger
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{registration: registration, logger: logger}
}

// RegisterRoutes attaches the signup route to the auth group.
func (h *RegistrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
}

// Signup creates an account.
func (h *RegistrationHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid signup payload: email, password and fullName are required"))
		return
	}

	_, err := h.registration.Signup(c.Request.Context(), usecase.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Currency: req.Currency,
	})
	if err != nil {
		RespondWithMappedError(c, h.logger, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: msgEmailTaken},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "Password does not meet requirements.", Describe: usecase.WeakPasswordMessage},
			{Err: usecase.ErrInvalidCurrency, Status: http.StatusBadRequest, Message: "Currency must be a three letter ISO code."},
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid signup payload: email, password and fullName are required"},
		}, http.StatusInternalServerError, msgInternal)
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: msgSignupSuccess})
}
