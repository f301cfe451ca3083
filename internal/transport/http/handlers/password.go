package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/usecase"
)

const (
	msgForgotPassword = "If an account with that email exists, an OTP has been sent."
	msgInvalidOTP     = "Invalid or expired OTP."
	msgOTPVerified    = "OTP verified successfully."
	msgPasswordReset  = "Password has been reset successfully."
	msgWeakPassword   = "Password must be at least 8 characters long."
)

// PasswordHandler exposes the OTP password reset flow.
type PasswordHandler struct {
	reset  *usecase.PasswordResetService
	logger *zap.Logger
}

// NewPasswordHandler constructs a PasswordHandler.
func NewPasswordHandler(reset *usecase.PasswordResetService, logger *zap.Logger) *PasswordHandler {
	return &PasswordHandler{reset: reset, logger: logger}
}

// RegisterRoutes attaches the reset routes; middlewares (rate limits) run before each.
func (h *PasswordHandler) RegisterRoutes(rg *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	with := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, middlewares...), handler)
	}
	rg.POST("/forgot-password", with(h.ForgotPassword)...)
	rg.POST("/verify-otp", with(h.VerifyOTP)...)
	rg.POST("/reset-password", with(h.ResetPassword)...)
}

// ForgotPassword always acknowledges with the same message unless the store fails.
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	// A malformed body is treated as an empty email.
	_ = c.ShouldBindJSON(&req)

	if err := h.reset.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, h.logger, err, nil, http.StatusInternalServerError, msgInternal)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: msgForgotPassword})
}

// VerifyOTP checks a code without consuming it.
func (h *PasswordHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.reset.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		RespondWithMappedError(c, h.logger, err, []ErrorCase{
			{Err: usecase.ErrInvalidOrExpiredOTP, Status: http.StatusBadRequest, Message: msgInvalidOTP},
		}, http.StatusInternalServerError, msgInternal)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: msgOTPVerified})
}

// ResetPassword sets a new password using a live code.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	_ = c.ShouldBindJSON(&req)

	err := h.reset.ResetPassword(c.Request.Context(), usecase.ResetPasswordInput{
		Email:       req.Email,
		OTP:         req.OTP,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		RespondWithMappedError(c, h.logger, err, []ErrorCase{
			{Err: usecase.ErrInvalidOrExpiredOTP, Status: http.StatusBadRequest, Message: msgInvalidOTP},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: msgWeakPassword, Describe: usecase.WeakPasswordMessage},
		}, http.StatusInternalServerError, msgInternal)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: msgPasswordReset})
}
