package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/security"
	"github.com/Emmakaranja1/Finance-Tracker/internal/usecase"
)

func respond(t *testing.T, log *zap.Logger, err error, cases []ErrorCase) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/reset-password", nil)

	RespondWithMappedError(c, log, err, cases, http.StatusInternalServerError, msgInternal)

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rr, body
}

func TestRespondWithMappedErrorUsesDescribedMessage(t *testing.T) {
	violation := &security.PasswordValidationError{Code: "min_length", Message: "Password must be at least 8 characters long."}
	err := fmt.Errorf("%w: %w", usecase.ErrWeakPassword, violation)

	rr, body := respond(t, zap.NewNop(), err, []ErrorCase{
		{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "weak", Describe: usecase.WeakPasswordMessage},
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if body.Error != violation.Message {
		t.Fatalf("expected policy message, got %q", body.Error)
	}
}

func TestRespondWithMappedErrorHidesInternalErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	rr, body := respond(t, zap.New(core), errors.New("pq: connection reset by peer"), []ErrorCase{
		{Err: usecase.ErrInvalidOrExpiredOTP, Status: http.StatusBadRequest, Message: msgInvalidOTP},
	})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if body.Error != msgInternal {
		t.Fatalf("internal detail leaked: %q", body.Error)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected the failure to be logged once, got %d", logs.Len())
	}
}
