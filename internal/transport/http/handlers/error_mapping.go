package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
// Describe, when set, may replace Message with detail carried by the error.
type ErrorCase struct {
	Err      error
	Status   int
	Message  string
	Describe func(error) (string, bool)
}

// RespondWithMappedError resolves err against known cases or falls back to a generic
// response. Fallback errors are logged and attached to the gin context; their text
// never reaches the client.
func RespondWithMappedError(c *gin.Context, log *zap.Logger, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil || !errors.Is(err, cs.Err) {
			continue
		}
		message := cs.Message
		if cs.Describe != nil {
			if detail, ok := cs.Describe(err); ok {
				message = detail
			}
		}
		c.JSON(cs.Status, NewErrorResponse(c, message))
		return
	}

	_ = c.Error(err)
	if log != nil {
		logger.WithContext(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
