// Package friend serves the friend relationship endpoints
package friend

import (
	"errors"
	"net/http"

	"tdls-api/internal/friends"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// abortWithEngineError maps an error returned by the friends engine to a response
func abortWithEngineError(c *gin.Context, err error, requestID string) {
	var (
		status int
		msg    string
	)

	switch {
	case errors.Is(err, friends.ErrNotFound):
		status, msg = http.StatusNotFound, "Friend request not found"
	case errors.Is(err, friends.ErrDuplicate):
		status, msg = http.StatusConflict, "Friend request already exists"
	case errors.Is(err, friends.ErrIllegalTransition):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, friends.ErrStaleStatus):
		status, msg = http.StatusConflict, "Friend request was changed concurrently, please retry"
	default:
		status, msg = http.StatusInternalServerError, "Internal server error"
		zap.L().Error("Friend operation failed", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(status, gin.H{
		"error":     msg,
		"requestID": requestID,
	})
}
