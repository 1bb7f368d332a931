package user

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tdls-api/internal"
	"tdls-api/internal/model"
	"tdls-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// isTaken reports whether another user already uses value for field.
// excludeID skips the caller's own row when updating.
func isTaken(ctx context.Context, db *gorm.DB, field, value, excludeID string) (bool, error) {
	var n int64

	q := db.WithContext(ctx).Model(&model.User{}).Where(field+" = ?", value)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check %s availability, %w", field, err)
	}

	return n > 0, nil
}

// firstTaken checks the unique fields in order and returns the first one
// that is already in use, or an empty string
func firstTaken(ctx context.Context, db *gorm.DB, excludeID string, fields map[string]string) (string, error) {
	for _, field := range []string{"user_id", "nickname", "email"} {
		value, ok := fields[field]
		if !ok {
			continue
		}

		taken, err := isTaken(ctx, db, field, value, excludeID)
		if err != nil {
			return "", err
		}

		if taken {
			return field, nil
		}
	}

	return "", nil
}

// @Summary	Check if a user id, nickname or email is still available
// @Tags		users
// @Produce	json
// @Param		field	query	string	true	"user_id, nickname or email"
// @Param		value	query	string	true	"value to check"
// @Success	200		{object}	map[string]any
// @Failure	400		{object}	map[string]string
// @Router		/users/check [get]
func UserCheck(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	field := c.Query("field")
	value := c.Query("value")
	if field == "email" {
		value = normalizeEmail(value)
	}

	if err := validators.UniqueFieldValidator(field, value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	taken, err := isTaken(c.Request.Context(), d.DB, field, value, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check duplicate", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"field":     field,
		"available": !taken,
	})
}
