package user

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"slices"

	"tdls-api/internal"
	"tdls-api/internal/model"
	"tdls-api/internal/service"
	"tdls-api/pkg/middleware"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var allowedAvatarTypes = []string{"image/png", "image/jpeg", "image/webp"}

// @Summary	Upload a new avatar for the logged in user
// @Tags		users
// @Accept		mpfd
// @Produce	json
// @Param		avatar	formData	file	true	"png, jpeg or webp image"
// @Success	200		{object}	map[string]string
// @Failure	413		{object}	map[string]string
// @Failure	415		{object}	map[string]string
// @Failure	503		{object}	map[string]string
// @Router		/users/me/avatar [put]
func UserAvatar(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	if _, disabled := d.Storage.(service.NoStorage); disabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Avatar uploads are disabled",
			"requestID": requestID,
		})
		return
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Avatar is too large",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No avatar provided",
			"requestID": requestID,
		})
		return
	}

	maxSize := viper.GetInt64("storage.max_avatar_size") << 20
	if header.Size > maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "Avatar is too large",
			"requestID": requestID,
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open uploaded avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read uploaded avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	mtype := mimetype.Detect(data)
	if !slices.Contains(allowedAvatarTypes, mtype.String()) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error":     "Avatar must be a png, jpeg or webp image",
			"requestID": requestID,
		})
		return
	}

	id, err := nanoid.New()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate avatar key", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	key := "avatars/" + user.ID + "/" + id + mtype.Extension()

	err = d.Storage.Put(c.Request.Context(), key, mtype.String(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, service.ErrStorageDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "Avatar uploads are disabled",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to store avatar",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = d.DB.WithContext(c.Request.Context()).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("avatar_key", key).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save avatar key", zap.Error(err), zap.String("requestID", requestID))

		if err := d.Storage.Delete(c.Request.Context(), key); err != nil {
			zap.L().Warn("Failed to delete orphaned avatar", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	if user.AvatarKey != "" {
		if err := d.Storage.Delete(c.Request.Context(), user.AvatarKey); err != nil {
			zap.L().Warn("Failed to delete previous avatar", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"avatar_key": key,
	})
}
