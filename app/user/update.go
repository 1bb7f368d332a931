package user

import (
	"errors"
	"net/http"
	"strings"

	"tdls-api/internal"
	"tdls-api/internal/model"
	"tdls-api/pkg/middleware"
	"tdls-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type updateBody struct {
	Password *string `json:"password"`
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
}

// @Summary	Update password, nickname or email of the logged in user
// @Description	Changing the email resets the verified flag
// @Tags		users
// @Accept		json
// @Produce	json
// @Param		body	body		updateBody	true	"Fields to change"
// @Success	200		{object}	model.User
// @Failure	409		{object}	map[string]string
// @Router		/users/me [patch]
func UserUpdate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	updates := map[string]any{}
	unique := map[string]string{}

	if data.Nickname != nil {
		nick := strings.TrimSpace(*data.Nickname)
		if err := validators.NicknameValidator(nick); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		if nick != user.Nickname {
			updates["nickname"] = nick
			unique["nickname"] = nick
		}
	}

	if data.Email != nil {
		email := normalizeEmail(*data.Email)
		if err := validators.EmailValidator(email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		if email != user.Email {
			updates["email"] = email
			updates["verified"] = false
			unique["email"] = email
		}
	}

	if data.Password != nil {
		if err := validators.PasswordValidator(*data.Password); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		hash, err := d.Argon.GenerateFromPassword(*data.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, user)
		return
	}

	field, err := firstTaken(c.Request.Context(), d.DB, user.ID, unique)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check duplicate", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if field != "" {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "This " + field + " is already in use",
			"field":     field,
			"requestID": requestID,
		})
		return
	}

	var updated model.User

	err = d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", user.ID).First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Nickname or email is already in use",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, updated)
}
