package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"tdls-api/internal"
	"tdls-api/internal/model"
	"tdls-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type registerBody struct {
	UserID   string `json:"user_id" form:"user_id"`
	Password string `json:"password" form:"password"`
	Nickname string `json:"nickname" form:"nickname"`
	Email    string `json:"email" form:"email"`
}

func (b *registerBody) validate() error {
	if err := validators.UserIDValidator(b.UserID); err != nil {
		return err
	}

	if err := validators.PasswordValidator(b.Password); err != nil {
		return err
	}

	if err := validators.NicknameValidator(b.Nickname); err != nil {
		return err
	}

	return validators.EmailValidator(b.Email)
}

// @Summary	Register a new user
// @Tags		users
// @Accept		json
// @Produce	json
// @Param		body	body		registerBody	true	"Account data"
// @Success	201		{object}	map[string]string
// @Failure	400		{object}	map[string]string
// @Failure	409		{object}	map[string]string
// @Router		/users [post]
func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	data.UserID = strings.TrimSpace(data.UserID)
	data.Nickname = strings.TrimSpace(data.Nickname)
	data.Email = normalizeEmail(data.Email)

	if err := data.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	field, err := firstTaken(c.Request.Context(), d.DB, "", map[string]string{
		"user_id":  data.UserID,
		"nickname": data.Nickname,
		"email":    data.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if user is registered", zap.Error(err), zap.String("requestID", requestID))
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

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Unverified accounts get purged by the cleanup job after this point
	expiry := time.Now().Add(viper.GetDuration("cleanup.unverified_after"))

	user := model.User{
		ID:           uuid.NewString(),
		UserID:       data.UserID,
		Nickname:     data.Nickname,
		Email:        data.Email,
		PasswordHash: hash,
		ExpiresAt:    &expiry,
	}

	if err := d.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		// Lost a race against another signup with the same values
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "User id, nickname or email is already in use",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_uuid": user.ID,
	})
}
