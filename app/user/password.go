package user

import (
	"errors"
	"net/http"

	"tdls-api/internal"
	"tdls-api/internal/model"
	"tdls-api/internal/verification"
	"tdls-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type resetBody struct {
	Email    string `json:"email" form:"email"`
	Code     string `json:"code" form:"code"`
	Password string `json:"password" form:"password"`
}

// @Summary	Reset a forgotten password with an emailed code
// @Description	The code has to be requested with POST /verify/send first
// @Tags		users
// @Accept		json
// @Produce	json
// @Param		body	body		resetBody	true	"Email, code and the new password"
// @Success	200		{object}	map[string]string
// @Failure	401		{object}	map[string]string
// @Failure	408		{object}	map[string]string
// @Router		/users/password/reset [post]
func UserPasswordReset(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data resetBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	data.Email = normalizeEmail(data.Email)

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	outcome, err := d.Verifier.Verify(c.Request.Context(), data.Email, data.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	switch outcome {
	case verification.WrongCode:
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Wrong verification code",
			"requestID": requestID,
		})
		return
	case verification.Timeout:
		c.JSON(http.StatusRequestTimeout, gin.H{
			"error":     "Verification code expired, please request a new one",
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

	res := d.DB.WithContext(c.Request.Context()).
		Model(&model.User{}).
		Where("email = ?", data.Email).
		Update("password_hash", hash)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update password", zap.Error(res.Error), zap.String("requestID", requestID))
		return
	}

	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "User not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}
