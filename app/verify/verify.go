package verify

import (
	"net/http"
	"strings"

	"tdls-api/internal"
	"tdls-api/internal/model"
	"tdls-api/internal/verification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type verifyBody struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

// @Summary	Check a verification code
// @Description	A correct code marks the account registered with the address as verified
// @Tags		verify
// @Accept		json
// @Produce	json
// @Param		body	body		verifyBody	true	"Address and code"
// @Success	200		{object}	map[string]any
// @Failure	401		{object}	map[string]string
// @Failure	408		{object}	map[string]string
// @Router		/verify [post]
func CheckCode(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(data.Email))
	code := strings.TrimSpace(data.Code)

	if email == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email and code are required",
			"requestID": requestID,
		})
		return
	}

	outcome, err := d.Verifier.Verify(c.Request.Context(), email, code)
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
			"outcome":   outcome.String(),
			"requestID": requestID,
		})
		return
	case verification.Timeout:
		c.JSON(http.StatusRequestTimeout, gin.H{
			"error":     "Verification code expired, please request a new one",
			"outcome":   outcome.String(),
			"requestID": requestID,
		})
		return
	}

	// The address may belong to nobody yet, e.g. when it is checked before signup
	res := d.DB.WithContext(c.Request.Context()).
		Model(&model.User{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"verified":   true,
			"expires_at": nil,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to validate user",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mark user as verified", zap.Error(res.Error), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":      outcome.String(),
		"userVerified": res.RowsAffected > 0,
	})
}
