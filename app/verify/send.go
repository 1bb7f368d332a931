// Package verify serves the email verification code endpoints
package verify

import (
	"errors"
	"net/http"
	"strings"

	"tdls-api/internal"
	"tdls-api/internal/verification"
	"tdls-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sendBody struct {
	Email string `json:"email" form:"email"`
}

// @Summary	Email a verification code
// @Description	Any earlier code for the same address stops working
// @Tags		verify
// @Accept		json
// @Produce	json
// @Param		body	body		sendBody	true	"Address to verify"
// @Success	200		{object}	map[string]any
// @Failure	500		{object}	map[string]string
// @Router		/verify/send [post]
func SendCode(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data sendBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(data.Email))

	if err := validators.EmailValidator(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if _, err := d.Verifier.Issue(c.Request.Context(), email); err != nil {
		if errors.Is(err, verification.ErrTransport) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Failed to send verification email",
				"requestID": requestID,
			})

			zap.L().Error("Failed to send verification email", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue verification code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Verification code sent",
		"expiresIn": int(d.Verifier.Window().Seconds()),
	})
}
