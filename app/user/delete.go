package user

import (
	"net/http"

	"tdls-api/internal"
	"tdls-api/internal/service"
	"tdls-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type deleteBody struct {
	Password string `json:"password" form:"password"`
}

// @Summary	Delete the logged in account
// @Description	Requires the current password. Friendships and the avatar are deleted too
// @Tags		users
// @Accept		json
// @Param		body	body	deleteBody	true	"Current password"
// @Success	204
// @Failure	401	{object}	map[string]string
// @Router		/users/me [delete]
func UserDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := middleware.CurrentUser(c)

	var data deleteBody
	if err := c.ShouldBind(&data); err != nil || data.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Password is required to delete the account",
			"requestID": requestID,
		})
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid credentials",
			"requestID": requestID,
		})
		return
	}

	if err := service.DeleteAccount(c.Request.Context(), d.DB, d.Storage, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete account", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", viper.GetBool("host.ssl.enabled"), true)
	c.Status(http.StatusNoContent)
}
