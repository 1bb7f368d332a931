package user

import (
	"errors"
	"net/http"

	"tdls-api/internal"
	"tdls-api/internal/model"
	"tdls-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @Summary	Profile of the logged in user
// @Tags		users
// @Produce	json
// @Success	200	{object}	model.User
// @Router		/users/me [get]
func UserFetchMe(c *gin.Context, d *internal.Deps) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// @Summary	Public profile of a user
// @Tags		users
// @Produce	json
// @Param		id	path		string	true	"User uuid"
// @Success	200	{object}	model.Profile
// @Failure	404	{object}	map[string]string
// @Router		/users/{id} [get]
func UserFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var user model.User

	err := d.DB.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}
