package friend

import (
	"errors"
	"net/http"

	"tdls-api/internal"
	"tdls-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @Summary	Send a friend request
// @Tags		friends
// @Produce	json
// @Param		id	path		string	true	"Recipient uuid"
// @Success	201	{object}	map[string]string
// @Failure	400	{object}	map[string]string
// @Failure	403	{object}	map[string]string
// @Failure	404	{object}	map[string]string
// @Failure	409	{object}	map[string]string
// @Router		/friends/{id} [post]
func FriendRequest(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	recipientID := c.Param("id")

	if recipientID == userID {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "You can't send a friend request to yourself",
			"requestID": requestID,
		})
		return
	}

	var recipient model.User
	err := d.DB.WithContext(c.Request.Context()).Where("id = ?", recipientID).Select("id").First(&recipient).Error
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

		zap.L().Error("Failed to check if recipient exists", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Neither side can open a new request once one of them blocked the other
	blocked, err := d.Friends.IsBlocked(c.Request.Context(), userID, recipientID)
	if err != nil {
		abortWithEngineError(c, err, requestID)
		return
	}

	if blocked {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "You can't send a friend request to this user",
			"requestID": requestID,
		})
		return
	}

	if err := d.Friends.Request(c.Request.Context(), userID, recipientID); err != nil {
		abortWithEngineError(c, err, requestID)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"requester_id": userID,
		"recipient_id": recipientID,
		"status":       model.FriendPending,
	})
}
