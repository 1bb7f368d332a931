package friend

import (
	"context"
	"fmt"
	"net/http"

	"tdls-api/internal"
	"tdls-api/internal/friends"
	"tdls-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// entry is a relationship row together with the other party's public profile
type entry struct {
	model.Friendship
	User *model.Profile `json:"user"`
}

func hydrate(ctx context.Context, db *gorm.DB, userID string, rows []model.Friendship) ([]entry, error) {
	out := make([]entry, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Other(userID)
	}

	var users []model.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load profiles, %w", err)
	}

	profiles := make(map[string]model.Profile, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Profile()
	}

	for i, r := range rows {
		out[i] = entry{Friendship: r}
		if p, ok := profiles[r.Other(userID)]; ok {
			out[i].User = &p
		}
	}

	return out, nil
}

func respondList(c *gin.Context, d *internal.Deps, rows []model.Friendship, err error) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if err != nil {
		abortWithEngineError(c, err, requestID)
		return
	}

	entries, err := hydrate(c.Request.Context(), d.DB, userID, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hydrate friend list", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary	Accepted friends of the logged in user
// @Tags		friends
// @Produce	json
// @Success	200	{array}	entry
// @Router		/friends [get]
func FriendList(c *gin.Context, d *internal.Deps) {
	rows, err := d.Friends.ListFriends(c.Request.Context(), c.MustGet("userID").(string))
	respondList(c, d, rows, err)
}

// @Summary	Pending friend requests
// @Tags		friends
// @Produce	json
// @Param		direction	query	string	false	"incoming (default) or outgoing"
// @Success	200	{array}	entry
// @Router		/friends/requests [get]
func FriendRequests(c *gin.Context, d *internal.Deps) {
	dir, err := friends.ParseDirection(c.DefaultQuery("direction", "incoming"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "direction must be incoming or outgoing",
			"requestID": c.MustGet("requestID").(string),
		})
		return
	}

	rows, err := d.Friends.ListRequests(c.Request.Context(), c.MustGet("userID").(string), dir)
	respondList(c, d, rows, err)
}

// @Summary	Blocked relationships of the logged in user
// @Tags		friends
// @Produce	json
// @Success	200	{array}	entry
// @Router		/friends/blocked [get]
func FriendBlocked(c *gin.Context, d *internal.Deps) {
	rows, err := d.Friends.ListBlocked(c.Request.Context(), c.MustGet("userID").(string))
	respondList(c, d, rows, err)
}
