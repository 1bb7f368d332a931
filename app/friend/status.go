package friend

import (
	"errors"
	"net/http"

	"tdls-api/internal"
	"tdls-api/internal/friends"
	"tdls-api/internal/model"

	"github.com/gin-gonic/gin"
)

// respondTo is the side of the request the caller has to be on
type respondTo int

const (
	asRecipient respondTo = iota
	asRequester
)

func changeStatus(c *gin.Context, d *internal.Deps, side respondTo, to model.FriendStatus) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	otherID := c.Param("id")

	requester, recipient := otherID, userID
	if side == asRequester {
		requester, recipient = userID, otherID
	}

	f, err := d.Friends.ChangeStatus(c.Request.Context(), requester, recipient, to)
	if err != nil {
		abortWithEngineError(c, err, requestID)
		return
	}

	c.JSON(http.StatusOK, f)
}

// @Summary	Accept a friend request sent by id
// @Tags		friends
// @Produce	json
// @Param		id	path		string	true	"Requester uuid"
// @Success	200	{object}	model.Friendship
// @Failure	404	{object}	map[string]string
// @Failure	409	{object}	map[string]string
// @Router		/friends/{id}/accept [post]
func FriendAccept(c *gin.Context, d *internal.Deps) {
	changeStatus(c, d, asRecipient, model.FriendAccepted)
}

// @Summary	Reject a friend request sent by id
// @Tags		friends
// @Produce	json
// @Param		id	path		string	true	"Requester uuid"
// @Success	200	{object}	model.Friendship
// @Router		/friends/{id}/reject [post]
func FriendReject(c *gin.Context, d *internal.Deps) {
	changeStatus(c, d, asRecipient, model.FriendRejected)
}

// @Summary	Withdraw a friend request sent to id
// @Tags		friends
// @Produce	json
// @Param		id	path		string	true	"Recipient uuid"
// @Success	200	{object}	model.Friendship
// @Router		/friends/{id}/cancel [post]
func FriendCancel(c *gin.Context, d *internal.Deps) {
	changeStatus(c, d, asRequester, model.FriendCanceled)
}

// @Summary	Block id
// @Description	Works on a pending or accepted relationship in either direction.
// @Description	The caller's own row is tried first, then the reverse one
// @Tags		friends
// @Produce	json
// @Param		id	path		string	true	"User uuid"
// @Success	200	{object}	model.Friendship
// @Router		/friends/{id}/block [post]
func FriendBlock(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	otherID := c.Param("id")
	ctx := c.Request.Context()

	// The caller's own row may be missing or already final (canceled, rejected)
	// while the reverse row is still live
	f, err := d.Friends.ChangeStatus(ctx, userID, otherID, model.FriendBlocked)
	if errors.Is(err, friends.ErrNotFound) || errors.Is(err, friends.ErrIllegalTransition) {
		rf, rerr := d.Friends.ChangeStatus(ctx, otherID, userID, model.FriendBlocked)

		// A missing reverse row says nothing new, keep the first error
		if rerr == nil || !errors.Is(rerr, friends.ErrNotFound) {
			f, err = rf, rerr
		}
	}
	if err != nil {
		abortWithEngineError(c, err, requestID)
		return
	}

	c.JSON(http.StatusOK, f)
}
