package friends

import (
	"errors"
	"fmt"

	"tdls-api/internal/model"
)

var ErrIllegalTransition = errors.New("illegal friendship status transition")

// allowed lists every status change the engine accepts. Statuses not used as
// a key are final.
var allowed = map[model.FriendStatus][]model.FriendStatus{
	model.FriendPending:  {model.FriendAccepted, model.FriendRejected, model.FriendCanceled, model.FriendBlocked},
	model.FriendAccepted: {model.FriendBlocked},
}

// TransitionError is returned when a status change isn't in the table
type TransitionError struct {
	From model.FriendStatus
	To   model.FriendStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("can't change friendship status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// CanTransition reports whether a row in status from may be moved to to
func CanTransition(from, to model.FriendStatus) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}

	return false
}
