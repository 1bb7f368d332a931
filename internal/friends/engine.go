// Package friends tracks directed friend requests between users and answers
// status based queries over them.
package friends

import (
	"context"
	"errors"
	"fmt"

	"tdls-api/internal/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("friendship not found")
	ErrDuplicate   = errors.New("friendship already exists")
	ErrStaleStatus = errors.New("friendship status changed concurrently")
)

// Direction selects which side of a pending request the user is on
type Direction int

const (
	// Outgoing requests were sent by the user
	Outgoing Direction = iota
	// Incoming requests were sent to the user
	Incoming
)

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "outgoing":
		return Outgoing, nil
	case "incoming":
		return Incoming, nil
	default:
		return 0, fmt.Errorf("invalid direction %q", s)
	}
}

type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Request records a pending request from requesterID to recipientID. An
// existing row for the same ordered pair makes the insert fail with
// ErrDuplicate.
func (e *Engine) Request(ctx context.Context, requesterID, recipientID string) error {
	err := e.db.WithContext(ctx).Create(&model.Friendship{
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      model.FriendPending,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}

		return fmt.Errorf("failed to create friend request, %w", err)
	}

	return nil
}

// ChangeStatus moves the row of the exact ordered pair to status to.
// A missing row returns ErrNotFound and nothing is created.
func (e *Engine) ChangeStatus(ctx context.Context, requesterID, recipientID string, to model.FriendStatus) (*model.Friendship, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, string(to))
	}

	var f model.Friendship

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("requester_id = ? AND recipient_id = ?", requesterID, recipientID).
			First(&f).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to load friendship, %w", err)
		}

		if !CanTransition(f.Status, to) {
			return &TransitionError{From: f.Status, To: to}
		}

		// Only update if nobody changed the row since it was read
		r := tx.Model(&model.Friendship{}).
			Where("requester_id = ? AND recipient_id = ? AND status = ?", requesterID, recipientID, f.Status).
			Update("status", to)
		if r.Error != nil {
			return fmt.Errorf("failed to update friendship, %w", r.Error)
		}

		if r.RowsAffected == 0 {
			return ErrStaleStatus
		}

		f.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// Find returns the row of the exact ordered pair
func (e *Engine) Find(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	var f model.Friendship

	err := e.db.WithContext(ctx).
		Where("requester_id = ? AND recipient_id = ?", requesterID, recipientID).
		First(&f).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to load friendship, %w", err)
	}

	return &f, nil
}

// IsBlocked reports whether a blocked row exists between a and b in either
// direction
func (e *Engine) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	var n int64

	err := e.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("status = ?", model.FriendBlocked).
		Where(e.db.
			Where("requester_id = ? AND recipient_id = ?", a, b).
			Or("requester_id = ? AND recipient_id = ?", b, a)).
		Count(&n).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check block, %w", err)
	}

	return n > 0, nil
}

// ListFriends returns accepted rows where userID is on either side
func (e *Engine) ListFriends(ctx context.Context, userID string) ([]model.Friendship, error) {
	return e.listEitherSide(ctx, userID, model.FriendAccepted)
}

// ListBlocked returns blocked rows where userID is on either side
func (e *Engine) ListBlocked(ctx context.Context, userID string) ([]model.Friendship, error) {
	return e.listEitherSide(ctx, userID, model.FriendBlocked)
}

// ListRequests returns pending rows sent by userID (Outgoing) or sent to
// userID (Incoming)
func (e *Engine) ListRequests(ctx context.Context, userID string, d Direction) ([]model.Friendship, error) {
	column := "requester_id"
	if d == Incoming {
		column = "recipient_id"
	}

	var rows []model.Friendship

	err := e.db.WithContext(ctx).
		Where(column+" = ? AND status = ?", userID, model.FriendPending).
		Order("created_at desc").
		Find(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests, %w", err)
	}

	return rows, nil
}

func (e *Engine) listEitherSide(ctx context.Context, userID string, status model.FriendStatus) ([]model.Friendship, error) {
	var rows []model.Friendship

	err := e.db.WithContext(ctx).
		Where("status = ?", status).
		Where(e.db.Where("requester_id = ?", userID).Or("recipient_id = ?", userID)).
		Order("created_at desc").
		Find(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s friendships, %w", status, err)
	}

	return rows, nil
}

// DeleteAllFor removes every row touching userID. Used when the account
// itself is deleted, tx lets the caller delete both in one transaction.
func DeleteAllFor(tx *gorm.DB, userID string) error {
	err := tx.
		Where("requester_id = ? OR recipient_id = ?", userID, userID).
		Delete(&model.Friendship{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to delete friendships, %w", err)
	}

	return nil
}
