package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidStatus = errors.New("invalid friendship status")

// FriendStatus is the state of a directed friend request
type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
	FriendRejected FriendStatus = "rejected"
	FriendBlocked  FriendStatus = "blocked"
	FriendCanceled FriendStatus = "canceled"
)

var friendStatuses = []FriendStatus{FriendPending, FriendAccepted, FriendRejected, FriendBlocked, FriendCanceled}

// ParseFriendStatus converts a raw string into a FriendStatus
func ParseFriendStatus(s string) (FriendStatus, error) {
	for _, st := range friendStatuses {
		if string(st) == s {
			return st, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s FriendStatus) Valid() bool {
	_, err := ParseFriendStatus(string(s))
	return err == nil
}

// Value implements the driver.Valuer interface so unknown statuses never
// reach the database.
func (s FriendStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}

	return string(s), nil
}

// Scan implements the sql.Scanner interface.
func (s *FriendStatus) Scan(value any) error {
	var raw string

	switch t := value.(type) {
	case string:
		raw = t
	case []byte:
		raw = string(t)
	default:
		return fmt.Errorf("failed to scan FriendStatus, %v", value)
	}

	st, err := ParseFriendStatus(raw)
	if err != nil {
		return err
	}

	*s = st
	return nil
}

// Friendship is a directed relationship row. The reverse pair is a
// different row.
type Friendship struct {
	RequesterID string       `gorm:"primaryKey;type:varchar(36)" json:"requester_id"`
	RecipientID string       `gorm:"primaryKey;type:varchar(36);index" json:"recipient_id"`
	Status      FriendStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"` // Not touched on status changes
}

// Other returns the ID of the party that isn't userID
func (f *Friendship) Other(userID string) string {
	if f.RequesterID == userID {
		return f.RecipientID
	}

	return f.RequesterID
}
