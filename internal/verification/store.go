// Package verification issues and checks short-lived numeric codes bound to
// an email address.
package verification

import (
	"context"
	"errors"
	"time"
)

var ErrNoEntry = errors.New("no verification entry")

// Entry is the live code of one identifier
type Entry struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
	Attempts int       `json:"attempts"`
}

// UpdateFunc inspects the live entry of an identifier, nil when there is
// none. It may modify e. Returning keep writes e back with ttl, otherwise the
// entry is removed.
type UpdateFunc func(e *Entry) (keep bool, ttl time.Duration)

// Store keeps at most one Entry per identifier. Put overwrites, entries
// disappear on their own once ttl elapses. Update runs its read-modify-write
// atomically against concurrent Put and Update calls on the same identifier.
type Store interface {
	Get(ctx context.Context, id string) (*Entry, error)
	Put(ctx context.Context, id string, e Entry, ttl time.Duration) error
	Update(ctx context.Context, id string, fn UpdateFunc) error
	Delete(ctx context.Context, id string) error
	Close() error
}
