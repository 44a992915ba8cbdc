// Package store defines the persistence interface for relay events, kept
// small so alternative backends can implement it.
package store

import (
	"errors"
	"io"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/filter"
	"roost.dev/pkg/utils/context"
)

// ErrDuplicate is returned by SaveEvent when the id is already stored.
var ErrDuplicate = errors.New("event already stored")

// ErrStale is returned by SaveEvent when a replaceable event is older than
// the stored one for the same identity key.
var ErrStale = errors.New("event is older than stored replaceable")

// I is the persistence layer for relay events.
type I interface {
	io.Closer
	// Path returns the directory of the database.
	Path() (s string)
	// SaveEvent persists an event, enforcing replaceable-event semantics
	// in the same transaction. Returns ErrDuplicate or ErrStale as
	// applicable.
	SaveEvent(c context.T, ev *event.E) (err error)
	// HasEvent reports whether the id is stored.
	HasEvent(c context.T, id []byte) (has bool, err error)
	// QueryEvents returns events matching the filter disjunction in
	// reverse chronological order, deduplicated by id, each filter capped
	// by min(filter limit, globalLimit). Expired events are skipped.
	QueryEvents(c context.T, fs filter.S, globalLimit uint) (
		evs event.S, err error,
	)
	// CountEvents counts matches with the same semantics minus
	// ordering and limit.
	CountEvents(c context.T, fs filter.S) (n int64, err error)
	// DeleteByAuthor removes the identified events where the author
	// matches, reporting how many were removed.
	DeleteByAuthor(c context.T, author []byte, ids [][]byte) (
		n int, err error,
	)
	// DeleteExpired removes events whose expiration tag has passed.
	DeleteExpired()
	// TotalEvents reports the number of stored events.
	TotalEvents() (n int64, err error)
	// Sync flushes buffers to disk.
	Sync() (err error)
}
