// Package storage defines the DeliveryLog interface: a record of every
// outbound email attempt.
//
// The notifier depends only on this interface, so the log can be backed
// by SQLite, disabled entirely (Nop), or replaced by a fake in tests
// without touching the dispatch code.
package storage

import (
	"context"
	"errors"

	"github.com/DAN6256/EmailServer/internal/types"
)

// ErrNotFound is returned by GetDeliveryByID when no row matches.
var ErrNotFound = errors.New("delivery not found")

// ErrDisabled is returned by the read methods of a disabled log.
var ErrDisabled = errors.New("delivery log is disabled")

// DeliveryLog is the persistence contract for delivery attempts.
type DeliveryLog interface {
	// RecordDelivery inserts an attempt and returns its generated ID.
	RecordDelivery(ctx context.Context, d types.Delivery) (int64, error)

	// GetDeliveryByID returns ErrNotFound when the id does not exist.
	GetDeliveryByID(ctx context.Context, id int64) (types.Delivery, error)

	// GetDeliveries returns the most recent attempts, newest first.
	// Returns an empty slice (not nil) when there are none.
	GetDeliveries(ctx context.Context, limit int) ([]types.Delivery, error)
}

// Nop is a DeliveryLog that stores nothing. Writes succeed silently;
// reads report ErrDisabled.
type Nop struct{}

func (Nop) RecordDelivery(context.Context, types.Delivery) (int64, error) { return 0, nil }

func (Nop) GetDeliveryByID(context.Context, int64) (types.Delivery, error) {
	return types.Delivery{}, ErrDisabled
}

func (Nop) GetDeliveries(context.Context, int) ([]types.Delivery, error) {
	return nil, ErrDisabled
}
