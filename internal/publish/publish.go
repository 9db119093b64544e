// Package publish fans created notifications out to downstream consumers.
package publish

import (
	"context"

	"github.com/nhle/equipment-alerts/internal/model"
)

// Publisher delivers a newly created notification. Delivery failures are
// reported to the caller; the notification itself is already stored.
type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
	Close() error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Publish(context.Context, model.Notification) error { return nil }

func (Nop) Close() error { return nil }
