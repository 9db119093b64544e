package engine

import (
	"context"
	"fmt"

	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/store"
)

// ListLimit caps the number of notifications returned by ListNotifications.
const ListLimit = 50

// ListNotifications returns up to ListLimit notifications with the given
// read flag, newest first.
func (e *Engine) ListNotifications(ctx context.Context, read bool) ([]model.Notification, error) {
	notifications, err := e.store.GetNotifications(ctx, store.NotificationFilter{
		Read:  &read,
		Limit: ListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a notification as read at the current time. It returns
// store.ErrNotFound when id does not exist.
func (e *Engine) MarkRead(ctx context.Context, id int64) error {
	if err := e.store.MarkNotificationRead(ctx, id, e.now().UTC()); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	e.log.Debug().Int64("notification_id", id).Msg("notification marked read")
	return nil
}

// Delete removes a notification. It returns store.ErrNotFound when id does
// not exist.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	if err := e.store.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	e.log.Debug().Int64("notification_id", id).Msg("notification deleted")
	return nil
}
