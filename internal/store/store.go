package store

import (
	"context"
	"time"

	"github.com/nhle/equipment-alerts/internal/model"
)

// EquipmentFilter narrows equipment reads. Date range filters imply the
// column is non-null.
type EquipmentFilter struct {
	Status          *model.EquipmentStatus
	WarrantyEndFrom *model.Date // inclusive
	WarrantyEndTo   *model.Date // inclusive
	PurchasedBefore *model.Date // exclusive
}

// MaintenanceFilter narrows maintenance task reads.
type MaintenanceFilter struct {
	Status          *model.MaintenanceStatus
	ScheduledFrom   *model.Date // inclusive
	ScheduledTo     *model.Date // inclusive
	ScheduledBefore *model.Date // exclusive
}

// NotificationFilter controls filtering and pagination for notification queries.
type NotificationFilter struct {
	Read  *bool // nil for all
	Limit int   // 0 for unlimited
}

// Store defines the persistence interface the rule engine works against.
// Equipment and maintenance tasks are owned by other services; the engine
// reads them and writes only notifications.
type Store interface {
	// === Equipment ===

	CreateEquipment(ctx context.Context, e *model.Equipment) error
	GetEquipment(ctx context.Context, filter EquipmentFilter) ([]model.Equipment, error)

	// === Maintenance ===

	CreateMaintenanceTask(ctx context.Context, t *model.MaintenanceTask) error
	GetMaintenanceTasks(ctx context.Context, filter MaintenanceFilter) ([]model.MaintenanceTask, error)

	// Import stores equipment and maintenance tasks atomically.
	Import(ctx context.Context, equipment []model.Equipment, tasks []model.MaintenanceTask) error

	// === Notifications ===

	// HasOpenNotification reports whether an unread notification exists for
	// the given kind and subject.
	HasOpenNotification(ctx context.Context, kind model.NotificationKind, subjectID int64) (bool, error)

	// CreateNotification inserts n unless an unread notification with the
	// same kind and subject already exists. It reports whether a row was
	// inserted and, if so, sets n.ID.
	CreateNotification(ctx context.Context, n *model.Notification) (bool, error)

	GetNotifications(ctx context.Context, filter NotificationFilter) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64, at time.Time) error
	DeleteNotification(ctx context.Context, id int64) error

	Close() error
}
