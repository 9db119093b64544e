package model

import "time"

// NotificationKind tags which rule produced a notification.
type NotificationKind string

const (
	KindMaintenanceUpcoming NotificationKind = "maintenance-upcoming"
	KindWarrantyExpiring    NotificationKind = "warranty-expiring"
	KindObsolescence        NotificationKind = "obsolescence"
	KindMaintenanceOverdue  NotificationKind = "maintenance-overdue"
)

// AboutMaintenance reports whether notifications of this kind are keyed by
// maintenance task rather than by equipment.
func (k NotificationKind) AboutMaintenance() bool {
	return k == KindMaintenanceUpcoming || k == KindMaintenanceOverdue
}

// Priority ranks how urgently a notification needs attention.
type Priority string

const (
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Notification is an alert produced by the rule engine about a piece of
// equipment or one of its maintenance tasks.
type Notification struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// Kind identifies the rule that produced this notification.
	Kind NotificationKind `json:"kind"`

	// Title is a short headline.
	Title string `json:"title"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Priority is medium or high.
	Priority Priority `json:"priority"`

	// EquipmentID links the notification to the equipment it is about.
	EquipmentID *int64 `json:"equipment_id,omitempty"`

	// MaintenanceID links the notification to a maintenance task.
	MaintenanceID *int64 `json:"maintenance_id,omitempty"`

	// Read indicates whether someone has acknowledged the notification.
	Read bool `json:"read"`

	// CreatedAt is when the engine generated this notification.
	CreatedAt time.Time `json:"created_at"`

	// ReadAt is set when Read transitions to true.
	ReadAt *time.Time `json:"read_at,omitempty"`

	// Equipment is populated by list queries.
	Equipment *EquipmentSummary `json:"equipment,omitempty"`
}

// SubjectID returns the id the notification is deduplicated on: the
// maintenance task for maintenance kinds, the equipment otherwise.
func (n Notification) SubjectID() int64 {
	if n.Kind.AboutMaintenance() {
		if n.MaintenanceID != nil {
			return *n.MaintenanceID
		}
		return 0
	}
	if n.EquipmentID != nil {
		return *n.EquipmentID
	}
	return 0
}
