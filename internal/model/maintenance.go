package model

// MaintenanceKind distinguishes planned from reactive work.
type MaintenanceKind string

const (
	MaintenancePreventive MaintenanceKind = "preventive"
	MaintenanceCorrective MaintenanceKind = "corrective"
)

// MaintenanceStatus is the lifecycle state of a maintenance task.
type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in-progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// MaintenanceTask is a planned or reactive intervention on one piece of equipment.
type MaintenanceTask struct {
	ID            int64             `json:"id" yaml:"id" mapstructure:"id"`
	EquipmentID   int64             `json:"equipment_id" yaml:"equipment_id" mapstructure:"equipment_id"`
	Kind          MaintenanceKind   `json:"kind" yaml:"kind" mapstructure:"kind"`
	ScheduledDate Date              `json:"scheduled_date" yaml:"scheduled_date" mapstructure:"scheduled_date"`
	Status        MaintenanceStatus `json:"status" yaml:"status" mapstructure:"status"`

	// Equipment is populated by reads that join the equipment table.
	Equipment *EquipmentSummary `json:"equipment,omitempty" yaml:"-" mapstructure:"-"`
}

// EquipmentName returns the joined equipment name, or a placeholder when the
// task references equipment that no longer exists.
func (t MaintenanceTask) EquipmentName() string {
	if t.Equipment == nil || t.Equipment.Name == "" {
		return "unknown equipment"
	}
	return t.Equipment.Name
}
