package model

// EquipmentStatus is the operational state of a piece of equipment.
type EquipmentStatus string

const (
	EquipmentOperational    EquipmentStatus = "operational"
	EquipmentUnderRepair    EquipmentStatus = "under-repair"
	EquipmentObsolete       EquipmentStatus = "obsolete"
	EquipmentDecommissioned EquipmentStatus = "decommissioned"
)

// Valid reports whether s is a known equipment status.
func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentOperational, EquipmentUnderRepair, EquipmentObsolete, EquipmentDecommissioned:
		return true
	}
	return false
}

// Equipment is an inventoried IT asset. The engine only ever reads it.
type Equipment struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id" yaml:"id" mapstructure:"id"`

	// InventoryCode is the university inventory tag (e.g. "INV-0042").
	InventoryCode string `json:"inventory_code" yaml:"inventory_code" mapstructure:"inventory_code"`

	// Name is the human-readable label.
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Status is the operational status.
	Status EquipmentStatus `json:"status" yaml:"status" mapstructure:"status"`

	// PurchaseDate is when the equipment was bought, if known.
	PurchaseDate *Date `json:"purchase_date,omitempty" yaml:"purchase_date" mapstructure:"purchase_date"`

	// WarrantyEnd is the last day covered by warranty, if any.
	WarrantyEnd *Date `json:"warranty_end,omitempty" yaml:"warranty_end" mapstructure:"warranty_end"`
}

// EquipmentSummary is the denormalized slice of Equipment attached to
// maintenance tasks and notifications on read.
type EquipmentSummary struct {
	InventoryCode string `json:"inventory_code"`
	Name          string `json:"name"`
}
