package testutil

import (
	"context"
	"testing"

	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/store"
)

// NewTestStore creates an in-memory SQLStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// AddEquipment inserts e into s and returns it with its stored id.
func AddEquipment(t *testing.T, s store.Store, e model.Equipment) model.Equipment {
	t.Helper()

	if err := s.CreateEquipment(context.Background(), &e); err != nil {
		t.Fatalf("adding equipment %s: %v", e.InventoryCode, err)
	}
	return e
}

// AddMaintenance inserts m into s and returns it with its stored id.
func AddMaintenance(t *testing.T, s store.Store, m model.MaintenanceTask) model.MaintenanceTask {
	t.Helper()

	if err := s.CreateMaintenanceTask(context.Background(), &m); err != nil {
		t.Fatalf("adding maintenance task for equipment %d: %v", m.EquipmentID, err)
	}
	return m
}

// DatePtr returns a pointer to d, for optional date fields.
func DatePtr(d model.Date) *model.Date {
	return &d
}
