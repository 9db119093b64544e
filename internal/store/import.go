package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/equipment-alerts/internal/model"
)

// Import inserts equipment and then maintenance tasks in one transaction.
// Either every record is stored or none is. IDs assigned by the database are
// written back into the slices.
func (s *SQLStore) Import(
	ctx context.Context,
	equipment []model.Equipment,
	tasks []model.MaintenanceTask,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable("starting import", err)
	}
	defer tx.Rollback()

	var explicitEquipment, explicitTasks bool
	for i := range equipment {
		explicitEquipment = explicitEquipment || equipment[i].ID != 0
		if err := s.insertEquipment(ctx, tx, &equipment[i]); err != nil {
			return err
		}
	}
	for i := range tasks {
		explicitTasks = explicitTasks || tasks[i].ID != 0
		if err := s.insertMaintenanceTask(ctx, tx, &tasks[i]); err != nil {
			return err
		}
	}

	if err := s.syncExplicitID(ctx, tx, "equipment", explicitEquipment); err != nil {
		return err
	}
	if err := s.syncExplicitID(ctx, tx, "maintenance_tasks", explicitTasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing import", err)
	}
	return nil
}

// syncExplicitID moves a Postgres serial sequence past rows inserted with
// caller-chosen ids, so later auto-assigned ids do not collide with them.
// SQLite tracks explicit ids in its own sequence table.
func (s *SQLStore) syncExplicitID(ctx context.Context, q sqlx.ExecerContext, table string, explicit bool) error {
	if !explicit || s.dialect != model.DriverPostgres {
		return nil
	}

	query := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), (SELECT MAX(id) FROM %[1]s))", table)
	if _, err := q.ExecContext(ctx, query); err != nil {
		return unavailable("advancing "+table+" id sequence", err)
	}
	return nil
}
