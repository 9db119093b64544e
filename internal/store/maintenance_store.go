package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/equipment-alerts/internal/model"
)

type maintenanceRow struct {
	ID            int64          `db:"id"`
	EquipmentID   int64          `db:"equipment_id"`
	Kind          string         `db:"kind"`
	ScheduledDate string         `db:"scheduled_date"`
	Status        string         `db:"status"`
	InventoryCode sql.NullString `db:"inventory_code"`
	EquipmentName sql.NullString `db:"equipment_name"`
}

func (r maintenanceRow) toModel() model.MaintenanceTask {
	t := model.MaintenanceTask{
		ID:            r.ID,
		EquipmentID:   r.EquipmentID,
		Kind:          model.MaintenanceKind(r.Kind),
		ScheduledDate: model.Date(r.ScheduledDate),
		Status:        model.MaintenanceStatus(r.Status),
	}
	if r.InventoryCode.Valid {
		t.Equipment = &model.EquipmentSummary{
			InventoryCode: r.InventoryCode.String,
			Name:          r.EquipmentName.String,
		}
	}
	return t
}

// CreateMaintenanceTask inserts a maintenance task. A zero ID lets the
// database assign one.
func (s *SQLStore) CreateMaintenanceTask(ctx context.Context, t *model.MaintenanceTask) error {
	explicit := t.ID != 0
	if err := s.insertMaintenanceTask(ctx, s.db, t); err != nil {
		return err
	}
	return s.syncExplicitID(ctx, s.db, "maintenance_tasks", explicit)
}

func (s *SQLStore) insertMaintenanceTask(ctx context.Context, q sqlx.ExtContext, t *model.MaintenanceTask) error {
	if t.Status == "" {
		t.Status = model.MaintenanceScheduled
	}

	columns := "equipment_id, kind, scheduled_date, status"
	placeholders := "?, ?, ?, ?"
	args := []interface{}{t.EquipmentID, string(t.Kind), string(t.ScheduledDate), string(t.Status)}
	if t.ID != 0 {
		columns = "id, " + columns
		placeholders = "?, " + placeholders
		args = append([]interface{}{t.ID}, args...)
	}

	query := fmt.Sprintf("INSERT INTO maintenance_tasks (%s) VALUES (%s) RETURNING id", columns, placeholders)
	if err := sqlx.GetContext(ctx, q, &t.ID, s.rebind(query), args...); err != nil {
		return fmt.Errorf("creating maintenance task for equipment %d: %w", t.EquipmentID, err)
	}
	return nil
}

// GetMaintenanceTasks retrieves maintenance tasks matching the filter,
// joined with a summary of their equipment, ordered by scheduled date.
func (s *SQLStore) GetMaintenanceTasks(
	ctx context.Context,
	filter MaintenanceFilter,
) ([]model.MaintenanceTask, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "m.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.ScheduledFrom != nil {
		conditions = append(conditions, "m.scheduled_date >= ?")
		args = append(args, string(*filter.ScheduledFrom))
	}
	if filter.ScheduledTo != nil {
		conditions = append(conditions, "m.scheduled_date <= ?")
		args = append(args, string(*filter.ScheduledTo))
	}
	if filter.ScheduledBefore != nil {
		conditions = append(conditions, "m.scheduled_date < ?")
		args = append(args, string(*filter.ScheduledBefore))
	}

	query := `
		SELECT m.id, m.equipment_id, m.kind, m.scheduled_date, m.status,
			e.inventory_code AS inventory_code, e.name AS equipment_name
		FROM maintenance_tasks m
		LEFT JOIN equipment e ON e.id = m.equipment_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY m.scheduled_date, m.id"

	var rows []maintenanceRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, unavailable("querying maintenance tasks", err)
	}

	tasks := make([]model.MaintenanceTask, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toModel())
	}
	return tasks, nil
}
