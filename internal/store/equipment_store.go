package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/equipment-alerts/internal/model"
)

type equipmentRow struct {
	ID            int64          `db:"id"`
	InventoryCode string         `db:"inventory_code"`
	Name          string         `db:"name"`
	Status        string         `db:"status"`
	PurchaseDate  sql.NullString `db:"purchase_date"`
	WarrantyEnd   sql.NullString `db:"warranty_end"`
}

func (r equipmentRow) toModel() model.Equipment {
	return model.Equipment{
		ID:            r.ID,
		InventoryCode: r.InventoryCode,
		Name:          r.Name,
		Status:        model.EquipmentStatus(r.Status),
		PurchaseDate:  nullDate(r.PurchaseDate),
		WarrantyEnd:   nullDate(r.WarrantyEnd),
	}
}

// CreateEquipment inserts a piece of equipment. A zero ID lets the database
// assign one; either way e.ID holds the stored id afterwards.
func (s *SQLStore) CreateEquipment(ctx context.Context, e *model.Equipment) error {
	explicit := e.ID != 0
	if err := s.insertEquipment(ctx, s.db, e); err != nil {
		return err
	}
	return s.syncExplicitID(ctx, s.db, "equipment", explicit)
}

func (s *SQLStore) insertEquipment(ctx context.Context, q sqlx.ExtContext, e *model.Equipment) error {
	explicit := e.ID != 0
	if strings.TrimSpace(e.InventoryCode) == "" {
		return fmt.Errorf("equipment inventory code must not be empty")
	}
	if e.Status == "" {
		e.Status = model.EquipmentOperational
	}

	columns := "inventory_code, name, status, purchase_date, warranty_end"
	placeholders := "?, ?, ?, ?, ?"
	args := []interface{}{e.InventoryCode, e.Name, string(e.Status), dateArg(e.PurchaseDate), dateArg(e.WarrantyEnd)}
	if explicit {
		columns = "id, " + columns
		placeholders = "?, " + placeholders
		args = append([]interface{}{e.ID}, args...)
	}

	query := fmt.Sprintf("INSERT INTO equipment (%s) VALUES (%s) RETURNING id", columns, placeholders)
	if err := sqlx.GetContext(ctx, q, &e.ID, s.rebind(query), args...); err != nil {
		return fmt.Errorf("creating equipment %s: %w", e.InventoryCode, err)
	}
	return nil
}

// GetEquipment retrieves equipment matching the filter, ordered by id.
func (s *SQLStore) GetEquipment(
	ctx context.Context,
	filter EquipmentFilter,
) ([]model.Equipment, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.WarrantyEndFrom != nil || filter.WarrantyEndTo != nil {
		conditions = append(conditions, "warranty_end IS NOT NULL")
	}
	if filter.WarrantyEndFrom != nil {
		conditions = append(conditions, "warranty_end >= ?")
		args = append(args, string(*filter.WarrantyEndFrom))
	}
	if filter.WarrantyEndTo != nil {
		conditions = append(conditions, "warranty_end <= ?")
		args = append(args, string(*filter.WarrantyEndTo))
	}
	if filter.PurchasedBefore != nil {
		conditions = append(conditions, "purchase_date IS NOT NULL", "purchase_date < ?")
		args = append(args, string(*filter.PurchasedBefore))
	}

	query := "SELECT id, inventory_code, name, status, purchase_date, warranty_end FROM equipment"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	var rows []equipmentRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, unavailable("querying equipment", err)
	}

	equipment := make([]model.Equipment, 0, len(rows))
	for _, r := range rows {
		equipment = append(equipment, r.toModel())
	}
	return equipment, nil
}

func nullDate(ns sql.NullString) *model.Date {
	if !ns.Valid {
		return nil
	}
	d := model.Date(ns.String)
	return &d
}

func dateArg(d *model.Date) interface{} {
	if d == nil {
		return nil
	}
	return string(*d)
}
