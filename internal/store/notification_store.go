package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/equipment-alerts/internal/model"
)

type notificationRow struct {
	ID            int64          `db:"id"`
	Kind          string         `db:"kind"`
	Title         string         `db:"title"`
	Message       string         `db:"message"`
	Priority      string         `db:"priority"`
	EquipmentID   sql.NullInt64  `db:"equipment_id"`
	MaintenanceID sql.NullInt64  `db:"maintenance_id"`
	Read          int            `db:"read"`
	CreatedAt     string         `db:"created_at"`
	ReadAt        sql.NullString `db:"read_at"`
	InventoryCode sql.NullString `db:"inventory_code"`
	EquipmentName sql.NullString `db:"equipment_name"`
}

func (r notificationRow) toModel() (model.Notification, error) {
	n := model.Notification{
		ID:       r.ID,
		Kind:     model.NotificationKind(r.Kind),
		Title:    r.Title,
		Message:  r.Message,
		Priority: model.Priority(r.Priority),
		Read:     r.Read != 0,
	}
	if r.EquipmentID.Valid {
		id := r.EquipmentID.Int64
		n.EquipmentID = &id
	}
	if r.MaintenanceID.Valid {
		id := r.MaintenanceID.Int64
		n.MaintenanceID = &id
	}

	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return model.Notification{}, err
	}
	n.CreatedAt = createdAt

	if r.ReadAt.Valid {
		readAt, err := parseTimestamp(r.ReadAt.String)
		if err != nil {
			return model.Notification{}, err
		}
		n.ReadAt = &readAt
	}

	if r.InventoryCode.Valid {
		n.Equipment = &model.EquipmentSummary{
			InventoryCode: r.InventoryCode.String,
			Name:          r.EquipmentName.String,
		}
	}
	return n, nil
}

// HasOpenNotification reports whether an unread notification exists for
// the kind and subject.
func (s *SQLStore) HasOpenNotification(
	ctx context.Context,
	kind model.NotificationKind,
	subjectID int64,
) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.rebind(
		"SELECT COUNT(*) FROM notifications WHERE kind = ? AND subject_id = ? AND read = 0"),
		string(kind), subjectID,
	)
	if err != nil {
		return false, unavailable("checking open notification", err)
	}
	return count > 0, nil
}

// CreateNotification inserts n unless an unread notification with the same
// kind and subject exists. The partial unique index on (kind, subject_id)
// makes the check and the insert a single atomic statement.
func (s *SQLStore) CreateNotification(
	ctx context.Context,
	n *model.Notification,
) (bool, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	var equipmentID, maintenanceID interface{}
	if n.EquipmentID != nil {
		equipmentID = *n.EquipmentID
	}
	if n.MaintenanceID != nil {
		maintenanceID = *n.MaintenanceID
	}

	var id int64
	err := s.db.GetContext(ctx, &id, s.rebind(`
		INSERT INTO notifications (
			kind, subject_id, title, message, priority,
			equipment_id, maintenance_id, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT DO NOTHING
		RETURNING id`),
		string(n.Kind), n.SubjectID(), n.Title, n.Message, string(n.Priority),
		equipmentID, maintenanceID, formatTimestamp(n.CreatedAt),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("creating notification", err)
	}

	n.ID = id
	n.Read = false
	n.ReadAt = nil
	return true, nil
}

// GetNotifications retrieves notifications newest first, each joined with a
// summary of its related equipment.
func (s *SQLStore) GetNotifications(
	ctx context.Context,
	filter NotificationFilter,
) ([]model.Notification, error) {
	query := `
		SELECT n.id, n.kind, n.title, n.message, n.priority,
			n.equipment_id, n.maintenance_id, n.read, n.created_at, n.read_at,
			e.inventory_code AS inventory_code, e.name AS equipment_name
		FROM notifications n
		LEFT JOIN equipment e ON e.id = n.equipment_id`

	var args []interface{}
	if filter.Read != nil {
		query += " WHERE n.read = ?"
		args = append(args, boolToInt(*filter.Read))
	}
	query += " ORDER BY n.created_at DESC, n.id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, s.rebind(query), args...); err != nil {
		return nil, unavailable("querying notifications", err)
	}

	notifications := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		n, err := r.toModel()
		if err != nil {
			return nil, fmt.Errorf("scanning notification %d: %w", r.ID, err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkNotificationRead marks a notification as read and stamps read_at.
// Marking an already read notification again succeeds and re-stamps it.
func (s *SQLStore) MarkNotificationRead(
	ctx context.Context,
	id int64,
	at time.Time,
) error {
	result, err := s.db.ExecContext(ctx, s.rebind(
		"UPDATE notifications SET read = 1, read_at = ? WHERE id = ?"),
		formatTimestamp(at), id,
	)
	if err != nil {
		return unavailable(fmt.Sprintf("marking notification %d as read", id), err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteNotification removes a notification by ID.
func (s *SQLStore) DeleteNotification(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM notifications WHERE id = ?"), id)
	if err != nil {
		return unavailable(fmt.Sprintf("deleting notification %d", id), err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}
