package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/equipment-alerts/internal/model"
)

func newMockStore(t *testing.T, dialect string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewWithDB(sqlx.NewDb(db, "sqlmock"), dialect), mock
}

func TestOpen(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open("mysql", "whatever")
		assert.Error(t, err)
	})

	t.Run("empty postgres dsn", func(t *testing.T) {
		_, err := Open(model.DriverPostgres, "")
		assert.Error(t, err)
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		path := t.TempDir() + "/equipment.db"

		s, err := NewSQLiteStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = NewSQLiteStore(path)
		require.NoError(t, err)
		defer s.Close()

		var version int
		require.NoError(t, s.db.Get(&version, "SELECT MAX(version) FROM schema_version"))
		assert.Equal(t, len(migrations), version)

		var rows int
		require.NoError(t, s.db.Get(&rows, "SELECT COUNT(*) FROM schema_version"))
		assert.Equal(t, len(migrations), rows)
	})
}

func TestStorageErrorsAreUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t, model.DriverSQLite)

	mock.ExpectQuery("SELECT id, inventory_code").WillReturnError(sql.ErrConnDone)
	_, err := s.GetEquipment(ctx, EquipmentFilter{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	mock.ExpectQuery("FROM maintenance_tasks").WillReturnError(context.DeadlineExceeded)
	_, err = s.GetMaintenanceTasks(ctx, MaintenanceFilter{})
	assert.ErrorIs(t, err, ErrUnavailable)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(sql.ErrConnDone)
	_, err = s.HasOpenNotification(ctx, model.KindObsolescence, 1)
	assert.ErrorIs(t, err, ErrUnavailable)

	mock.ExpectExec("UPDATE notifications").WillReturnError(sql.ErrConnDone)
	err = s.MarkNotificationRead(ctx, 1, time.Now())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlaceholders(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t, model.DriverPostgres)

	mock.ExpectExec(`UPDATE notifications SET read = 1, read_at = \$1 WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.MarkNotificationRead(ctx, 7, time.Now()))

	mock.ExpectExec(`DELETE FROM notifications WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.DeleteNotification(ctx, 8), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSequenceFollowsExplicitIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit id advances the sequence", func(t *testing.T) {
		s, mock := newMockStore(t, model.DriverPostgres)

		mock.ExpectQuery(`INSERT INTO equipment \(id, inventory_code`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
		mock.ExpectExec(`SELECT setval\(pg_get_serial_sequence\('equipment', 'id'\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		e := model.Equipment{ID: 5, InventoryCode: "INV-5"}
		require.NoError(t, s.CreateEquipment(ctx, &e))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("assigned id leaves the sequence alone", func(t *testing.T) {
		s, mock := newMockStore(t, model.DriverPostgres)

		mock.ExpectQuery(`INSERT INTO maintenance_tasks \(equipment_id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		task := model.MaintenanceTask{EquipmentID: 5, Kind: model.MaintenancePreventive, ScheduledDate: "2026-10-20"}
		require.NoError(t, s.CreateMaintenanceTask(ctx, &task))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("import advances both sequences inside the transaction", func(t *testing.T) {
		s, mock := newMockStore(t, model.DriverPostgres)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO equipment \(id,`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectQuery(`INSERT INTO maintenance_tasks \(id,`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
		mock.ExpectExec(`setval\(pg_get_serial_sequence\('equipment'`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`setval\(pg_get_serial_sequence\('maintenance_tasks'`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.Import(ctx,
			[]model.Equipment{{ID: 3, InventoryCode: "INV-3"}},
			[]model.MaintenanceTask{{ID: 4, EquipmentID: 3, Kind: model.MaintenanceCorrective, ScheduledDate: "2026-10-20"}},
		)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed sequence update rolls back", func(t *testing.T) {
		s, mock := newMockStore(t, model.DriverPostgres)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO equipment`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectExec(`setval`).WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err := s.Import(ctx, []model.Equipment{{ID: 3, InventoryCode: "INV-3"}}, nil)
		assert.ErrorIs(t, err, ErrUnavailable)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimestampsSortAsText(t *testing.T) {
	a := formatTimestamp(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	b := formatTimestamp(time.Date(2026, 10, 14, 9, 0, 0, 5, time.UTC))
	c := formatTimestamp(time.Date(2026, 10, 14, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600)))

	assert.Less(t, a, b)
	assert.Less(t, c, a)

	parsed, err := parseTimestamp(b)
	require.NoError(t, err)
	assert.Equal(t, 5, parsed.Nanosecond())
}
