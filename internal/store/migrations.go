package store

import "github.com/nhle/equipment-alerts/internal/model"

// migration holds a single schema migration with its target version and
// the DDL for each supported dialect.
type migration struct {
	version  int
	sqlite   string
	postgres string
}

func (m migration) forDialect(dialect string) string {
	if dialect == model.DriverPostgres {
		return m.postgres
	}
	return m.sqlite
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sqlite: `
CREATE TABLE IF NOT EXISTS equipment (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	inventory_code TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'operational'
		CHECK(status IN ('operational', 'under-repair', 'obsolete', 'decommissioned')),
	purchase_date  TEXT,
	warranty_end   TEXT
);

CREATE TABLE IF NOT EXISTS maintenance_tasks (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	equipment_id   INTEGER NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
	kind           TEXT NOT NULL CHECK(kind IN ('preventive', 'corrective')),
	scheduled_date TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'scheduled'
		CHECK(status IN ('scheduled', 'in-progress', 'completed', 'cancelled'))
);

CREATE INDEX IF NOT EXISTS idx_equipment_status ON equipment(status);
CREATE INDEX IF NOT EXISTS idx_equipment_warranty_end ON equipment(warranty_end);
CREATE INDEX IF NOT EXISTS idx_equipment_purchase_date ON equipment(purchase_date);
CREATE INDEX IF NOT EXISTS idx_maintenance_status_date ON maintenance_tasks(status, scheduled_date);
`,
		postgres: `
CREATE TABLE IF NOT EXISTS equipment (
	id             BIGSERIAL PRIMARY KEY,
	inventory_code TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'operational'
		CHECK(status IN ('operational', 'under-repair', 'obsolete', 'decommissioned')),
	purchase_date  TEXT,
	warranty_end   TEXT
);

CREATE TABLE IF NOT EXISTS maintenance_tasks (
	id             BIGSERIAL PRIMARY KEY,
	equipment_id   BIGINT NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
	kind           TEXT NOT NULL CHECK(kind IN ('preventive', 'corrective')),
	scheduled_date TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'scheduled'
		CHECK(status IN ('scheduled', 'in-progress', 'completed', 'cancelled'))
);

CREATE INDEX IF NOT EXISTS idx_equipment_status ON equipment(status);
CREATE INDEX IF NOT EXISTS idx_equipment_warranty_end ON equipment(warranty_end);
CREATE INDEX IF NOT EXISTS idx_equipment_purchase_date ON equipment(purchase_date);
CREATE INDEX IF NOT EXISTS idx_maintenance_status_date ON maintenance_tasks(status, scheduled_date);
`,
	},
	{
		version: 2,
		sqlite: `
CREATE TABLE IF NOT EXISTS notifications (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	kind           TEXT NOT NULL,
	subject_id     INTEGER NOT NULL,
	title          TEXT NOT NULL,
	message        TEXT NOT NULL,
	priority       TEXT NOT NULL CHECK(priority IN ('medium', 'high')),
	equipment_id   INTEGER REFERENCES equipment(id) ON DELETE SET NULL,
	maintenance_id INTEGER REFERENCES maintenance_tasks(id) ON DELETE SET NULL,
	read           INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	created_at     TEXT NOT NULL,
	read_at        TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_notifications_open
	ON notifications(kind, subject_id) WHERE read = 0;
CREATE INDEX IF NOT EXISTS idx_notifications_read_created
	ON notifications(read, created_at);
`,
		postgres: `
CREATE TABLE IF NOT EXISTS notifications (
	id             BIGSERIAL PRIMARY KEY,
	kind           TEXT NOT NULL,
	subject_id     BIGINT NOT NULL,
	title          TEXT NOT NULL,
	message        TEXT NOT NULL,
	priority       TEXT NOT NULL CHECK(priority IN ('medium', 'high')),
	equipment_id   BIGINT REFERENCES equipment(id) ON DELETE SET NULL,
	maintenance_id BIGINT REFERENCES maintenance_tasks(id) ON DELETE SET NULL,
	read           INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	created_at     TEXT NOT NULL,
	read_at        TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_notifications_open
	ON notifications(kind, subject_id) WHERE read = 0;
CREATE INDEX IF NOT EXISTS idx_notifications_read_created
	ON notifications(read, created_at);
`,
	},
}
