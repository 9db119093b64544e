package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/store"
	"github.com/nhle/equipment-alerts/tests/testutil"
)

func writeFixtures(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFixtures(t *testing.T) {
	f, err := LoadFixtures(writeFixtures(t, fixturesYAML))
	require.NoError(t, err)

	require.Len(t, f.Equipment, 2)
	assert.Equal(t, int64(1), f.Equipment[0].ID)
	assert.Equal(t, "INV-0001", f.Equipment[0].InventoryCode)
	require.NotNil(t, f.Equipment[0].PurchaseDate)
	assert.Equal(t, model.Date("2015-02-01"), *f.Equipment[0].PurchaseDate)
	assert.Nil(t, f.Equipment[0].WarrantyEnd)

	assert.Equal(t, model.EquipmentDecommissioned, f.Equipment[1].Status)
	require.NotNil(t, f.Equipment[1].PurchaseDate)
	assert.Equal(t, model.Date("2012-05-10"), *f.Equipment[1].PurchaseDate)

	require.Len(t, f.Maintenance, 1)
	assert.Equal(t, model.MaintenanceCorrective, f.Maintenance[0].Kind)
	assert.Equal(t, model.Date("2001-01-01"), f.Maintenance[0].ScheduledDate)
}

func TestLoadFixturesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "malformed purchase date",
			content: "equipment:\n  - inventory_code: A\n    purchase_date: \"2020-13-01\"\n",
			want:    "malformed date",
		},
		{
			name:    "unknown status",
			content: "equipment:\n  - inventory_code: A\n    status: broken\n",
			want:    "unknown status",
		},
		{
			name:    "missing inventory code",
			content: "equipment:\n  - name: A\n",
			want:    "inventory_code is required",
		},
		{
			name:    "unknown maintenance kind",
			content: "maintenance:\n  - equipment_id: 1\n    kind: cosmetic\n    scheduled_date: \"2026-01-01\"\n",
			want:    "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixtures(writeFixtures(t, tt.content))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	f, err := LoadFixtures(writeFixtures(t, `
equipment:
  - id: 1
    inventory_code: INV-0001
    name: Printer
  - id: 2
    inventory_code: INV-0001
    name: Duplicate code
`))
	require.NoError(t, err)
	require.Error(t, f.Apply(ctx, s))

	got, err := s.GetEquipment(ctx, store.EquipmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadSecret(t *testing.T) {
	got, err := readSecret(strings.NewReader("postgres://alerts@db/equipment\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://alerts@db/equipment", got)

	_, err = readSecret(strings.NewReader("\n"))
	assert.Error(t, err)
}
