package commands

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"

	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/store"
)

// Fixtures is the seed file layout.
type Fixtures struct {
	Equipment   []model.Equipment       `mapstructure:"equipment"`
	Maintenance []model.MaintenanceTask `mapstructure:"maintenance"`
}

// dateHook accepts YAML timestamps for Date fields.
var dateHook mapstructure.DecodeHookFuncType = func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(model.Date("")) {
		return data, nil
	}
	if t, ok := data.(time.Time); ok {
		return model.DateOf(t.UTC()), nil
	}
	return data, nil
}

// LoadFixtures reads and validates a YAML seed file.
func LoadFixtures(path string) (*Fixtures, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", path, err)
	}

	f := &Fixtures{}
	if err := v.Unmarshal(f, viper.DecodeHook(dateHook)); err != nil {
		return nil, fmt.Errorf("parsing fixtures %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixtures %s: %w", path, err)
	}
	return f, nil
}

// Validate rejects fixtures the store would accept but the rules could not
// evaluate.
func (f *Fixtures) Validate() error {
	for i, e := range f.Equipment {
		if e.InventoryCode == "" {
			return fmt.Errorf("equipment[%d]: inventory_code is required", i)
		}
		if e.Status != "" && !e.Status.Valid() {
			return fmt.Errorf("equipment[%d]: unknown status %q", i, e.Status)
		}
		for field, d := range map[string]*model.Date{"purchase_date": e.PurchaseDate, "warranty_end": e.WarrantyEnd} {
			if d == nil {
				continue
			}
			if _, err := d.Time(); err != nil {
				return fmt.Errorf("equipment[%d] %s: %w", i, field, err)
			}
		}
	}
	for i, m := range f.Maintenance {
		if m.EquipmentID == 0 {
			return fmt.Errorf("maintenance[%d]: equipment_id is required", i)
		}
		switch m.Kind {
		case model.MaintenancePreventive, model.MaintenanceCorrective:
		default:
			return fmt.Errorf("maintenance[%d]: unknown kind %q", i, m.Kind)
		}
		if _, err := m.ScheduledDate.Time(); err != nil {
			return fmt.Errorf("maintenance[%d] scheduled_date: %w", i, err)
		}
	}
	return nil
}

// Apply inserts the fixtures into s in a single transaction, so a failing
// record leaves the store untouched.
func (f *Fixtures) Apply(ctx context.Context, s store.Store) error {
	return s.Import(ctx, f.Equipment, f.Maintenance)
}

type SeedCmd struct {
	flags *Flags
}

// NewSeedCmd creates a new seed command
func NewSeedCmd(flags *Flags) *SeedCmd {
	return &SeedCmd{flags: flags}
}

// Register adds the seed command to the application
func (cmd *SeedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "seed",
		Usage:     "Load equipment and maintenance fixtures from a YAML file",
		ArgsUsage: "<file.yaml>",
		Description: `Inserts the equipment and maintenance records listed in the file.

Example:

  equipment:
    - id: 1
      inventory_code: INV-0001
      name: Lab projector
      purchase_date: "2019-02-01"
      warranty_end: "2026-11-01"
  maintenance:
    - equipment_id: 1
      kind: preventive
      scheduled_date: "2026-10-20"`,
		Action: cmd.run,
	})

	return app
}

func (cmd *SeedCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one fixtures file")
	}

	fixtures, err := LoadFixtures(c.Args().First())
	if err != nil {
		return err
	}

	s, err := cmd.flags.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fixtures.Apply(ctx, s); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	_, err = fmt.Fprintf(cmd.flags.Out, "Seeded %d equipment and %d maintenance tasks\n",
		len(fixtures.Equipment), len(fixtures.Maintenance))
	return err
}
