package commands

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/nhle/equipment-alerts/internal/credential"
	"github.com/nhle/equipment-alerts/internal/engine"
	"github.com/nhle/equipment-alerts/internal/logger"
	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/publish"
	"github.com/nhle/equipment-alerts/internal/store"
)

type Flags struct {
	LogLevel   string
	LogFormat  string
	ConfigPath string

	// Config is loaded in the Before hook and available to all commands
	Config *model.AppConfig

	// Logger is configured in the Before hook from flags and Config
	Logger zerolog.Logger

	// Out receives command output
	Out io.Writer
}

// openStore connects to the configured database, reading the DSN from the
// keyring when database.keyring_key is set.
func (f *Flags) openStore() (*store.SQLStore, error) {
	dbCfg := f.Config.Database

	var vault *credential.Vault
	if dbCfg.KeyringKey != "" {
		v, err := credential.Open()
		if err != nil {
			return nil, err
		}
		vault = v
	}

	dsn, err := credential.ResolveDSN(vault, dbCfg)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(dbCfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", dbCfg.Driver, err)
	}
	return s, nil
}

// publisher returns a Kafka publisher when brokers are configured.
func (f *Flags) publisher() (publish.Publisher, error) {
	k := f.Config.Kafka
	if k.Brokers == "" {
		return publish.Nop{}, nil
	}
	return publish.NewKafka(k.Brokers, k.Topic, logger.WithComponent(f.Logger, "publish"))
}

func (f *Flags) newEngine(s store.Store, pub publish.Publisher) *engine.Engine {
	return engine.New(s,
		engine.WithMaintenanceWindow(f.Config.Agent.MaintenanceCheckDays),
		engine.WithRuleTimeout(f.Config.Agent.RuleTimeout()),
		engine.WithLogger(logger.WithComponent(f.Logger, "engine")),
		engine.WithPublisher(pub),
	)
}
