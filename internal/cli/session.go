package cli

import (
	"fmt"
	"log"

	"github.com/Soar-Robotics/ClientLedger/internal/config"
	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
	"github.com/Soar-Robotics/ClientLedger/internal/ledger/jsondb"
	"github.com/Soar-Robotics/ClientLedger/internal/ledger/sqldb"
)

// OpenDatabase starts a ledger session on the backend the configuration names.
func OpenDatabase(cfg *config.Config, clock ledger.Clock, logger *log.Logger) (ledger.Database, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqldb.OpenSQLite(cfg.StorePath(), sqldb.Options{Clock: clock, Logger: logger})
	case config.BackendPostgres:
		return sqldb.OpenPostgres(cfg.DSN, sqldb.Options{Clock: clock, Logger: logger})
	case config.BackendJSON:
		return jsondb.Open(cfg.StorePath(), jsondb.Options{Clock: clock, Logger: logger})
	case config.BackendJSONWriteThrough:
		return jsondb.OpenWriteThrough(cfg.StorePath(), jsondb.Options{Clock: clock, Logger: logger})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
