package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
	herrors "github.com/hatchify/errors"
	"github.com/joho/godotenv"
)

const (
	DataPathEnv = "CLIENTLEDGER_DATA"
	BackendEnv  = "CLIENTLEDGER_BACKEND"
	DSNEnv      = "CLIENTLEDGER_DSN"
	DebugEnv    = "CLIENTLEDGER_DEBUG"

	// FileName is the optional config file inside the data folder.
	FileName = "config.json"
)

type Backend string

const (
	BackendSQLite           Backend = "sqlite"
	BackendPostgres         Backend = "postgres"
	BackendJSON             Backend = "json"
	BackendJSONWriteThrough Backend = "json-writethrough"
)

var defaultSellers = []string{"arian", "pouya"}

type Config struct {
	DataPath  string   `json:"-"`
	Backend   Backend  `json:"backend"`
	DSN       string   `json:"dsn"`
	GraceDays *int     `json:"grace_days"`
	Sellers   []string `json:"sellers"`
	Debug     bool     `json:"debug"`
}

// LoadConfig reads a JSON config file.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}

	return &config, nil
}

// Load builds the effective configuration. Variables from envFile are added
// to the environment first without overriding ones already set; the data
// folder comes from CLIENTLEDGER_DATA, the optional config.json inside it
// supplies the rest and CLIENTLEDGER_BACKEND / CLIENTLEDGER_DSN override it.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	dataPath := os.Getenv(DataPathEnv)
	if dataPath == "" {
		return nil, fmt.Errorf("please set '%s' environment variable to point to the ledger data folder", DataPathEnv)
	}

	config, err := LoadConfig(filepath.Join(dataPath, FileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		config = &Config{}
	case err != nil:
		return nil, err
	}
	config.DataPath = dataPath

	if v := os.Getenv(BackendEnv); v != "" {
		config.Backend = Backend(v)
	}
	if v := os.Getenv(DSNEnv); v != "" {
		config.DSN = v
	}
	if v := os.Getenv(DebugEnv); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", DebugEnv, err)
		}
		config.Debug = debug
	}

	config.fill()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) fill() {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.GraceDays == nil {
		days := ledger.DefaultGraceDays
		c.GraceDays = &days
	}
	if len(c.Sellers) == 0 {
		c.Sellers = append([]string(nil), defaultSellers...)
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs herrors.ErrorList
	switch c.Backend {
	case BackendSQLite, BackendJSON, BackendJSONWriteThrough:
	case BackendPostgres:
		if c.DSN == "" {
			errs.Push(fmt.Errorf("backend %q needs a dsn", c.Backend))
		}
	default:
		errs.Push(fmt.Errorf("unknown backend %q", c.Backend))
	}

	if c.GraceDays != nil && *c.GraceDays < 0 {
		errs.Push(fmt.Errorf("grace_days must not be negative, got %d", *c.GraceDays))
	}

	for _, s := range c.Sellers {
		if s == "" {
			errs.Push(errors.New("sellers must not contain an empty name"))
			break
		}
	}

	return errs.Err()
}

// Grace returns the cleanup grace period in days.
func (c *Config) Grace() int {
	if c.GraceDays == nil {
		return ledger.DefaultGraceDays
	}
	return *c.GraceDays
}

// StorePath is where the file based backends keep the ledger. For SQLite a
// configured dsn takes precedence.
func (c *Config) StorePath() string {
	switch c.Backend {
	case BackendJSON, BackendJSONWriteThrough:
		return filepath.Join(c.DataPath, "data.json")
	case BackendSQLite:
		if c.DSN != "" {
			return c.DSN
		}
	}
	return filepath.Join(c.DataPath, "data.db")
}

// PostScriptDir holds the executables run after a committed command.
func (c *Config) PostScriptDir() string {
	return filepath.Join(c.DataPath, "post_scripts")
}
