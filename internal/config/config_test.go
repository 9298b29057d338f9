package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{DataPathEnv, BackendEnv, DSNEnv, DebugEnv} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(DataPathEnv, dir)

	c, err := Load(filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Backend != BackendSQLite || c.Grace() != ledger.DefaultGraceDays || c.Debug || strings.Join(c.Sellers, ",") != "arian,pouya" {
		t.Fatalf("defaults %+v", c)
	}
	if c.StorePath() != filepath.Join(dir, "data.db") {
		t.Fatalf("store path %s", c.StorePath())
	}
	if c.PostScriptDir() != filepath.Join(dir, "post_scripts") {
		t.Fatalf("post script dir %s", c.PostScriptDir())
	}
}

func TestLoadRequiresDataPath(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), ".env"))
	if err == nil || !strings.Contains(err.Error(), DataPathEnv) {
		t.Fatalf("err=%v", err)
	}
}

func TestLoadFromEnvFileAndConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(t.TempDir(), ".env")
	writeFile(t, envFile, DataPathEnv+"="+dir+"\n")
	writeFile(t, filepath.Join(dir, FileName), `{"backend":"json","grace_days":0,"sellers":["sara"]}`)

	c, err := Load(envFile)
	if err != nil {
		t.Fatal(err)
	}
	if c.DataPath != dir || c.Backend != BackendJSON || c.Grace() != 0 || len(c.Sellers) != 1 || c.Sellers[0] != "sara" {
		t.Fatalf("config %+v", c)
	}
	if c.StorePath() != filepath.Join(dir, "data.json") {
		t.Fatalf("store path %s", c.StorePath())
	}
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{"backend":"json"}`)
	t.Setenv(DataPathEnv, dir)
	t.Setenv(BackendEnv, "postgres")
	t.Setenv(DSNEnv, "host=localhost dbname=ledger")

	c, err := Load(filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Backend != BackendPostgres || c.DSN != "host=localhost dbname=ledger" {
		t.Fatalf("config %+v", c)
	}
}

func TestDebugFromEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(DataPathEnv, dir)

	t.Setenv(DebugEnv, "true")
	c, err := Load(filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Debug {
		t.Fatal("debug not enabled")
	}

	t.Setenv(DebugEnv, "loud")
	if _, err := Load(filepath.Join(dir, "missing.env")); err == nil || !strings.Contains(err.Error(), DebugEnv) {
		t.Fatalf("err=%v", err)
	}
}

func TestLoadRejectsBadConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{"backend":`)
	t.Setenv(DataPathEnv, dir)

	if _, err := Load(filepath.Join(dir, "missing.env")); err == nil {
		t.Fatal("malformed config accepted")
	}
}

func TestValidate(t *testing.T) {
	negative := -1
	tests := []struct {
		name    string
		config  Config
		wantErr []string
	}{
		{"ok", Config{Backend: BackendSQLite}, nil},
		{"unknown backend", Config{Backend: "mysql"}, []string{`unknown backend "mysql"`}},
		{"postgres without dsn", Config{Backend: BackendPostgres}, []string{"needs a dsn"}},
		{"several problems", Config{Backend: "x", GraceDays: &negative, Sellers: []string{""}},
			[]string{"unknown backend", "grace_days", "empty name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("err=%v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Fatalf("err=%q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestSQLiteDSNOverridesStorePath(t *testing.T) {
	c := Config{DataPath: "/data", Backend: BackendSQLite, DSN: "/elsewhere/ledger.db"}
	if c.StorePath() != "/elsewhere/ledger.db" {
		t.Fatalf("store path %s", c.StorePath())
	}
}
