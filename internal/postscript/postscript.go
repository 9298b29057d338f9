// Package postscript runs the user's hook executables after a command has
// been committed. Hooks only observe the ledger; they never change it.
package postscript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Hook names, one per command that reports the clients it touched.
const (
	Add    = "add"
	Renew  = "renew"
	Delete = "delete"
	Rename = "rename"
)

// Runner executes hooks from Dir. Hook stdout is copied to Stdout.
type Runner struct {
	Dir    string
	Stdout io.Writer
	Logger *log.Logger
}

// Run executes the hook called name with args. A hook that does not exist is
// skipped. A hook exiting non-zero is reported with its trimmed stderr.
func (r *Runner) Run(name string, args ...string) error {
	path := filepath.Join(r.Dir, name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		r.logf("no %s post script at %s, skipping", name, path)
		return nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logf("running %s post script with %v", name, args)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("couldn't run post script '%s': %w", path, err)
		}
		return fmt.Errorf("post script exited due to a failure: %s", strings.TrimSuffix(stderr.String(), "\n"))
	}

	if stdout.Len() > 0 && r.Stdout != nil {
		if _, err := r.Stdout.Write(stdout.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}
