// Package jsondb is the snapshot ledger backend: the whole ledger lives in
// one JSON file that is read once per session and written back as a unit.
//
// Open defers every write to Commit. OpenWriteThrough writes after each
// mutation instead and undoes them on Close by restoring the backup taken
// when the session opened.
package jsondb

import (
	"io"
	"log"
	"sort"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
	"github.com/google/uuid"
)

// Options configure a session. The zero value is usable.
type Options struct {
	Clock  ledger.Clock
	Logger *log.Logger
}

// DB is a snapshot ledger session.
type DB struct {
	path         string
	clients      []ledger.Client
	backup       Backup
	writeThrough bool

	now    ledger.Clock
	logger *log.Logger
	id     uuid.UUID
	state  ledger.State
}

// Open starts a session that keeps every change in memory until Commit.
func Open(path string, opts Options) (*DB, error) {
	return open(path, false, opts)
}

// OpenWriteThrough starts a session that persists every change immediately
// and restores the original file on Close unless Commit was called.
func OpenWriteThrough(path string, opts Options) (*DB, error) {
	return open(path, true, opts)
}

func open(path string, writeThrough bool, opts Options) (*DB, error) {
	backup, err := readBackup(path)
	if err != nil {
		return nil, err
	}

	clients, err := decode(path, backup.Data)
	if err != nil {
		return nil, err
	}

	d := &DB{
		path:         path,
		clients:      clients,
		backup:       backup,
		writeThrough: writeThrough,
		now:          opts.Clock,
		logger:       opts.Logger,
		id:           uuid.New(),
		state:        ledger.StateOpen,
	}
	if d.now == nil {
		d.now = ledger.SystemClock
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard, "", 0)
	}

	d.logger.Printf("jsondb session %s opened on %s (write-through: %v)", d.id, path, writeThrough)
	return d, nil
}

// ID identifies the session in log output.
func (d *DB) ID() uuid.UUID { return d.id }

// State reports where the session is in its lifecycle.
func (d *DB) State() ledger.State { return d.state }

// Backup returns the file content as it was when the session opened.
func (d *DB) Backup() Backup { return d.backup }

// Restore overwrites the ledger file with b.
func (d *DB) Restore(b Backup) error {
	return writeBackup(d.path, b)
}

// Commit writes the full collection back to the file.
func (d *DB) Commit() error {
	if d.state != ledger.StateOpen {
		return ledger.ErrSessionClosed
	}

	if err := save(d.path, d.clients); err != nil {
		d.logger.Printf("jsondb session %s: commit failed: %v", d.id, err)
		return err
	}

	d.state = ledger.StateCommitted
	d.logger.Printf("jsondb session %s committed", d.id)
	return nil
}

// Close discards an uncommitted session. In write-through mode that means
// putting the backup back. It is safe to call more than once.
func (d *DB) Close() error {
	if d.state != ledger.StateOpen {
		return nil
	}
	d.state = ledger.StateDiscarded
	d.clients = nil
	d.logger.Printf("jsondb session %s discarded", d.id)

	if !d.writeThrough {
		return nil
	}
	return d.Restore(d.backup)
}

func (d *DB) checkOpen() error {
	if d.state != ledger.StateOpen {
		return ledger.ErrSessionClosed
	}
	return nil
}

// persist writes the collection after a mutation in write-through mode.
func (d *DB) persist() error {
	if !d.writeThrough {
		return nil
	}
	return save(d.path, d.clients)
}

func (d *DB) index(name string) int {
	for i := range d.clients {
		if d.clients[i].Name == name {
			return i
		}
	}
	return -1
}

func (d *DB) find(name string) (*ledger.Client, error) {
	i := d.index(name)
	if i < 0 {
		return nil, &ledger.NotFoundError{Name: name}
	}
	return &d.clients[i], nil
}

// snapshot returns a deep copy of the collection ordered by name.
func (d *DB) snapshot() []ledger.Client {
	out := make([]ledger.Client, len(d.clients))
	for i, c := range d.clients {
		c.Payments = append([]ledger.Payment(nil), c.Payments...)
		if c.Info != nil {
			info := *c.Info
			c.Info = &info
		}
		out[i] = c
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var _ ledger.Database = &DB{}
