// Package sqldb is the relational ledger backend. A DB holds one open
// transaction for its whole lifetime; nothing it does is visible to other
// connections until Commit.
package sqldb

import (
	"database/sql"
	"errors"
	"io"
	"log"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
	"github.com/Soar-Robotics/ClientLedger/internal/models"
	"github.com/google/uuid"
	herrors "github.com/hatchify/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options configure a session. The zero value is usable.
type Options struct {
	Clock  ledger.Clock
	Logger *log.Logger
}

// DB is a relational ledger session.
type DB struct {
	sqlDB  *sql.DB
	tx     *gorm.DB
	now    ledger.Clock
	logger *log.Logger
	id     uuid.UUID
	state  ledger.State
	closed bool
}

// OpenSQLite opens the SQLite database file at path, creating it if needed.
func OpenSQLite(path string, opts Options) (*DB, error) {
	return Open(sqlite.Open(path), opts)
}

// OpenPostgres opens the PostgreSQL database described by dsn.
func OpenPostgres(dsn string, opts Options) (*DB, error) {
	return Open(postgres.Open(dsn), opts)
}

// Open connects through dialector, makes sure both tables exist and begins the
// session transaction.
func Open(dialector gorm.Dialector, opts Options) (*DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, ledger.IOError("open database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, ledger.IOError("get database handle", err)
	}
	// The session only ever uses the connection its transaction is bound to.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&models.Client{}, &models.Payment{}); err != nil {
		sqlDB.Close()
		return nil, ledger.IOError("create tables", err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		sqlDB.Close()
		return nil, ledger.IOError("begin transaction", tx.Error)
	}

	d := &DB{
		sqlDB:  sqlDB,
		tx:     tx,
		now:    opts.Clock,
		logger: opts.Logger,
		id:     uuid.New(),
		state:  ledger.StateOpen,
	}
	if d.now == nil {
		d.now = ledger.SystemClock
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard, "", 0)
	}

	d.logger.Printf("sqldb session %s opened", d.id)
	return d, nil
}

// ID identifies the session in log output.
func (d *DB) ID() uuid.UUID { return d.id }

// State reports where the session is in its lifecycle.
func (d *DB) State() ledger.State { return d.state }

// Commit finalizes every operation of the session.
func (d *DB) Commit() error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	if err := d.tx.Commit().Error; err != nil {
		d.state = ledger.StateDiscarded
		d.logger.Printf("sqldb session %s: commit failed: %v", d.id, err)
		return ledger.IOError("commit", err)
	}

	d.state = ledger.StateCommitted
	d.logger.Printf("sqldb session %s committed", d.id)
	return nil
}

// Close rolls the transaction back unless it was committed and releases the
// connection. It is safe to call more than once.
func (d *DB) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	var errs herrors.ErrorList
	if d.state == ledger.StateOpen {
		d.state = ledger.StateDiscarded
		errs.Push(d.tx.Rollback().Error)
		d.logger.Printf("sqldb session %s discarded", d.id)
	}

	errs.Push(d.sqlDB.Close())
	return errs.Err()
}

func (d *DB) checkOpen() error {
	if d.state != ledger.StateOpen {
		return ledger.ErrSessionClosed
	}
	return nil
}

func (d *DB) addPayment(name string, p ledger.Payment) error {
	row := models.Payment{
		ClientName: name,
		Seller:     p.Seller,
		Date:       ledger.FormatTime(p.Date),
		Money:      p.Money,
	}
	if err := d.tx.Create(&row).Error; err != nil {
		return ledger.IOError("insert payment", err)
	}
	return nil
}

func (d *DB) findClient(name string) (*models.Client, error) {
	var row models.Client
	err := d.tx.Where("name = ?", name).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &ledger.NotFoundError{Name: name}
	case err != nil:
		return nil, ledger.IOError("select client", err)
	}
	return &row, nil
}

func (d *DB) exists(name string) (bool, error) {
	var n int64
	if err := d.tx.Model(&models.Client{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, ledger.IOError("count clients", err)
	}
	return n > 0, nil
}

var _ ledger.Database = &DB{}
