package ledger

import "time"

// Database is one ledger session. Effects of the mutating methods become
// durable only through Commit; Close without a prior Commit discards them.
// A Database is owned by a single goroutine.
type Database interface {
	AddClient(name string, days uint32, seller string, money uint32, info string) error
	RenewClient(name string, days uint32, seller string, money uint32) error
	// RenewAllClients extends every client that is not expired yet.
	RenewAllClients(days uint32) error
	EditClient(name string, days uint32, seller string, money uint32, info string) error
	RemoveClient(name string) error
	ListClients() ([]Client, error)
	RenameClient(oldName, newName string) error
	SetClientInfo(target Target, info string) error
	GetClientInfo(name string) (string, error)

	Commit() error
	Close() error
}

// Clock returns the current time.
type Clock func() time.Time

// SystemClock is the Clock backends use unless told otherwise.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// State is the lifecycle position of a session.
type State int

const (
	StateOpen State = iota
	StateCommitted
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCommitted:
		return "committed"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}
