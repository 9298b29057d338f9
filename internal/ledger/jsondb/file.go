package jsondb

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
)

// Backup is the verbatim content of the ledger file at some point in time.
type Backup struct {
	Data   []byte
	Exists bool
}

// readBackup reads the file as-is. A missing file is a valid, empty backup.
func readBackup(path string) (Backup, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Backup{}, nil
	case err != nil:
		return Backup{}, ledger.IOError("read "+path, err)
	}
	return Backup{Data: data, Exists: true}, nil
}

// writeBackup puts b back in place, removing the file if it did not exist
// when b was taken.
func writeBackup(path string, b Backup) error {
	if !b.Exists {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ledger.IOError("remove "+path, err)
		}
		return nil
	}
	return writeFile(path, b.Data)
}

func decode(path string, data []byte) ([]ledger.Client, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []clientRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, ledger.FormatError("parse "+path, err)
	}

	clients := fromRecords(records)
	seen := make(map[string]bool, len(clients))
	for _, c := range clients {
		if seen[c.Name] {
			return nil, &ledger.InvariantError{Name: c.Name, Detail: "name stored more than once"}
		}
		seen[c.Name] = true

		if len(c.Payments) == 0 {
			return nil, &ledger.InvariantError{Name: c.Name, Detail: "client has no payments"}
		}
	}

	return clients, nil
}

// save writes the whole collection, replacing the previous file content.
func save(path string, clients []ledger.Client) error {
	data, err := json.MarshalIndent(toRecords(clients), "", "  ")
	if err != nil {
		return ledger.FormatError("encode "+path, err)
	}
	return writeFile(path, append(data, '\n'))
}

// writeFile writes to a temporary sibling first and renames it over path, so
// an interrupted write never leaves a truncated ledger behind.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return ledger.IOError("write "+tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return ledger.IOError("replace "+path, err)
	}
	return nil
}
