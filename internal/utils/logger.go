package utils

import (
	"io"
	"log"
	"os"
)

// GetLogger returns the process logger. It writes to stderr because stdout
// carries command output.
func GetLogger() *log.Logger {
	return NewLogger(os.Stderr)
}

// NewLogger returns a logger with the ledger prefix and flags writing to w.
func NewLogger(w io.Writer) *log.Logger {
	return log.New(w, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
}
