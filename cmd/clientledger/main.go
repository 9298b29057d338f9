package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Soar-Robotics/ClientLedger/internal/cli"
	"github.com/Soar-Robotics/ClientLedger/internal/config"
	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
	"github.com/Soar-Robotics/ClientLedger/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, utils.GetLogger()))
}

// run executes one command line. logger writes to stderr and is only handed
// to the session in debug mode.
func run(args []string, stdout, stderr io.Writer, logger *log.Logger) int {

	inv, err := cli.Parse(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return fail(stderr, err)
	}

	session := cli.Session{Stdout: stdout}

	// Load configuration
	if inv.NeedsLedger() {
		session.Config, err = config.Load(".env")
		if err != nil {
			return fail(stderr, err)
		}
	}
	if inv.Debug || (session.Config != nil && session.Config.Debug) {
		session.Logger = logger
	}

	if err := inv.Execute(session); err != nil {
		if errors.Is(err, ledger.ErrInvariantViolation) {
			logger.Printf("CRITICAL: ledger data is inconsistent: %v", err)
		}
		return fail(stderr, err)
	}
	return 0
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
