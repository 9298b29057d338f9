// Package cli turns one command line into one ledger session: it parses the
// subcommand, runs it against a freshly opened backend, commits only when
// the command succeeded and then runs the matching post script.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/Soar-Robotics/ClientLedger/internal/config"
	"github.com/Soar-Robotics/ClientLedger/internal/input"
	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
	"github.com/Soar-Robotics/ClientLedger/internal/postscript"
)

// Hook is a post script to run once the session is committed.
type Hook struct {
	Name string
	Args []string
}

// env is what a command gets to work with.
type env struct {
	db       ledger.Database
	validate *input.Validator
	now      ledger.Clock
	stdout   io.Writer
	cfg      *config.Config
}

type command struct {
	about string
	// setup registers the command's flags and returns the function that runs it.
	setup func(fs *flagSet) func(e *env) ([]Hook, error)
}

var commands = map[string]command{
	"add":       {"adds new client to db", setupAdd},
	"renew":     {"renew client", setupRenew},
	"renew-all": {"renew all clients that are not expired", setupRenewAll},
	"edit":      {"edit a client's remaining days, latest payment and info", setupEdit},
	"remove":    {"remove client", setupRemove},
	"list":      {"show all clients", setupList},
	"rename":    {"rename client", setupRename},
	"set-info":  {"set client info", setupSetInfo},
	"cleanup":   {"remove clients that expired a long time ago", setupCleanup},
}

// Invocation is a parsed command line.
type Invocation struct {
	Command        string
	SkipPostScript bool
	// Debug asks for session and post script logging on stderr.
	Debug bool

	run func(e *env) ([]Hook, error)
}

// NeedsLedger is false for commands that run without a data folder.
func (inv *Invocation) NeedsLedger() bool { return inv.Command != "version" }

// Parse reads the global flags and the subcommand with its flags. Usage
// messages go to output.
func Parse(args []string, output io.Writer) (*Invocation, error) {
	global := newFlagSet("clientledger", output)
	skip := global.Bool("skip-post-script", false, "do not run post scripts")
	debug := global.Bool("debug", false, "log session activity to stderr")
	global.Usage = func() { usage(output) }
	if err := global.Parse(args); err != nil {
		return nil, err
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage(output)
		return nil, errors.New("no command given")
	}

	inv := &Invocation{Command: rest[0], SkipPostScript: *skip, Debug: *debug}
	if inv.Command == "version" {
		if len(rest) > 1 {
			return nil, fmt.Errorf("version: unexpected argument %q", rest[1])
		}
		return inv, nil
	}

	cmd, ok := commands[inv.Command]
	if !ok {
		usage(output)
		return nil, fmt.Errorf("unknown command %q", inv.Command)
	}

	fs := newFlagSet(inv.Command, output)
	inv.run = cmd.setup(fs)
	if err := fs.parse(rest[1:]); err != nil {
		return nil, err
	}

	return inv, nil
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("usage: clientledger [--skip-post-script] [--debug] <command> [flags]\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-10s %s\n", name, commands[name].about)
	}
	fmt.Fprintf(&b, "  %-10s %s\n", "version", "show the revision this binary was built from")
	io.WriteString(w, b.String())
}

// Session carries what Execute needs besides the command line.
type Session struct {
	Config *config.Config
	Stdout io.Writer
	// Logger receives session and post script logs. Nil keeps them quiet.
	Logger *log.Logger
	// Clock defaults to ledger.SystemClock.
	Clock ledger.Clock
}

// Execute runs the invocation in its own ledger session. Effects are
// committed only if the command succeeds; post scripts run after the commit.
func (inv *Invocation) Execute(s Session) (err error) {
	if !inv.NeedsLedger() {
		return version(s.Stdout)
	}

	clock := s.Clock
	if clock == nil {
		clock = ledger.SystemClock
	}

	db, err := OpenDatabase(s.Config, clock, s.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	e := &env{
		db:       db,
		validate: input.NewValidator(s.Config.Sellers),
		now:      clock,
		stdout:   s.Stdout,
		cfg:      s.Config,
	}

	hooks, err := inv.run(e)
	if err != nil {
		return err
	}

	if err := db.Commit(); err != nil {
		return fmt.Errorf("CRITICAL ERROR: cannot commit changes: %w", err)
	}

	if inv.SkipPostScript {
		if len(hooks) > 0 {
			fmt.Fprintln(s.Stdout, "skipping post script!")
		}
		return nil
	}

	runner := &postscript.Runner{Dir: s.Config.PostScriptDir(), Stdout: s.Stdout, Logger: s.Logger}
	for _, h := range hooks {
		if err := runner.Run(h.Name, h.Args...); err != nil {
			return err
		}
	}

	return nil
}
