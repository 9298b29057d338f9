package cli

import (
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
)

// uint32Value is a flag.Value for day counts and money amounts.
type uint32Value uint32

func (v *uint32Value) String() string { return strconv.FormatUint(uint64(*v), 10) }

func (v *uint32Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("must be a number between 0 and %d", uint32(math.MaxUint32))
	}
	*v = uint32Value(n)
	return nil
}

// flagSet remembers which flags were given explicitly, so that commands can
// tell "-info ”" apart from no -info at all.
type flagSet struct {
	*flag.FlagSet
	given  map[string]bool
	checks []func() error
}

func newFlagSet(name string, output io.Writer) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	return &flagSet{FlagSet: fs, given: make(map[string]bool)}
}

func (f *flagSet) uint32(name string, value uint32, usage string) *uint32 {
	v := value
	f.Var((*uint32Value)(&v), name, usage)
	return &v
}

func (f *flagSet) parse(args []string) error {
	if err := f.Parse(args); err != nil {
		return err
	}
	if f.NArg() > 0 {
		return fmt.Errorf("%s: unexpected argument %q", f.Name(), f.Arg(0))
	}
	f.Visit(func(fl *flag.Flag) { f.given[fl.Name] = true })

	for _, check := range f.checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// check registers a rule on the flags alone, run by parse before any
// storage is opened.
func (f *flagSet) check(fn func() error) {
	f.checks = append(f.checks, fn)
}

func (f *flagSet) isSet(name string) bool { return f.given[name] }

func (f *flagSet) require(names ...string) error {
	for _, name := range names {
		if !f.given[name] {
			return fmt.Errorf("%s: --%s is required", f.Name(), name)
		}
	}
	return nil
}
