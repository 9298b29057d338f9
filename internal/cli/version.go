package cli

import (
	"fmt"
	"io"
	"runtime/debug"
)

// version prints the VCS revision and commit time stamped into the binary.
func version(w io.Writer) error {
	revision, modified, when := "unknown", "", ""
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.time":
				when = s.Value
			case "vcs.modified":
				if s.Value == "true" {
					modified = " (modified)"
				}
			}
		}
	}

	_, err := fmt.Fprintf(w, "%s%s\n%s\n", revision, modified, when)
	return err
}
