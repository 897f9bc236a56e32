package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"declid/internal/version"
)

// newRootCmd builds the command tree. Every call returns fresh flags.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "declid",
		Short:         "Declaration identifiers, manifests and indexes",
		Long:          `declid parses declaration identifiers, merges declaration manifests into an index and resolves identifiers against the runtime declarations they list`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return startSession(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			finishSession(cmd)
		},
	}

	// Global flags
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("config", "", "path to declid.toml (default: search upwards from the working directory)")
	pf.String("trace", "", "write trace events to a file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(newParseCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	cmd, err := newRootCmd().ExecuteC()
	if err != nil {
		reportFailure(cmd, err)
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of f, or 0 when f is not a terminal.
func terminalWidth(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
