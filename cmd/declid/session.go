package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"declid/internal/config"
	"declid/internal/observ"
	"declid/internal/trace"
)

// session is the per-invocation state shared by the subcommands.
type session struct {
	cfg     *config.Config
	timer   *observ.Timer
	tracer  trace.Tracer
	cleanup func()
}

type sessionKey struct{}

var errNoSession = errors.New("command ran without a session")

func startSession(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flags.Changed("color") {
		cfg.Output.Color, _ = flags.GetString("color")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := applyColor(cfg.Output.Color, os.Stdout); err != nil {
		return err
	}

	profiles, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	s := &session{cfg: cfg, timer: observ.NewTimer()}
	cmd.SetContext(withSession(cmd.Context(), s))
	stopTrace, err := setupTracing(cmd, cfg)
	if err != nil {
		_ = profiles.Stop()
		return err
	}
	s.tracer = trace.FromContext(cmd.Context())
	s.cleanup = func() {
		stopTrace()
		if err := profiles.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}
	return nil
}

func finishSession(cmd *cobra.Command) {
	s, err := sessionFrom(cmd)
	if err != nil {
		return
	}
	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		printTimings(cmd.ErrOrStderr(), s.timer)
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// reportFailure prints err and, when a ring tracer is active, the events
// leading up to it.
func reportFailure(cmd *cobra.Command, err error) {
	fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("error:"), err)
	s, sErr := sessionFrom(cmd)
	if sErr != nil {
		return
	}
	dumpTraceRing(cmd.ErrOrStderr(), s.tracer)
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFrom(cmd *cobra.Command) (*session, error) {
	if ctx := cmd.Context(); ctx != nil {
		if s, ok := ctx.Value(sessionKey{}).(*session); ok {
			return s, nil
		}
	}
	return nil, errNoSession
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

// applyColor sets the global color switch used by fatih/color and by the
// table renderer. NO_COLOR wins over auto.
func applyColor(mode string, out *os.File) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = os.Getenv("NO_COLOR") != "" || !isTerminal(out)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}
