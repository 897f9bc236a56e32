package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"declid/internal/declid"
	"declid/internal/index"
	"declid/internal/reflection"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <encoding>...",
		Short: "Resolve declaration ids against the runtime declarations of manifests",
		Long: `Build the index from the manifests, take the declarations marked runtime
as the live program and resolve each id against them. Anonymous classes pick up
the runtime_name recorded in the manifests.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResolve,
	}
	cmd.Flags().StringSlice("manifest", nil, "manifest to load (repeatable); default from declid.toml")
	cmd.Flags().Bool("no-cache", false, "ignore and do not update the index cache")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	s, err := sessionFrom(cmd)
	if err != nil {
		return err
	}
	manifests, err := cmd.Flags().GetStringSlice("manifest")
	if err != nil {
		return fmt.Errorf("failed to get manifest flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	paths, err := manifestPaths(s, manifests)
	if err != nil {
		return err
	}
	ix, err := loadIndex(cmd, s, paths, indexOptions{noCache: noCache, quiet: quiet, view: progressOff, format: "plain", jobs: s.cfg.Index.Jobs})
	if err != nil {
		return err
	}
	if err := printDiagnostics(cmd.ErrOrStderr(), ix.Bag, diagOptions{quiet: true}); err != nil {
		return err
	}

	phase := s.timer.Begin("resolve")
	reg := reflection.FromIndex(ix)
	failed := 0
	for _, arg := range args {
		if !resolveOne(cmd.OutOrStdout(), ix, reg, arg) {
			failed++
		}
	}
	phase.End(fmt.Sprintf("%d ids", len(args)))
	if failed > 0 {
		return fmt.Errorf("%d of %d ids did not resolve", failed, len(args))
	}
	return nil
}

// resolveOne prints one line for arg and reports whether it resolved.
func resolveOne(w io.Writer, ix *index.Index, reg *reflection.Registry, arg string) bool {
	id, err := declid.Parse(arg)
	if err != nil {
		fmt.Fprintf(w, "%s %s: %v\n", color.RedString("invalid"), arg, err)
		return false
	}
	if stored, ok := ix.Declarations.Id(id); ok {
		id = stored
	} else {
		id = declid.Bind(id, runtimeNames(ix))
	}

	h, err := declid.Resolve(reg, id)
	switch {
	case err == nil:
		fmt.Fprintf(w, "%s %s -> %s\n", color.GreenString("ok"), id.Describe(), describeHandle(h))
		return true
	case errors.Is(err, declid.ErrUnresolvable):
		fmt.Fprintf(w, "%s %s: %v\n", color.YellowString("unresolvable"), id.Describe(), err)
	default:
		fmt.Fprintf(w, "%s %s: %v\n", color.RedString("missing"), id.Describe(), err)
	}
	return false
}

// runtimeNames looks up anonymous class runtime names in ix, for ids that
// are not declared themselves but live in a named anonymous class.
func runtimeNames(ix *index.Index) declid.RuntimeNames {
	return func(a declid.AnonymousClassId) (string, bool) {
		stored, ok := ix.Declarations.Id(a)
		if !ok {
			return "", false
		}
		return stored.(declid.AnonymousClassId).RuntimeName()
	}
}

func describeHandle(h declid.Handle) string {
	switch v := h.(type) {
	case *reflection.ClassHandle:
		return fmt.Sprintf("class %s (%d methods)", v.Name(), len(v.Methods()))
	case *reflection.FunctionHandle:
		return fmt.Sprintf("function %s(%d params)", v.Name(), len(v.Parameters()))
	case *reflection.MethodHandle:
		return fmt.Sprintf("method %s::%s(%d params)", v.Class(), v.Name(), len(v.Parameters()))
	case *reflection.ParameterHandle:
		return fmt.Sprintf("parameter $%s of %s at position %d", v.Name(), v.Function(), v.Position())
	case *reflection.ConstantHandle:
		if v.Class() != "" {
			return fmt.Sprintf("constant %s::%s", v.Class(), v.Name())
		}
		return "constant " + v.Name()
	case *reflection.PropertyHandle:
		return fmt.Sprintf("property %s::$%s", v.Class(), v.Name())
	default:
		return h.Name()
	}
}
