package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"declid/internal/declid"
	"declid/internal/ui"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <encoding>...",
		Short: "Parse declaration id encodings",
		Long: `Parse canonical declaration id encodings such as method(class("App\\User"),"save")
and print their kind, description and canonical form. The tree format shows
each id under the chain of owners it is declared in.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
	cmd.Flags().String("format", "plain", "output format (plain|json|tree)")
	return cmd
}

type parsedJSON struct {
	Input       string `json:"input"`
	Id          string `json:"id,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "plain", "json", "tree":
	default:
		return fmt.Errorf("unsupported format %q (must be plain, json or tree)", format)
	}

	out := cmd.OutOrStdout()
	results := make([]parsedJSON, 0, len(args))
	failed := 0
	for _, arg := range args {
		r := parsedJSON{Input: arg}
		id, err := declid.Parse(arg)
		switch {
		case err != nil:
			failed++
			r.Error = err.Error()
		case format == "tree":
			fmt.Fprint(out, ownerTree(id))
		default:
			r.Id = id.Encode()
			r.Kind = id.Kind().String()
			r.Description = id.Describe()
		}
		results = append(results, r)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	case "tree":
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("invalid"), r.Error)
			}
		}
	default:
		writeParsed(out, cmd.ErrOrStderr(), results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d encodings failed to parse", failed, len(args))
	}
	return nil
}

func writeParsed(out, errOut io.Writer, results []parsedJSON) {
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(errOut, "%s %s\n", color.RedString("invalid"), r.Error)
			continue
		}
		kind, _ := declid.ParseKind(r.Kind)
		fmt.Fprintf(out, "%s\t%s\t%s\n", color.CyanString(ui.KindLabel(kind)), r.Description, r.Id)
	}
}

// ownerTree renders id under its owners, outermost first:
//
//	class App\User
//	└── method App\User::save()
//	    └── parameter App\User::save($force)
func ownerTree(id declid.Id) string {
	chain := owners(id)
	tree := treeprint.NewWithRoot(ownerLabel(chain[0]))
	branch := tree
	for _, o := range chain[1:] {
		branch = branch.AddBranch(ownerLabel(o))
	}
	return tree.String()
}

// owners lists id and the ids it is declared in, outermost first.
func owners(id declid.Id) []declid.Id {
	var chain []declid.Id
	for id != nil {
		chain = append(chain, id)
		switch v := id.(type) {
		case declid.MethodId:
			id = v.Class()
		case declid.ParameterId:
			id = v.Function()
		case declid.ClassConstantId:
			id = v.Class()
		case declid.PropertyId:
			id = v.Class()
		default:
			id = nil
		}
	}
	slices.Reverse(chain)
	return chain
}

func ownerLabel(id declid.Id) string {
	return id.Kind().String() + " " + id.Describe()
}
