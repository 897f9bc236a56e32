package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"declid/internal/declid"
	"declid/internal/index"
)

// TableOptions controls WriteTable.
type TableOptions struct {
	Color bool
	// Width caps each line; <= 0 means unlimited.
	Width int
	// First is the position shown for the first row.
	First int
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	kindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	runtimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// KindLabel renders a kind for people: "anonymous-class" becomes
// "Anonymous Class".
func KindLabel(k declid.Kind) string {
	return cases.Title(language.English).String(strings.ReplaceAll(k.String(), "-", " "))
}

type row struct {
	cells [5]string
	rt    bool
}

// WriteTable prints the declarations of ix as an aligned table with a
// position, kind, description, source and summary column. A "*" marks
// runtime declarations.
func WriteTable(w io.Writer, ix *index.Index, opts TableOptions) error {
	rows := []row{{cells: [5]string{"#", "KIND", "DECLARATION", "SOURCE", "SUMMARY"}}}
	n := opts.First
	for id, d := range ix.Declarations.All() {
		desc := id.Describe()
		if d.Runtime {
			desc += " *"
		}
		rows = append(rows, row{
			cells: [5]string{fmt.Sprint(n), KindLabel(id.Kind()), desc, d.Source.String(), d.Summary},
			rt:    d.Runtime,
		})
		n++
	}

	var widths [5]int
	for _, r := range rows {
		for i, c := range r.cells {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	for i, r := range rows {
		var b strings.Builder
		for col, c := range r.cells {
			if col == len(r.cells)-1 {
				b.WriteString(c)
				break
			}
			b.WriteString(runewidth.FillRight(c, widths[col]))
			b.WriteString("  ")
		}
		line := strings.TrimRight(b.String(), " ")
		if opts.Width > 0 {
			line = truncate(line, opts.Width)
		}
		if opts.Color {
			line = colorize(line, i == 0, r)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(rows) == 1 {
		msg := "no declarations"
		if opts.Color {
			msg = dimStyle.Render(msg)
		}
		_, err := fmt.Fprintln(w, msg)
		return err
	}
	return nil
}

func colorize(line string, header bool, r row) string {
	switch {
	case header:
		return headerStyle.Render(line)
	case r.rt:
		return runtimeStyle.Render(line)
	default:
		if k := r.cells[1]; k != "" {
			return strings.Replace(line, k, kindStyle.Render(k), 1)
		}
		return line
	}
}
