package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/mitchellh/go-wordwrap"

	"declid/internal/diag"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.FgBlue)
	pathColor    = color.New(color.Bold)
)

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Paths
	Color bool
	Notes bool
	// Width wraps messages that would run past it; <= 0 never wraps.
	Width int
}

// wrapIndent starts every continuation line of a wrapped message.
const wrapIndent = "    "

// minWrap keeps very long prefixes from squeezing messages to a word a line.
const minWrap = 20

// Pretty writes bag in the order it holds, so sort it first. Each
// diagnostic takes one line plus one per note:
//
//	<path>:<line>: <sev> <CODE>: <Message>
//	  note: <path>:<line>: <Message>
//
// With a Width, long messages continue on lines indented by four spaces.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	for _, d := range bag.Items() {
		loc := location(d.Primary, opts)
		used := runewidth.StringWidth(fmt.Sprintf("%s: %s %s: ", plainLocation(d.Primary, opts), d.Severity.Label(), d.Code.ID()))
		msg := wrap(diag.OneLine(d.Message), used, opts.Width)
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", loc, severity(d.Severity, opts.Color), d.Code.ID(), msg); err != nil {
			return err
		}
		if !opts.Notes {
			continue
		}
		for _, n := range d.Notes {
			label := "note"
			if opts.Color {
				label = noteColor.Sprint(label)
			}
			if _, err := fmt.Fprintf(w, "  %s: %s: %s\n", label, location(n.Loc, opts), diag.OneLine(n.Msg)); err != nil {
				return err
			}
		}
	}
	return nil
}

func wrap(msg string, used, width int) string {
	if width <= 0 || used+runewidth.StringWidth(msg) <= width {
		return msg
	}
	lim := max(width-used, minWrap)
	return strings.ReplaceAll(wordwrap.WrapString(msg, uint(lim)), "\n", "\n"+wrapIndent)
}

func plainLocation(loc diag.Location, opts PrettyOpts) string {
	loc.File = opts.Show(loc.File)
	return loc.String()
}

func location(loc diag.Location, opts PrettyOpts) string {
	if opts.Color {
		return pathColor.Sprint(plainLocation(loc, opts))
	}
	return plainLocation(loc, opts)
}

func severity(sev diag.Severity, colored bool) string {
	if !colored {
		return sev.Label()
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(sev.Label())
	case diag.SevWarning:
		return warningColor.Sprint(sev.Label())
	}
	return infoColor.Sprint(sev.Label())
}
