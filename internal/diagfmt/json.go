package diagfmt

import (
	"encoding/json"
	"io"

	"declid/internal/diag"
)

// JSONOpts configures JSON.
type JSONOpts struct {
	Paths
	// Max caps the entries written; Total still counts all of them.
	Max   int
	Notes bool
}

type Position struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

type NoteEntry struct {
	Message  string   `json:"message"`
	Location Position `json:"location"`
}

type Entry struct {
	Severity string      `json:"severity"`
	Code     string      `json:"code"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Location Position    `json:"location"`
	Notes    []NoteEntry `json:"notes,omitempty"`
}

// Report is the JSON document JSON writes.
type Report struct {
	Diagnostics []Entry `json:"diagnostics"`
	Count       int     `json:"count"`
	Total       int     `json:"total"`
	Errors      int     `json:"errors"`
	Warnings    int     `json:"warnings"`
}

func (o JSONOpts) position(loc diag.Location) Position {
	return Position{File: o.Show(loc.File), Line: loc.Line}
}

// NewReport converts bag in the order it holds.
func NewReport(bag *diag.Bag, opts JSONOpts) Report {
	items := bag.Items()
	r := Report{Diagnostics: []Entry{}, Total: len(items)}
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			r.Errors++
		case diag.SevWarning:
			r.Warnings++
		}
		if opts.Max > 0 && len(r.Diagnostics) == opts.Max {
			continue
		}
		e := Entry{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  diag.OneLine(d.Message),
			Location: opts.position(d.Primary),
		}
		if opts.Notes {
			for _, n := range d.Notes {
				e.Notes = append(e.Notes, NoteEntry{Message: diag.OneLine(n.Msg), Location: opts.position(n.Loc)})
			}
		}
		r.Diagnostics = append(r.Diagnostics, e)
	}
	r.Count = len(r.Diagnostics)
	return r
}

// JSON writes bag as one indented Report.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(bag, opts))
}
