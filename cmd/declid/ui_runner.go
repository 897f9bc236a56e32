package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"declid/internal/index"
	"declid/internal/ui"
)

type indexOutcome struct {
	ix  *index.Index
	err error
}

// buildIndexWithUI runs index.Build while a progress view renders its
// events on out.
func buildIndexWithUI(ctx context.Context, out io.Writer, title string, paths []string, opts index.Options) (*index.Index, error) {
	events := make(chan index.Event, 256)
	outcomeCh := make(chan indexOutcome, 1)

	go func() {
		o := opts
		o.Progress = index.ChannelSink{Ch: events}
		ix, err := index.Build(ctx, paths, o)
		outcomeCh <- indexOutcome{ix: ix, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the build from blocking on a channel nobody reads
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.ix, uiErr
	}
	return outcome.ix, outcome.err
}
