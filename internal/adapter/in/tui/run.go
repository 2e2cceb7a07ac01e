package tui

import (
	"context"
	"fmt"

	"feedctl/internal/adapter/out/pubsub/inmemory"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the UI until the user quits or ctx is done. The feed must
// render into bus; log records reach the status bar through logs.
func Run(ctx context.Context, feed Feed, bus *inmemory.FeedBus, logs *LogHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to feed events: %w", err)
	}

	program := tea.NewProgram(NewModel(ctx, feed, events), tea.WithAltScreen(), tea.WithContext(ctx))
	if logs != nil {
		logs.SetProgram(program)
	}
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
