package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"phrasecounter/internal/storage"
	"phrasecounter/internal/storage/file"
	"phrasecounter/internal/tui"
)

// runTUI opens the interactive counter. Logs never reach the terminal:
// they go to the configured log file or are discarded.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(cmd, opts, io.Discard)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.startMetrics(); err != nil {
		return err
	}

	var watcher *file.Watcher
	if a.fileStore != nil {
		watcher, err = file.NewWatcher(a.fileStore, storage.CollectionPhrases)
		if err != nil {
			// Counting still works without live reloads
			a.logger.Warn().Err(err).Msg("Failed to watch data directory")
		} else {
			watcher.Start()
			defer func() { _ = watcher.Stop() }()
		}
	}

	model := tui.NewModel(tui.ModelOptions{
		Controller:   a.ctrl,
		TickInterval: a.cfg.TickInterval(),
		Theme:        a.cfg.Theme,
		Watcher:      watcher,
		Logger:       a.logger,
	})
	defer model.Close()

	a.logger.Info().Str("driver", a.cfg.Storage.Driver).Msg("Starting TUI")
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
