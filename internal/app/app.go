package app

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/bimview/internal/backend"
	"github.com/atomicstack/bimview/internal/checks"
	"github.com/atomicstack/bimview/internal/logging"
	"github.com/atomicstack/bimview/internal/logging/events"
	"github.com/atomicstack/bimview/internal/session"
	"github.com/atomicstack/bimview/internal/storage/sqlite"
	"github.com/atomicstack/bimview/internal/ui"
	"github.com/atomicstack/bimview/internal/viewer"
)

// Config describes user-provided application options.
type Config struct {
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	RootMenu   string
	DBPath     string
	ChecksPath string
	Watch      bool
	Paths      []string
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	set := checks.Defaults()
	if cfg.ChecksPath != "" {
		loaded, err := checks.Load(cfg.ChecksPath)
		if err != nil {
			return fmt.Errorf("load checks: %w", err)
		}
		set = loaded
	}

	opts := []session.Option{session.WithChecks(set)}
	watchOpts := backend.Options{Interval: 5 * time.Second, WatchFiles: cfg.Watch}
	if cfg.DBPath != "" {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error(err)
			}
		}()
		opts = append(opts, session.WithHistory(store))
		watchOpts.Recent = store
	}

	sess, err := session.New(viewer.NewEngine(), opts...)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer sess.Close()

	watcher := backend.NewWatcher(sess, watchOpts)
	defer func() {
		watcher.Stop()
		watcher.Wait()
	}()

	model := ui.NewModel(sess, cfg.Width, cfg.Height, cfg.ShowFooter, cfg.Verbose, watcher, cfg.RootMenu)
	model.OpenOnStart(cfg.Paths...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	events.App.Stop(sess.ID)
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
