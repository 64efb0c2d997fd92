package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baturay/inkwell/internal/config"
	"github.com/baturay/inkwell/internal/store"
	"github.com/baturay/inkwell/internal/timer"
	"github.com/baturay/inkwell/internal/tui"
	"github.com/baturay/inkwell/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("INKWELL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Debug, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logger: %v\n", err)
		os.Exit(1)
	}

	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Error(err, "open store")
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	notes := tui.NewNotifier()
	engine := timer.New(s, notes)

	logger.Infof("starting with database %s", cfg.Database.Path)

	app := tui.NewApp(s, engine, notes)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error(err, "tui exited")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
