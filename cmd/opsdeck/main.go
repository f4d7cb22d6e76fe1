// Package main is the entry point for the OpsDeck TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/app"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/logger"
	"github.com/opsdeck/opsdeck/internal/services"
	"github.com/opsdeck/opsdeck/internal/ui/tabs/alerts"
	"github.com/opsdeck/opsdeck/internal/ui/tabs/anomalies"
	"github.com/opsdeck/opsdeck/internal/ui/tabs/assistant"
	"github.com/opsdeck/opsdeck/internal/ui/tabs/dashboard"
	"github.com/opsdeck/opsdeck/internal/ui/tabs/infra"
	"github.com/opsdeck/opsdeck/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Log to a file when configured; the TUI owns the terminal.
	if err := logger.Setup(cfg.LogPath); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	// The manager starts the pollers: realtime usage, monitoring
	// aggregates, anomaly refresh, and the tenant profile watcher.
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Each tab shares the root state; data loads go through the manager.
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state, svcManager),
		anomalies.New(state, svcManager),
		alerts.New(state, svcManager),
		infra.New(state, svcManager),
		assistant.New(state, svcManager),
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`OpsDeck - AI operations monitoring dashboard for the Nexora platform

Usage:
  opsdeck [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-5             Switch between tabs (Dashboard, Anomalies, Alerts, Infra, Assistant)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  Enter           Select/confirm
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment:
  NEXORA_API_URL     Base URL of the Nexora API
  NEXORA_API_TOKEN   API token for the active tenant
  OPSDECK_LOG        Log file path (logging disabled when unset)`)
}
