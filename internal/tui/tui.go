package tui

import (
	"context"
	"fmt"
	"os"

	"sttmgr/config"
	"sttmgr/internal/controller"
	"sttmgr/internal/daemon"
	"sttmgr/internal/remote"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI. Writes go through the daemon when one is
// answering on its socket, otherwise straight to the settings file.
func Run() error {
	if !isTerminal() {
		return fmt.Errorf("sttmgr TUI requires a terminal. Use subcommands for non-interactive mode")
	}

	manager, err := config.NewManager()
	if err != nil {
		return err
	}

	var svc remote.Service = remote.NewLocal(manager)
	client := remote.NewClient(daemon.SocketPath())
	if client.Ping(context.Background()) == nil {
		svc = client
	}

	settings, err := manager.Load()
	if err != nil {
		return err
	}
	store := config.NewStore()
	store.Load(settings)

	ctrl := controller.New(store, svc)
	defer ctrl.Close()

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
	}
	if os.Getenv("TERM") != "" {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(NewModel(ctrl), opts...)
	_, err = p.Run()
	return err
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
