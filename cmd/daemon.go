package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"sttmgr/config"
	"sttmgr/internal/daemon"
	"sttmgr/internal/logging"

	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:    "daemon",
	Short:  "Manage the sttmgr daemon",
	Hidden: true, // Hide from main help
}

var daemonForeground bool

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sttmgr daemon",
	Run:   runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the sttmgr daemon",
	Run:   runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	Run:   runDaemonStatus,
}

var daemonRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the sttmgr daemon",
	Run:   runDaemonRestart,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonRestartCmd)
	daemonStartCmd.Flags().BoolVarP(&daemonForeground, "foreground", "f", false, "Run in the foreground and log to stderr")
}

func newDaemon() (*daemon.Daemon, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	return daemon.New(manager, daemon.RuntimeDir()), nil
}

func runDaemonStart(cmd *cobra.Command, args []string) {
	d, err := newDaemon()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create daemon: %v\n", err)
		os.Exit(1)
	}

	if d.IsRunning() {
		fmt.Println("Daemon is already running")
		return
	}

	if daemonForeground {
		logging.InitConsole()
		if err := d.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		d.Wait()
		return
	}

	// Fork to background if not already in background
	if os.Getppid() != 1 {
		executable, err := os.Executable()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get executable path: %v\n", err)
			os.Exit(1)
		}

		procAttr := &os.ProcAttr{
			Dir:   "/",
			Env:   os.Environ(),
			Files: []*os.File{nil, nil, nil}, // Detach from terminal
		}

		process, err := os.StartProcess(executable, []string{executable, "daemon", "start"}, procAttr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start daemon: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Daemon started (PID: %d)\n", process.Pid)
		process.Release()
		return
	}

	// Background process: log to file, run the daemon until signalled
	if err := logging.Init(logging.DefaultDir()); err == nil {
		defer logging.Close()
	}
	if err := d.Start(); err != nil {
		logging.Errorf("daemon failed to start: %v", err)
		os.Exit(1)
	}
	d.Wait()
}

func runDaemonStop(cmd *cobra.Command, args []string) {
	pidPath := filepath.Join(daemon.RuntimeDir(), daemon.PIDName)
	if data, err := os.ReadFile(pidPath); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			if process, err := os.FindProcess(pid); err == nil {
				if err := process.Signal(syscall.SIGTERM); err == nil {
					fmt.Printf("Daemon stopped (PID: %d)\n", pid)
					return
				}
			}
		}
	}

	fmt.Println("Daemon is not running")
}

func runDaemonStatus(cmd *cobra.Command, args []string) {
	d, err := newDaemon()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create daemon: %v\n", err)
		os.Exit(1)
	}

	if !d.IsRunning() {
		fmt.Println("Daemon is not running")
		return
	}

	pidPath := filepath.Join(daemon.RuntimeDir(), daemon.PIDName)
	if data, err := os.ReadFile(pidPath); err == nil {
		fmt.Printf("Daemon is running (PID: %s)\n", strings.TrimSpace(string(data)))
	} else {
		fmt.Println("Daemon is running")
	}

	socketPath := daemon.SocketPath()
	if _, err := os.Stat(socketPath); err == nil {
		fmt.Printf("Socket: %s\n", socketPath)
	}
}

func runDaemonRestart(cmd *cobra.Command, args []string) {
	runDaemonStop(cmd, args)
	runDaemonStart(cmd, args)
}
