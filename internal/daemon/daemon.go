// Package daemon serves STT settings over a unix socket so short-lived
// CLI invocations and long-lived UIs read and mutate the same file
// through one process. It watches the settings file and reloads its
// cached snapshot when another writer touches it.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"sttmgr/config"
	"sttmgr/config/models"
	"sttmgr/internal/logging"
	"sttmgr/internal/remote"
)

const (
	// SocketName is the unix socket file name under the runtime dir.
	SocketName = "sttmgr.sock"
	// PIDName is the daemon PID file name under the runtime dir.
	PIDName = "daemon.pid"

	connDeadline   = 5 * time.Second
	reloadDebounce = 100 * time.Millisecond
)

// Daemon owns the settings manager, a cached snapshot for GET, the
// socket listener and the settings file watcher.
type Daemon struct {
	manager    *config.Manager
	local      *remote.Local
	socketPath string
	pidPath    string

	mu       sync.RWMutex
	snapshot models.Settings
	version  int64

	watcher   *fsnotify.Watcher
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	debouncer *time.Timer
	debMu     sync.Mutex
}

// RuntimeDir returns the directory holding the socket and PID file,
// $XDG_RUNTIME_DIR/sttmgr with a temp-dir fallback.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "sttmgr")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("sttmgr-%d", os.Getuid()))
}

// SocketPath returns the default daemon socket path.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), SocketName)
}

// New creates a Daemon over manager, with its socket and PID file under
// runtimeDir.
func New(manager *config.Manager, runtimeDir string) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		manager:    manager,
		local:      remote.NewLocal(manager),
		socketPath: filepath.Join(runtimeDir, SocketName),
		pidPath:    filepath.Join(runtimeDir, PIDName),
		version:    time.Now().Unix(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start brings the daemon up: socket cleanup, PID file, initial
// settings load, file watcher, listener and signal handling. It returns
// once everything is running.
func (d *Daemon) Start() error {
	if err := d.cleanupSocket(); err != nil {
		return fmt.Errorf("failed to clean up socket: %w", err)
	}
	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	if err := d.reload(); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := d.startWatcher(); err != nil {
		return fmt.Errorf("failed to start settings watcher: %w", err)
	}
	if err := d.startSocketServer(); err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	d.handleSignals()
	return nil
}

// Wait blocks until the daemon is stopped.
func (d *Daemon) Wait() {
	<-d.ctx.Done()
}

// Stop shuts the daemon down and removes its socket and PID file.
func (d *Daemon) Stop() {
	logging.Info("stopping daemon")
	d.cancel()

	if d.listener != nil {
		d.listener.Close()
	}
	if d.watcher != nil {
		d.watcher.Close()
	}
	os.Remove(d.socketPath)
	os.Remove(d.pidPath)
	logging.Info("daemon stopped")
}

func (d *Daemon) cleanupSocket() error {
	if _, err := os.Stat(d.socketPath); err == nil {
		if err := os.Remove(d.socketPath); err != nil {
			return err
		}
	}
	return os.MkdirAll(filepath.Dir(d.socketPath), 0700)
}

func (d *Daemon) writePIDFile() error {
	if err := os.MkdirAll(filepath.Dir(d.pidPath), 0700); err != nil {
		return err
	}
	return os.WriteFile(d.pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// reload reads the settings file through the manager and swaps the
// cached snapshot.
func (d *Daemon) reload() error {
	settings, err := d.manager.Load()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.snapshot = settings
	d.version = time.Now().Unix()
	version := d.version
	d.mu.Unlock()

	logging.Infof("settings loaded: provider=%s enabled=%t version=%d",
		settings.ProviderID, settings.Enabled, version)
	return nil
}

func (d *Daemon) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	d.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					d.debouncedReload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warnf("watcher error: %v", err)
			case <-d.ctx.Done():
				return
			}
		}
	}()

	// Watch the directory, not the file: atomic writes replace the
	// inode and a direct file watch goes stale after the first rename.
	settingsDir := filepath.Dir(d.manager.SettingsPath())
	if err := watcher.Add(settingsDir); err != nil {
		return err
	}
	logging.Infof("watching settings directory: %s", settingsDir)
	return nil
}

func (d *Daemon) debouncedReload() {
	d.debMu.Lock()
	defer d.debMu.Unlock()

	if d.debouncer != nil {
		d.debouncer.Stop()
	}
	d.debouncer = time.AfterFunc(reloadDebounce, func() {
		if err := d.reload(); err != nil {
			logging.Errorf("failed to reload settings: %v", err)
		}
	})
}

func (d *Daemon) startSocketServer() error {
	listener, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return err
	}
	d.listener = listener

	if err := os.Chmod(d.socketPath, 0600); err != nil {
		return err
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-d.ctx.Done():
					return
				default:
					logging.Warnf("accept error: %v", err)
					continue
				}
			}
			go d.handleConnection(conn)
		}
	}()

	logging.Infof("socket server listening on: %s", d.socketPath)
	return nil
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(connDeadline))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		logging.Warnf("read error: %v", err)
		return
	}

	response := d.processCommand(strings.TrimSpace(line))
	if _, err := conn.Write([]byte(response + "\n")); err != nil {
		logging.Warnf("write error: %v", err)
	}
}

// processCommand dispatches one protocol line. Mutations run through
// the same validated path the CLI uses, then refresh the snapshot so
// the next GET sees them without waiting for the watcher.
func (d *Daemon) processCommand(command string) string {
	parts := strings.Split(command, " ")
	if parts[0] == "" {
		return "ERROR: empty command"
	}

	switch parts[0] {
	case "GET":
		return d.handleGet()
	case "VERSION":
		return d.handleVersion()
	case "PING":
		return "PONG"
	case "RELOAD":
		if err := d.reload(); err != nil {
			return fmt.Sprintf("ERROR: %v", err)
		}
		return "OK"
	case "SET_ENABLED":
		if len(parts) != 2 {
			return "ERROR: SET_ENABLED requires one argument"
		}
		enabled, err := strconv.ParseBool(parts[1])
		if err != nil {
			return fmt.Sprintf("ERROR: invalid boolean: %s", parts[1])
		}
		return d.mutate(func(ctx context.Context) error {
			return d.local.SetEnabled(ctx, enabled)
		})
	case "SET_PROVIDER":
		args, err := unescapeArgs(parts[1:], 1)
		if err != nil {
			return fmt.Sprintf("ERROR: %v", err)
		}
		return d.mutate(func(ctx context.Context) error {
			return d.local.SetProvider(ctx, args[0])
		})
	case "SET_BASE_URL":
		args, err := unescapeArgs(parts[1:], 2)
		if err != nil {
			return fmt.Sprintf("ERROR: %v", err)
		}
		return d.mutate(func(ctx context.Context) error {
			return d.local.SetBaseURL(ctx, args[0], args[1])
		})
	case "SET_API_KEY":
		args, err := unescapeArgs(parts[1:], 2)
		if err != nil {
			return fmt.Sprintf("ERROR: %v", err)
		}
		return d.mutate(func(ctx context.Context) error {
			return d.local.SetAPIKey(ctx, args[0], args[1])
		})
	case "SET_MODEL":
		args, err := unescapeArgs(parts[1:], 2)
		if err != nil {
			return fmt.Sprintf("ERROR: %v", err)
		}
		return d.mutate(func(ctx context.Context) error {
			return d.local.SetModel(ctx, args[0], args[1])
		})
	default:
		return fmt.Sprintf("ERROR: unknown command: %s", parts[0])
	}
}

func (d *Daemon) mutate(fn func(context.Context) error) string {
	if err := fn(d.ctx); err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	if err := d.reload(); err != nil {
		logging.Errorf("failed to refresh snapshot after write: %v", err)
	}
	return "OK"
}

func (d *Daemon) handleGet() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := json.Marshal(d.snapshot)
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	return string(data)
}

func (d *Daemon) handleVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return strconv.FormatInt(d.version, 10)
}

// unescapeArgs decodes exactly want URL-escaped protocol arguments.
func unescapeArgs(parts []string, want int) ([]string, error) {
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d arguments, got %d", want, len(parts))
	}
	out := make([]string, want)
	for i, p := range parts {
		decoded, err := url.QueryUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("malformed argument: %s", p)
		}
		out[i] = decoded
	}
	return out, nil
}

func (d *Daemon) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigChan:
				switch sig {
				case syscall.SIGHUP:
					logging.Info("received SIGHUP, reloading settings")
					if err := d.reload(); err != nil {
						logging.Errorf("failed to reload settings: %v", err)
					}
				case syscall.SIGINT, syscall.SIGTERM:
					logging.Infof("received %v, shutting down", sig)
					d.Stop()
					return
				}
			case <-d.ctx.Done():
				return
			}
		}
	}()
}

// IsRunning reports whether a daemon process recorded in the PID file
// is alive.
func (d *Daemon) IsRunning() bool {
	data, err := os.ReadFile(d.pidPath)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
