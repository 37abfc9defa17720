// Package system executes host-level commands (app launches, power
// control, volume) and answers system information queries. Every
// action returns a spoken confirmation; failures to spawn are logged
// but still confirmed, matching an assistant that acts best-effort.
package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Executor handles a system intent. The bool reports whether the
// intent was one of ours.
type Executor interface {
	Execute(ctx context.Context, intent string) (string, bool)
}

// commandRunner spawns a host process. Swapped out in tests.
type commandRunner func(ctx context.Context, name string, args ...string) error

func spawn(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Start()
}

// HostExecutor runs intents against the local machine.
type HostExecutor struct {
	log           zerolog.Logger
	run           commandRunner
	screenshotDir string
	stats         *statsReader
}

// Option configures a HostExecutor.
type Option func(*HostExecutor)

// WithRunner replaces the process spawner.
func WithRunner(r commandRunner) Option {
	return func(e *HostExecutor) { e.run = r }
}

// WithScreenshotDir overrides where screenshots land.
func WithScreenshotDir(dir string) Option {
	return func(e *HostExecutor) { e.screenshotDir = dir }
}

// NewHostExecutor builds an executor for the local host.
func NewHostExecutor(log zerolog.Logger, opts ...Option) *HostExecutor {
	home, _ := os.UserHomeDir()
	e := &HostExecutor{
		log:           log,
		run:           spawn,
		screenshotDir: filepath.Join(home, "Pictures", "jarvis"),
		stats:         newStatsReader(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs the intent and returns its confirmation.
func (e *HostExecutor) Execute(ctx context.Context, intent string) (string, bool) {
	switch intent {
	case "open_chrome":
		e.launch(ctx, "google-chrome")
		return "Opening Google Chrome.", true
	case "open_vscode":
		e.launch(ctx, "code")
		return "Opening Visual Studio Code.", true
	case "open_explorer":
		home, _ := os.UserHomeDir()
		e.launch(ctx, "xdg-open", home)
		return "Opening the file explorer.", true
	case "open_settings":
		e.launch(ctx, "gnome-control-center")
		return "Opening system settings.", true
	case "shutdown":
		e.launch(ctx, "shutdown", "-h", "now")
		return "Shutting down the system.", true
	case "restart":
		e.launch(ctx, "reboot")
		return "Restarting the system.", true
	case "volume_up":
		e.launch(ctx, "amixer", "-q", "set", "Master", "10%+")
		return "Increasing volume.", true
	case "volume_down":
		e.launch(ctx, "amixer", "-q", "set", "Master", "10%-")
		return "Decreasing volume.", true
	case "mute_volume":
		e.launch(ctx, "amixer", "-q", "set", "Master", "toggle")
		return "Volume muted.", true
	case "screenshot":
		return e.screenshot(ctx), true
	case "cpu_usage":
		return e.stats.CPUUsage(), true
	case "ram_usage":
		return e.stats.RAMUsage(), true
	case "gpu_usage":
		return e.stats.GPUUsage(ctx), true
	case "battery_status":
		return e.stats.BatteryStatus(), true
	case "disk_space":
		return e.stats.DiskSpace(), true
	case "network_status":
		return e.stats.NetworkStatus(), true
	}
	return "", false
}

func (e *HostExecutor) launch(ctx context.Context, name string, args ...string) {
	if err := e.run(ctx, name, args...); err != nil {
		e.log.Warn().Err(err).Str("command", name).Msg("system command failed to start")
	}
}

func (e *HostExecutor) screenshot(ctx context.Context) string {
	if err := os.MkdirAll(e.screenshotDir, 0o755); err != nil {
		e.log.Warn().Err(err).Msg("cannot create screenshot directory")
		return "I couldn't take a screenshot."
	}
	file := filepath.Join(e.screenshotDir,
		fmt.Sprintf("jarvis_screenshot_%s.png", time.Now().Format("20060102_150405")))
	if err := e.run(ctx, "scrot", file); err != nil {
		e.log.Warn().Err(err).Msg("screenshot command failed")
		return "I couldn't take a screenshot."
	}
	return fmt.Sprintf("Screenshot saved to %s.", file)
}
