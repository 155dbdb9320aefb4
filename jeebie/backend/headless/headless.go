package headless

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/valerio/go-jeebie-dbg/jeebie/backend"
	"github.com/valerio/go-jeebie-dbg/jeebie/debug"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/action"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/event"
)

// Backend implements the Backend interface for scripted sessions and batch
// processing. It prints every new step as text and can drive the remote
// machine forward a fixed number of steps.
type Backend struct {
	config         backend.BackendConfig
	out            io.Writer
	maxSteps       int
	snapshotConfig SnapshotConfig

	started   bool
	lastSteps uint64
	stepCount int
	done      bool
	last      *debug.CompleteDebugData
}

// SnapshotConfig holds configuration for step snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N steps
	Directory string // Directory to save snapshots
	Name      string // Session name for snapshot filenames
}

// New creates a headless backend writing step dumps to out. With maxSteps > 0
// the backend requests steps until that many have been observed, then quits.
func New(out io.Writer, maxSteps int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		out:            out,
		maxSteps:       maxSteps,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config

	slog.Info("Running headless mode",
		"steps", h.maxSteps,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update dumps the view when the step counter moved and requests the next
// step when the session is waiting for one.
func (h *Backend) Update(data *debug.CompleteDebugData) ([]backend.InputEvent, error) {
	if data == nil || h.done {
		return nil, nil
	}
	h.last = data

	if !h.started || data.Steps != h.lastSteps {
		if h.started && data.Steps > h.lastSteps {
			h.stepCount++
		}
		h.started = true
		h.lastSteps = data.Steps

		if err := debug.WriteText(h.out, data); err != nil {
			return nil, fmt.Errorf("failed to write step %d: %w", data.Steps, err)
		}
		if _, err := io.WriteString(h.out, "\n"); err != nil {
			return nil, err
		}

		if h.snapshotConfig.Enabled && h.stepCount > 0 && h.stepCount%h.snapshotConfig.Interval == 0 {
			h.saveSnapshot(data)
		}

		// Log progress periodically
		if h.stepCount > 0 && h.stepCount%10 == 0 {
			slog.Info("Step progress", "completed", h.stepCount, "total", h.maxSteps)
		}
	}

	if h.maxSteps <= 0 {
		return nil, nil
	}

	if h.stepCount >= h.maxSteps {
		h.done = true
		if h.snapshotConfig.Enabled && h.stepCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(data)
		}
		if h.snapshotConfig.Enabled {
			slog.Info("Headless execution completed", "steps", h.stepCount, "snapshots_saved_to", h.snapshotConfig.Directory)
		} else {
			slog.Info("Headless execution completed", "steps", h.stepCount)
		}
		return []backend.InputEvent{{Action: action.DebuggerQuit, Type: event.Press}}, nil
	}

	switch data.DebuggerState {
	case debug.DebuggerConnected, debug.DebuggerPaused:
		// steps fire on release, like the step key
		return []backend.InputEvent{{Action: action.DebuggerStep, Type: event.Release}}, nil
	}
	return nil, nil
}

// HandleAction saves a snapshot on request; the other UI actions have no
// meaning without a screen.
func (h *Backend) HandleAction(act action.Action) {
	if act == action.DebuggerSnapshot && h.last != nil {
		if h.snapshotConfig.Directory == "" {
			debug.TakeSnapshot(h.last)
			return
		}
		h.saveSnapshot(h.last)
	}
}

func (h *Backend) Cleanup() error {
	return nil
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, name string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		Name:     name,
	}

	if !config.Enabled {
		return config, nil
	}

	// Set up snapshot directory
	if directory == "" {
		tempDir, err := os.MkdirTemp("", "jeebie-dbg-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	if config.Name == "" {
		config.Name = "session"
	}

	return config, nil
}

// saveSnapshot saves a text snapshot for the current step
func (h *Backend) saveSnapshot(data *debug.CompleteDebugData) {
	baseName := fmt.Sprintf("%s_step_%d", h.snapshotConfig.Name, data.Steps)

	if _, err := debug.SaveTextToDir(data, baseName, h.snapshotConfig.Directory); err != nil {
		slog.Error("Failed to save snapshot", "step", data.Steps, "error", err)
	}
}
