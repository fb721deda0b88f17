// Package registry loads model weights into named slots at startup and
// serves the sessions behind them.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"golang.org/x/xerrors"

	"github.com/marinelab/underwater-detect/config"
	"github.com/marinelab/underwater-detect/detections"
	"github.com/marinelab/underwater-detect/lgr"
)

// ErrNoModels means neither the trained weights nor the generic fallbacks
// could be loaded.
var ErrNoModels = errors.New("no models could be loaded")

// Slot is one named model with its session pool. Slots are populated once
// at startup and never mutated afterwards.
type Slot struct {
	Name string
	Path string
	Pool *SessionPool
}

type Registry struct {
	slots map[string]*Slot
	names []string
}

// Load tries every configured slot, skipping the ones whose weights are
// missing or broken. When nothing loads it retries the slots with their
// generic pretrained fallbacks.
func Load(cfg config.Config) (*Registry, error) {
	return load(cfg, detections.InitSession)
}

func load(cfg config.Config, factory SessionFactory) (*Registry, error) {
	r := &Registry{slots: map[string]*Slot{}}

	for _, slot := range cfg.Slots {
		if _, err := os.Stat(slot.Path); os.IsNotExist(err) {
			color.Yellow("⚠️ %s model not found: %s", slot.Name, slot.Path)
			continue
		}
		if err := r.add(slot.Name, slot.Path, cfg.PoolSize, factory); err != nil {
			color.Red("❌ Failed to load %s model: %v", slot.Name, err)
			lgr.Logger.Error("model load failed",
				slog.String("model", slot.Name),
				slog.Any("error", xerrors.New(err.Error())),
			)
			continue
		}
		color.Green("✅ Loaded %s model: %s", slot.Name, slot.Path)
	}

	if len(r.names) == 0 {
		color.Yellow("⚠️ Using default YOLO weights")
		for _, slot := range cfg.Slots {
			if err := r.add(slot.Name, slot.FallbackPath, cfg.PoolSize, factory); err != nil {
				lgr.Logger.Error("fallback model load failed",
					slog.String("model", slot.Name),
					slog.Any("error", xerrors.New(err.Error())),
				)
				continue
			}
			color.Green("✅ Loaded %s fallback model: %s", slot.Name, slot.FallbackPath)
		}
	}

	if len(r.names) == 0 {
		return nil, ErrNoModels
	}
	return r, nil
}

func (r *Registry) add(name, path string, poolSize int, factory SessionFactory) error {
	pool, err := newSessionPool(path, poolSize, factory)
	if err != nil {
		return err
	}
	r.slots[name] = &Slot{Name: name, Path: path, Pool: pool}
	r.names = append(r.names, name)
	return nil
}

// Get returns the slot for a model name.
func (r *Registry) Get(name string) (*Slot, bool) {
	slot, ok := r.slots[name]
	return slot, ok
}

// Names lists the loaded models in configuration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Default is the first loaded model, preselected by the UI.
func (r *Registry) Default() string {
	if len(r.names) == 0 {
		return ""
	}
	return r.names[0]
}

// Acquire grabs a session from the named slot's pool.
func (r *Registry) Acquire(ctx context.Context, name string) (*detections.ModelSession, *Slot, error) {
	slot, ok := r.Get(name)
	if !ok {
		return nil, nil, errors.New("unknown model " + name)
	}
	session, err := slot.Pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	return session, slot, nil
}

// Destroy tears down every pool.
func (r *Registry) Destroy() {
	for _, slot := range r.slots {
		slot.Pool.Destroy()
	}
}
