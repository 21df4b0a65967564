package integration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nerrad567/hostlink/internal/entity"
	"github.com/nerrad567/hostlink/internal/infrastructure/config"
	"github.com/nerrad567/hostlink/internal/infrastructure/database"
)

// settingsSection is the settings-store section holding one boolean
// enablement flag per integration, keyed by integration name.
const settingsSection = "integrations"

// Activation starts one integration: it creates entities on the bridge and
// may launch background goroutines bound to ctx. Returning
// ErrMissingPrerequisite means the host lacks a tool or resource the
// integration needs; that is a logged no-op, not a failure.
type Activation func(ctx context.Context, rt *Runtime) error

// Runtime is everything an activation gets to work with.
type Runtime struct {
	Bridge   *entity.Bridge
	Config   *config.Config
	Settings SettingsStore
	Logger   Logger
}

// SettingsStore is the persistence surface the registry reconciles against.
// *database.Settings satisfies it.
type SettingsStore interface {
	GetBool(ctx context.Context, section, key string) (bool, error)
	SetBool(ctx context.Context, section, key string, value bool) error
	Keys(ctx context.Context, section string) ([]string, error)
	Delete(ctx context.Context, section, key string) error
}

// Logger interface for registry diagnostics.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// registration is one declared integration.
type registration struct {
	name           string
	defaultEnabled bool
	activate       Activation
}

// Registry collects integration declarations at startup and reconciles them
// against the persisted enablement flags when the bridge boots.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Registry struct {
	mu      sync.Mutex
	entries map[string]registration
	ran     map[string]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]registration),
		ran:     make(map[string]bool),
	}
}

// Register declares an integration. Call order between integrations does
// not matter; LoadAndRun processes names in sorted order. defaultEnabled is
// persisted the first time the integration is ever seen and user changes to
// the stored flag win from then on.
func (r *Registry) Register(name string, defaultEnabled bool, activate Activation) error {
	if name == "" || activate == nil {
		return fmt.Errorf("%w: name and activation are required", ErrInvalidRegistration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	r.entries[name] = registration{
		name:           name,
		defaultEnabled: defaultEnabled,
		activate:       activate,
	}
	return nil
}

// Names returns the registered integration names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadAndRun reconciles the registered set against the persisted enablement
// flags and invokes every enabled activation exactly once per process.
//
// Reconciliation rules:
//   - first sight of an integration persists its default flag
//   - persisted flags for integrations no longer registered are pruned and
//     never invoked
//   - each activation is isolated: a panic or error in one is logged and
//     the others still run
//
// Returns an error only if the settings store itself is unusable.
func (r *Registry) LoadAndRun(ctx context.Context, rt *Runtime) error {
	persisted, err := rt.Settings.Keys(ctx, settingsSection)
	if err != nil {
		return fmt.Errorf("loading integration flags: %w", err)
	}

	r.mu.Lock()
	for _, key := range persisted {
		if _, known := r.entries[key]; !known {
			if err := rt.Settings.Delete(ctx, settingsSection, key); err != nil {
				rt.Logger.Warn("pruning stale integration flag failed", "integration", key, "error", err)
				continue
			}
			rt.Logger.Info("pruned stale integration flag", "integration", key)
		}
	}
	r.mu.Unlock()

	for _, name := range r.Names() {
		r.mu.Lock()
		reg := r.entries[name]
		alreadyRan := r.ran[name]
		r.mu.Unlock()
		if alreadyRan {
			continue
		}

		enabled, err := rt.Settings.GetBool(ctx, settingsSection, name)
		switch {
		case errors.Is(err, database.ErrSettingNotFound):
			enabled = reg.defaultEnabled
			if err := rt.Settings.SetBool(ctx, settingsSection, name, enabled); err != nil {
				rt.Logger.Warn("persisting integration default failed", "integration", name, "error", err)
			}
		case err != nil:
			rt.Logger.Warn("integration flag unreadable, skipping", "integration", name, "error", err)
			continue
		}

		if !enabled {
			rt.Logger.Debug("integration disabled", "integration", name)
			continue
		}

		r.mu.Lock()
		r.ran[name] = true
		r.mu.Unlock()
		r.invoke(ctx, rt, reg)
	}

	return nil
}

// invoke runs one activation with panic isolation.
func (r *Registry) invoke(ctx context.Context, rt *Runtime, reg registration) {
	defer func() {
		if p := recover(); p != nil {
			rt.Logger.Error("integration panicked", "integration", reg.name, "panic", p)
		}
	}()

	err := reg.activate(ctx, rt)
	switch {
	case err == nil:
		rt.Logger.Info("integration started", "integration", reg.name)
	case errors.Is(err, ErrMissingPrerequisite):
		rt.Logger.Info("integration prerequisite missing, skipping", "integration", reg.name, "reason", err)
	default:
		rt.Logger.Error("integration failed to start", "integration", reg.name, "error", err)
	}
}
