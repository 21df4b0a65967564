// Package containers exposes one switch per container known to the local
// docker or podman CLI. Switches start and stop containers; the set tracks
// container creation and removal while the bridge runs.
package containers

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/nerrad567/hostlink/internal/entity"
	"github.com/nerrad567/hostlink/internal/integration"
)

// Name is the registry key for this integration.
const Name = "containers"

// commandTimeout bounds every container CLI invocation.
const commandTimeout = 10 * time.Second

type watcher struct {
	runtime string
	bridge  *entity.Bridge
	logger  integration.Logger

	// switches maps container name to its switch entity. Only the poll
	// goroutine mutates it.
	switches map[string]*entity.Entity
}

// Activate verifies the container CLI exists and starts the watch loop.
func Activate(ctx context.Context, rt *integration.Runtime) error {
	cfg := rt.Config.Integrations.Containers
	if cfg.Runtime != "docker" && cfg.Runtime != "podman" {
		return fmt.Errorf("unsupported container runtime %q", cfg.Runtime)
	}
	if _, err := exec.LookPath(cfg.Runtime); err != nil {
		return fmt.Errorf("%w: %s not installed", integration.ErrMissingPrerequisite, cfg.Runtime)
	}

	w := &watcher{
		runtime:  cfg.Runtime,
		bridge:   rt.Bridge,
		logger:   rt.Logger,
		switches: make(map[string]*entity.Entity),
	}

	w.reconcile(ctx)
	go w.poll(ctx, time.Duration(cfg.PollInterval)*time.Second)
	return nil
}

func (w *watcher) poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reconcile(ctx)
		}
	}
}

// reconcile aligns the switch set with the containers the CLI reports:
// new containers gain a switch, removed containers lose theirs, and every
// surviving switch mirrors the running state.
func (w *watcher) reconcile(ctx context.Context) {
	out, err := w.run(ctx, "ps", "-a", "--format", "{{.Names}}\t{{.State}}")
	if err != nil {
		w.logger.Warn("container listing failed", "runtime", w.runtime, "error", err)
		return
	}
	current := parseList(out)

	for name, running := range current {
		sw, known := w.switches[name]
		if !known {
			sw, err = w.addSwitch(ctx, name)
			if err != nil {
				w.logger.Warn("adding container switch failed", "container", name, "error", err)
				continue
			}
			w.switches[name] = sw
		}
		sw.SetBoolState(running)
	}

	for name, sw := range w.switches {
		if _, alive := current[name]; alive {
			continue
		}
		if err := w.bridge.Remove(sw.ID()); err != nil {
			w.logger.Warn("removing container switch failed", "container", name, "error", err)
		}
		delete(w.switches, name)
	}
}

func (w *watcher) addSwitch(ctx context.Context, name string) (*entity.Entity, error) {
	sw, err := entity.NewSwitch(
		"container_"+sanitise(name),
		name,
		func(on bool) { w.apply(ctx, name, on) },
		entity.WithIcon("mdi:docker"),
	)
	if err != nil {
		return nil, err
	}
	if err := w.bridge.Add(sw); err != nil {
		return nil, err
	}
	return sw, nil
}

// apply starts or stops a container in response to a switch command.
func (w *watcher) apply(ctx context.Context, name string, on bool) {
	action := "stop"
	if on {
		action = "start"
	}
	if _, err := w.run(ctx, action, name); err != nil {
		w.logger.Warn("container command failed", "container", name, "action", action, "error", err)
		return
	}
	// Echo through the bridge: commands arrive on broker goroutines while
	// the poll goroutine owns w.switches.
	if sw, ok := w.bridge.Get("container_" + sanitise(name)); ok {
		sw.SetBoolState(on)
	}
}

// run invokes the container CLI with a bounded timeout.
func (w *watcher) run(ctx context.Context, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(cmdCtx, w.runtime, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", w.runtime, strings.Join(args, " "), err)
	}
	return string(out), nil
}

// parseList parses "name\tstate" lines into a name to running map.
func parseList(out string) map[string]bool {
	containers := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, state, found := strings.Cut(line, "\t")
		if !found || name == "" {
			continue
		}
		containers[name] = strings.EqualFold(strings.TrimSpace(state), "running")
	}
	return containers
}

// sanitise maps a container name onto the topic-safe ID alphabet.
func sanitise(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}
