// Package nightmode exposes the desktop night-light setting as a switch,
// read and written through gsettings.
package nightmode

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/hostlink/internal/entity"
	"github.com/nerrad567/hostlink/internal/integration"
)

// Name is the registry key for this integration.
const Name = "night_mode"

const (
	commandTimeout = 5 * time.Second

	// pollInterval catches changes made through the desktop's own UI.
	pollInterval = 30 * time.Second
)

type toggle struct {
	schema string
	key    string
	sw     *entity.Entity
	logger integration.Logger
}

// Activate verifies gsettings and the configured schema, then exposes the
// switch.
func Activate(ctx context.Context, rt *integration.Runtime) error {
	cfg := rt.Config.Integrations.NightMode
	if _, err := exec.LookPath("gsettings"); err != nil {
		return fmt.Errorf("%w: gsettings not installed", integration.ErrMissingPrerequisite)
	}

	t := &toggle{schema: cfg.Schema, key: cfg.Key, logger: rt.Logger}

	initial, err := t.read(ctx)
	if err != nil {
		return fmt.Errorf("%w: setting %s %s unreadable: %w", integration.ErrMissingPrerequisite, cfg.Schema, cfg.Key, err)
	}

	t.sw, err = entity.NewSwitch("night_mode", "Night mode", func(on bool) {
		t.apply(ctx, on)
	}, entity.WithIcon("mdi:weather-night"))
	if err != nil {
		return err
	}
	if err := rt.Bridge.Add(t.sw); err != nil {
		return err
	}
	t.sw.SetBoolState(initial)

	go t.poll(ctx)
	return nil
}

func (t *toggle) poll(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if on, err := t.read(ctx); err == nil {
				t.sw.SetBoolState(on)
			}
		}
	}
}

func (t *toggle) read(ctx context.Context) (bool, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(cmdCtx, "gsettings", "get", t.schema, t.key).Output()
	if err != nil {
		return false, fmt.Errorf("gsettings get %s %s: %w", t.schema, t.key, err)
	}
	return parseSetting(string(out))
}

func (t *toggle) apply(ctx context.Context, on bool) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	value := strconv.FormatBool(on)
	if err := exec.CommandContext(cmdCtx, "gsettings", "set", t.schema, t.key, value).Run(); err != nil {
		t.logger.Warn("night mode change failed", "value", value, "error", err)
		return
	}
	t.sw.SetBoolState(on)
}

// parseSetting parses gsettings boolean output ("true\n" or "false\n").
func parseSetting(out string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(out))
}
