// Package shortcuts exposes config-defined buttons that run host commands,
// plus an event entity announcing every invocation.
package shortcuts

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/nerrad567/hostlink/internal/entity"
	"github.com/nerrad567/hostlink/internal/infrastructure/config"
	"github.com/nerrad567/hostlink/internal/integration"
)

// Name is the registry key for this integration.
const Name = "shortcuts"

// commandTimeout bounds shortcut commands so a hung script cannot pile up
// goroutines behind repeated presses.
const commandTimeout = 60 * time.Second

// Activate builds one button per configured shortcut and the shared
// invocation event entity.
func Activate(ctx context.Context, rt *integration.Runtime) error {
	buttons := rt.Config.Integrations.Shortcuts.Buttons
	if len(buttons) == 0 {
		return fmt.Errorf("%w: no shortcut buttons configured", integration.ErrMissingPrerequisite)
	}

	eventTypes := make([]string, 0, len(buttons))
	for _, b := range buttons {
		eventTypes = append(eventTypes, b.ID)
	}
	events, err := entity.NewEvent("shortcut", "Shortcut", eventTypes)
	if err != nil {
		return err
	}
	if err := rt.Bridge.Add(events); err != nil {
		return err
	}

	for _, b := range buttons {
		b := b
		name := b.Name
		if name == "" {
			name = b.ID
		}
		button, err := entity.NewButton("shortcut_"+b.ID, name, func() {
			go invoke(ctx, b, events, rt.Logger)
		})
		if err != nil {
			return fmt.Errorf("building shortcut %s: %w", b.ID, err)
		}
		if err := rt.Bridge.Add(button); err != nil {
			return fmt.Errorf("adding shortcut %s: %w", b.ID, err)
		}
	}

	return nil
}

// invoke runs one shortcut command and fires the invocation event. Runs on
// its own goroutine so slow commands never block the broker handler.
func invoke(ctx context.Context, b config.ShortcutButton, events *entity.Entity, logger integration.Logger) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	err := exec.CommandContext(cmdCtx, b.Command[0], b.Command[1:]...).Run()
	if err != nil {
		logger.Warn("shortcut command failed", "shortcut", b.ID, "error", err)
	}

	payload, merr := eventPayload(b.ID, err == nil)
	if merr != nil {
		logger.Warn("shortcut event marshal failed", "shortcut", b.ID, "error", merr)
		return
	}
	events.SetState(payload)
}

// eventPayload renders the event entity's state document.
func eventPayload(id string, ok bool) (string, error) {
	raw, err := json.Marshal(map[string]any{
		"event_type": id,
		"ok":         ok,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
