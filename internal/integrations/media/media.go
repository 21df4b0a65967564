// Package media aggregates every MPRIS player on the host into one
// media_player entity via playerctl. State is a composite JSON document;
// transport commands arrive on per-action sibling topics.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/nerrad567/hostlink/internal/entity"
	"github.com/nerrad567/hostlink/internal/integration"
)

// Name is the registry key for this integration.
const Name = "media"

const commandTimeout = 5 * time.Second

// metadataFormat asks playerctl for tab-separated fields we can split
// without touching the MPRIS metadata map ourselves.
const metadataFormat = "{{playerName}}\t{{title}}\t{{artist}}"

type player struct {
	e      *entity.Entity
	logger integration.Logger
}

// Activate verifies playerctl and exposes the aggregated player entity.
func Activate(ctx context.Context, rt *integration.Runtime) error {
	cfg := rt.Config.Integrations.Media
	if _, err := exec.LookPath("playerctl"); err != nil {
		return fmt.Errorf("%w: playerctl not installed", integration.ErrMissingPrerequisite)
	}

	p := &player{logger: rt.Logger}

	e, err := entity.NewMediaPlayer("media", "Media", entity.MediaCommands{
		Play:     func() { p.command(ctx, "play") },
		Pause:    func() { p.command(ctx, "pause") },
		Stop:     func() { p.command(ctx, "stop") },
		Next:     func() { p.command(ctx, "next") },
		Previous: func() { p.command(ctx, "previous") },
	})
	if err != nil {
		return err
	}
	if err := rt.Bridge.Add(e); err != nil {
		return err
	}
	p.e = e

	p.refresh(ctx)
	go p.poll(ctx, time.Duration(cfg.PollInterval)*time.Second)
	return nil
}

func (p *player) poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// refresh samples playerctl once and mirrors the composite state. A failing
// status command means no player is running, which is the "idle" state
// rather than an error.
func (p *player) refresh(ctx context.Context) {
	status, err := run(ctx, "status")
	if err != nil {
		p.setState("idle", "")
		return
	}

	metadata, err := run(ctx, "metadata", "--format", metadataFormat)
	if err != nil {
		metadata = ""
	}
	p.setState(strings.ToLower(strings.TrimSpace(status)), metadata)
}

func (p *player) setState(status, metadata string) {
	state, err := buildState(status, metadata)
	if err != nil {
		p.logger.Warn("media state marshal failed", "error", err)
		return
	}
	p.e.SetState(state)
}

func (p *player) command(ctx context.Context, action string) {
	if _, err := run(ctx, action); err != nil {
		p.logger.Warn("media command failed", "action", action, "error", err)
		return
	}
	p.refresh(ctx)
}

func run(ctx context.Context, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(cmdCtx, "playerctl", args...).Output()
	if err != nil {
		return "", fmt.Errorf("playerctl %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// buildState renders the composite JSON state from a status and a
// tab-separated metadata line.
func buildState(status, metadata string) (string, error) {
	doc := map[string]string{"status": status}

	fields := strings.Split(strings.TrimSpace(metadata), "\t")
	if len(fields) >= 1 && fields[0] != "" {
		doc["player"] = fields[0]
	}
	if len(fields) >= 2 && fields[1] != "" {
		doc["title"] = fields[1]
	}
	if len(fields) >= 3 && fields[2] != "" {
		doc["artist"] = fields[2]
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
