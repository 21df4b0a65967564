// Package audio exposes the default audio sink through three entities: a
// volume number, a mute switch, and an output select, all driven by pactl.
package audio

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
const Name = "audio"

// defaultSink is pactl's reference to whichever sink is currently default.
const defaultSink = "@DEFAULT_SINK@"

const commandTimeout = 5 * time.Second

type mixer struct {
	logger integration.Logger

	volume *entity.Entity
	muted  *entity.Entity
	output *entity.Entity
}

// Activate verifies pactl is available, builds the entities, and starts the
// poll loop.
func Activate(ctx context.Context, rt *integration.Runtime) error {
	cfg := rt.Config.Integrations.Audio
	if cfg.Mixer != "pactl" {
		return fmt.Errorf("unsupported mixer %q", cfg.Mixer)
	}
	if _, err := exec.LookPath("pactl"); err != nil {
		return fmt.Errorf("%w: pactl not installed", integration.ErrMissingPrerequisite)
	}

	sinksOut, err := run(ctx, "list", "short", "sinks")
	if err != nil {
		return fmt.Errorf("%w: pulse server unreachable: %w", integration.ErrMissingPrerequisite, err)
	}
	sinks := parseSinks(sinksOut)
	if len(sinks) == 0 {
		return fmt.Errorf("%w: no audio sinks", integration.ErrMissingPrerequisite)
	}

	m := &mixer{logger: rt.Logger}

	m.volume, err = entity.NewNumber("volume", "Volume", 0, 100, 1, func(value float64) {
		m.setVolume(ctx, value)
	}, entity.WithIcon("mdi:volume-high"), entity.WithUnit("%"))
	if err != nil {
		return err
	}

	m.muted, err = entity.NewSwitch("muted", "Muted", func(on bool) {
		m.setMuted(ctx, on)
	}, entity.WithIcon("mdi:volume-mute"))
	if err != nil {
		return err
	}

	m.output, err = entity.NewSelect("audio_output", "Audio output", sinks, func(sink string) {
		m.setOutput(ctx, sink)
	}, entity.WithIcon("mdi:speaker"))
	if err != nil {
		return err
	}

	for _, e := range []*entity.Entity{m.volume, m.muted, m.output} {
		if err := rt.Bridge.Add(e); err != nil {
			return err
		}
	}

	m.refresh(ctx)
	go m.poll(ctx, time.Duration(cfg.PollInterval)*time.Second)
	return nil
}

func (m *mixer) poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

// refresh samples the mixer once and mirrors it into the entities.
func (m *mixer) refresh(ctx context.Context) {
	if out, err := run(ctx, "get-sink-volume", defaultSink); err == nil {
		if volume, ok := parseVolume(out); ok {
			m.volume.SetState(strconv.Itoa(volume))
		}
	} else {
		m.logger.Warn("volume read failed", "error", err)
	}

	if out, err := run(ctx, "get-sink-mute", defaultSink); err == nil {
		m.muted.SetBoolState(parseMute(out))
	}

	if out, err := run(ctx, "get-default-sink"); err == nil {
		if sink := strings.TrimSpace(out); sink != "" {
			m.output.SetState(sink)
		}
	}
}

func (m *mixer) setVolume(ctx context.Context, value float64) {
	percent := strconv.Itoa(int(value)) + "%"
	if _, err := run(ctx, "set-sink-volume", defaultSink, percent); err != nil {
		m.logger.Warn("volume change failed", "value", percent, "error", err)
		return
	}
	m.volume.SetState(strconv.Itoa(int(value)))
}

func (m *mixer) setMuted(ctx context.Context, on bool) {
	flag := "0"
	if on {
		flag = "1"
	}
	if _, err := run(ctx, "set-sink-mute", defaultSink, flag); err != nil {
		m.logger.Warn("mute change failed", "error", err)
		return
	}
	m.muted.SetBoolState(on)
}

func (m *mixer) setOutput(ctx context.Context, sink string) {
	if _, err := run(ctx, "set-default-sink", sink); err != nil {
		m.logger.Warn("output change failed", "sink", sink, "error", err)
		return
	}
	m.output.SetState(sink)
}

func run(ctx context.Context, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(cmdCtx, "pactl", args...).Output()
	if err != nil {
		return "", fmt.Errorf("pactl %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// parseVolume extracts the first percentage from get-sink-volume output,
// e.g. "Volume: front-left: 39332 /  60% / -13.31 dB, ...".
func parseVolume(out string) (int, bool) {
	for _, field := range strings.Fields(out) {
		if !strings.HasSuffix(field, "%") {
			continue
		}
		volume, err := strconv.Atoi(strings.TrimSuffix(field, "%"))
		if err != nil {
			continue
		}
		return volume, true
	}
	return 0, false
}

// parseMute reads get-sink-mute output, e.g. "Mute: yes".
func parseMute(out string) bool {
	return strings.Contains(out, "yes")
}

// parseSinks extracts sink names from `pactl list short sinks` output
// (index, name, module, format, state separated by tabs).
func parseSinks(out string) []string {
	var sinks []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
			continue
		}
		sinks = append(sinks, strings.TrimSpace(fields[1]))
	}
	return sinks
}
