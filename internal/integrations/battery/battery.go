// Package battery exposes one sensor per battery found under the kernel's
// power-supply class directory, reporting charge percentage with the supply
// status as attributes.
package battery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/hostlink/internal/entity"
	"github.com/nerrad567/hostlink/internal/integration"
)

// Name is the registry key for this integration.
const Name = "battery"

// Activate discovers batteries and starts the poll loop. Hosts without a
// battery (desktops) report a missing prerequisite.
func Activate(ctx context.Context, rt *integration.Runtime) error {
	cfg := rt.Config.Integrations.Battery

	names, err := discover(cfg.SysPath)
	if err != nil {
		return fmt.Errorf("%w: %s unreadable: %w", integration.ErrMissingPrerequisite, cfg.SysPath, err)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: no batteries under %s", integration.ErrMissingPrerequisite, cfg.SysPath)
	}

	sensors := make(map[string]*entity.Entity, len(names))
	for _, name := range names {
		sensor, err := entity.NewSensor(
			"battery_"+strings.ToLower(name),
			name+" charge",
			entity.WithDeviceClass("battery"),
			entity.WithUnit("%"),
			entity.WithStateClass("measurement"),
		)
		if err != nil {
			return fmt.Errorf("building battery sensor %s: %w", name, err)
		}
		if err := rt.Bridge.Add(sensor); err != nil {
			return fmt.Errorf("adding battery sensor %s: %w", name, err)
		}
		sensors[name] = sensor
	}

	refresh(cfg.SysPath, sensors, rt.Logger)
	go poll(ctx, cfg.SysPath, time.Duration(cfg.PollInterval)*time.Second, sensors, rt.Logger)
	return nil
}

// poll refreshes every battery sensor until ctx is cancelled.
func poll(ctx context.Context, sysPath string, interval time.Duration, sensors map[string]*entity.Entity, logger integration.Logger) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh(sysPath, sensors, logger)
		}
	}
}

// refresh reads every battery once and pushes readings to the sensors.
func refresh(sysPath string, sensors map[string]*entity.Entity, logger integration.Logger) {
	for name, sensor := range sensors {
		r, err := read(sysPath, name)
		if err != nil {
			logger.Warn("battery read failed", "battery", name, "error", err)
			continue
		}
		sensor.SetState(strconv.Itoa(r.Capacity))
		sensor.SetAttributes(map[string]any{
			"status":   r.Status,
			"charging": r.Status == "Charging",
		})
	}
}

// reading is one battery sample from sysfs.
type reading struct {
	Capacity int
	Status   string
}

// discover lists power supplies of type Battery under sysPath.
func discover(sysPath string) ([]string, error) {
	entries, err := os.ReadDir(sysPath)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		raw, err := os.ReadFile(filepath.Join(sysPath, e.Name(), "type"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(raw)) == "Battery" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// read samples one battery's capacity and status files.
func read(sysPath, name string) (reading, error) {
	base := filepath.Join(sysPath, name)

	rawCapacity, err := os.ReadFile(filepath.Join(base, "capacity"))
	if err != nil {
		return reading{}, fmt.Errorf("reading capacity: %w", err)
	}
	capacity, err := strconv.Atoi(strings.TrimSpace(string(rawCapacity)))
	if err != nil {
		return reading{}, fmt.Errorf("parsing capacity: %w", err)
	}

	status := "Unknown"
	if rawStatus, err := os.ReadFile(filepath.Join(base, "status")); err == nil {
		status = strings.TrimSpace(string(rawStatus))
	}

	return reading{Capacity: capacity, Status: status}, nil
}
