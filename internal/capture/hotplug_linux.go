//go:build linux

package capture

import (
	"context"
	"log/slog"

	"github.com/smazurov/capturehost/pkg/hotplug"
)

// startHotplug emits a trigger for every sound or video4linux add/remove
// uevent. A missing netlink socket (containers, sandboxes) is not an error.
func startHotplug(ctx context.Context, logger *slog.Logger) (<-chan struct{}, error) {
	mon, err := hotplug.NewMonitor()
	if err != nil {
		logger.Warn("Hotplug monitoring unavailable", "error", err)
		return nil, nil
	}
	mon.FilterSubsystem(hotplug.SubsystemSound, hotplug.SubsystemVideo4Linux)

	uevents := make(chan hotplug.Event, 16)
	triggers := make(chan struct{}, 1)

	go func() {
		defer mon.Close()
		if err := mon.Run(ctx, uevents); err != nil && ctx.Err() == nil {
			logger.Error("Hotplug monitor stopped", "error", err)
		}
	}()

	go func() {
		defer close(triggers)
		for ev := range uevents {
			if !ev.AffectsDeviceList() {
				continue
			}
			logger.Debug("Hotplug event", "action", ev.Action, "subsystem", ev.Subsystem, "dev", ev.DevName)
			select {
			case triggers <- struct{}{}:
			default:
			}
		}
	}()

	logger.Info("Hotplug monitoring started")
	return triggers, nil
}
