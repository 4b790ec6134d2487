//go:build !linux

package capture

import (
	"context"
	"log/slog"
)

func startHotplug(_ context.Context, logger *slog.Logger) (<-chan struct{}, error) {
	logger.Debug("Hotplug monitoring not supported on this platform")
	return nil, nil
}
