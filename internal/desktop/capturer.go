package desktop

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pion/mediadevices/pkg/driver"
)

// Capturer enumerates desktop sources of one kind.
type Capturer interface {
	Sources(ctx context.Context) ([]Source, error)
}

// DRMScreenCapturer reports one screen per connected DRM connector found
// under Root/sys/class/drm.
type DRMScreenCapturer struct {
	Root string
}

// NewDRMScreenCapturer creates a capturer over the real sysfs.
func NewDRMScreenCapturer() *DRMScreenCapturer {
	return &DRMScreenCapturer{Root: "/"}
}

// Sources implements Capturer. Connectors are named card0-HDMI-A-1 and so on;
// the screen name drops the card prefix.
func (c *DRMScreenCapturer) Sources(_ context.Context) ([]Source, error) {
	root := c.Root
	if root == "" {
		root = "/"
	}
	dir := filepath.Join(root, "sys", "class", "drm")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Source{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "card") && strings.Contains(e.Name(), "-") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sources := []Source{}
	for _, name := range names {
		status, err := os.ReadFile(filepath.Join(dir, name, "status"))
		if err != nil || strings.TrimSpace(string(status)) != "connected" {
			continue
		}
		_, connector, _ := strings.Cut(name, "-")
		sources = append(sources, Source{
			ID:   MediaID{Type: Screen, ID: connectorID(filepath.Join(dir, name), name)},
			Name: connector,
		})
	}
	return sources, nil
}

// connectorID is the kernel's connector_id when exposed. Older kernels lack
// it, so the ID falls back to a hash of the connector directory name. Either
// way a screen keeps its ID while other screens come and go.
func connectorID(dir, name string) int64 {
	if data, err := os.ReadFile(filepath.Join(dir, "connector_id")); err == nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil && id >= 0 {
			return id
		}
	}
	return int64(xxhash.Sum64String(name) & math.MaxInt64)
}

// PionScreenCapturer reports the screen drivers registered with the
// pion/mediadevices driver manager.
type PionScreenCapturer struct {
	query func() []driver.Driver
}

// NewPionScreenCapturer creates a capturer over the global driver manager.
func NewPionScreenCapturer() *PionScreenCapturer {
	return &PionScreenCapturer{query: func() []driver.Driver {
		return driver.GetManager().Query(driver.FilterDeviceType(driver.Screen))
	}}
}

// Sources implements Capturer.
func (c *PionScreenCapturer) Sources(_ context.Context) ([]Source, error) {
	drivers := c.query()
	sources := make([]Source, 0, len(drivers))
	for i, d := range drivers {
		name := d.Info().Label
		if name == "" {
			name = d.ID()
		}
		sources = append(sources, Source{
			ID:   MediaID{Type: Screen, ID: int64(i)},
			Name: name,
		})
	}
	return sources, nil
}

type unsupportedCapturer struct{}

func (unsupportedCapturer) Sources(_ context.Context) ([]Source, error) {
	return nil, ErrNotSupported
}

// CapturerFactory creates the platform capturers.
type CapturerFactory interface {
	NewScreenCapturer() Capturer
	NewWindowCapturer() Capturer
}

type defaultFactory struct{}

// DefaultFactory returns the factory for the running platform. Screens come
// from DRM connectors on Linux and from pion drivers elsewhere. Window
// enumeration is not supported.
func DefaultFactory() CapturerFactory {
	return defaultFactory{}
}

func (defaultFactory) NewScreenCapturer() Capturer {
	return newPlatformScreenCapturer()
}

func (defaultFactory) NewWindowCapturer() Capturer {
	return unsupportedCapturer{}
}

// FactoryFuncs builds a CapturerFactory from two constructors. A nil func
// yields nil capturers.
type FactoryFuncs struct {
	Screen func() Capturer
	Window func() Capturer
}

// NewScreenCapturer implements CapturerFactory.
func (f FactoryFuncs) NewScreenCapturer() Capturer {
	if f.Screen == nil {
		return nil
	}
	return f.Screen()
}

// NewWindowCapturer implements CapturerFactory.
func (f FactoryFuncs) NewWindowCapturer() Capturer {
	if f.Window == nil {
		return nil
	}
	return f.Window()
}

// StaticCapturer returns a fixed source list.
type StaticCapturer []Source

// Sources implements Capturer.
func (s StaticCapturer) Sources(_ context.Context) ([]Source, error) {
	out := make([]Source, len(s))
	copy(out, s)
	return out, nil
}
