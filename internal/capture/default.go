package capture

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Enumeration backends selectable by name.
const (
	BackendSysfs = "sysfs"
	BackendPion  = "pion"
	BackendFile  = "file"
)

var (
	defaultMu   sync.Mutex
	defaultHost *MediaCaptureDevices
)

// Default returns the process-wide host device cache. Unless SetDefault was
// called first, it is built over PlatformEnumerator and refreshed once.
func Default() *MediaCaptureDevices {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultHost == nil {
		defaultHost = NewMediaCaptureDevices(PlatformEnumerator())
		_ = defaultHost.Refresh(context.Background())
	}
	return defaultHost
}

// SetDefault installs m as the process-wide host device cache.
func SetDefault(m *MediaCaptureDevices) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultHost = m
}

// PlatformEnumerator returns the enumerator suited to the running OS.
func PlatformEnumerator() Enumerator {
	if runtime.GOOS == "linux" {
		return NewSysfsEnumerator()
	}
	return NewPionEnumerator()
}

// NewEnumerator builds an enumerator from backend names, in order. deviceFile
// is required by the file backend.
func NewEnumerator(backends []string, deviceFile string) (Enumerator, error) {
	if len(backends) == 0 {
		return PlatformEnumerator(), nil
	}

	multi := make(MultiEnumerator, 0, len(backends))
	for _, name := range backends {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case BackendSysfs:
			multi = append(multi, NewSysfsEnumerator())
		case BackendPion:
			multi = append(multi, NewPionEnumerator())
		case BackendFile:
			if deviceFile == "" {
				return nil, fmt.Errorf("backend %q requires a device file", BackendFile)
			}
			multi = append(multi, NewFileEnumerator(deviceFile))
		default:
			return nil, fmt.Errorf("unknown enumeration backend %q", name)
		}
	}

	if len(multi) == 1 {
		return multi[0], nil
	}
	return multi, nil
}
