//go:build linux

package capture

// Registers V4L2 cameras with the pion driver manager.
import _ "github.com/pion/mediadevices/pkg/driver/camera"
