// Package dispatcher forwards media-device queries from the UI thread to the
// host's capture registry and desktop capturers.
//
// All methods must be called on the UI thread. The context passed in is the
// one handed to the current UI task; see threads.Runner.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/smazurov/capturehost/internal/capture"
	"github.com/smazurov/capturehost/internal/desktop"
	"github.com/smazurov/capturehost/internal/logging"
	"github.com/smazurov/capturehost/internal/mediadevices"
	"github.com/smazurov/capturehost/internal/metrics"
	"github.com/smazurov/capturehost/internal/threads"
)

// DeviceSource is the host registry the dispatcher reads device lists from.
// *capture.MediaCaptureDevices implements it.
type DeviceSource interface {
	AudioCaptureDevices() mediadevices.Devices
	VideoCaptureDevices() mediadevices.Devices
}

// Options configures a Dispatcher.
type Options struct {
	Host    DeviceSource
	Factory desktop.CapturerFactory
	Logger  *slog.Logger
}

// Dispatcher is the UI-thread facade over host device enumeration and
// desktop capture.
type Dispatcher struct {
	host    DeviceSource
	factory desktop.CapturerFactory
	logger  *slog.Logger

	enumerationDisabled atomic.Bool

	capturerMu     sync.Mutex
	screenCapturer desktop.Capturer
	windowCapturer desktop.Capturer
}

var (
	instance     *Dispatcher
	instanceOnce sync.Once
)

// GetInstance returns the process-wide dispatcher, creating it on first use
// over capture.Default and desktop.DefaultFactory.
func GetInstance() *Dispatcher {
	instanceOnce.Do(func() {
		instance = New(Options{
			Host:    capture.Default(),
			Factory: desktop.DefaultFactory(),
		})
	})
	return instance
}

// New creates a dispatcher. The screen and window capturers are created from
// opts.Factory right away.
func New(opts Options) *Dispatcher {
	if opts.Factory == nil {
		opts.Factory = desktop.DefaultFactory()
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger("dispatcher")
	}
	return &Dispatcher{
		host:           opts.Host,
		factory:        opts.Factory,
		logger:         opts.Logger,
		screenCapturer: opts.Factory.NewScreenCapturer(),
		windowCapturer: opts.Factory.NewWindowCapturer(),
	}
}

// AudioCaptureDevices returns the host's audio capture devices, or the empty
// list when enumeration is disabled.
func (d *Dispatcher) AudioCaptureDevices(ctx context.Context) mediadevices.Devices {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	if d.enumerationDisabled.Load() || d.host == nil {
		return mediadevices.Empty()
	}
	return d.host.AudioCaptureDevices()
}

// VideoCaptureDevices returns the host's video capture devices, or the empty
// list when enumeration is disabled.
func (d *Dispatcher) VideoCaptureDevices(ctx context.Context) mediadevices.Devices {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	if d.enumerationDisabled.Load() || d.host == nil {
		return mediadevices.Empty()
	}
	return d.host.VideoCaptureDevices()
}

// DefaultDevices returns the first audio device if audio is set, followed by
// the first video device if video is set. At least one must be requested.
func (d *Dispatcher) DefaultDevices(ctx context.Context, audio, video bool) mediadevices.Devices {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	if !threads.DCheck(audio || video, "DefaultDevices needs audio or video") {
		return mediadevices.Empty()
	}

	devices := make(mediadevices.Devices, 0, 2)
	if audio {
		if dev, ok := d.FirstAvailableAudioDevice(ctx); ok {
			devices = append(devices, dev)
		}
	}
	if video {
		if dev, ok := d.FirstAvailableVideoDevice(ctx); ok {
			devices = append(devices, dev)
		}
	}
	return devices
}

// RequestedAudioDevice looks up an audio capture device by ID.
func (d *Dispatcher) RequestedAudioDevice(ctx context.Context, id string) (mediadevices.Device, bool) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	dev, ok := d.AudioCaptureDevices(ctx).FindByID(id)
	metrics.RecordLookup("requested_audio", ok)
	return dev, ok
}

// RequestedVideoDevice looks up a video capture device by ID.
func (d *Dispatcher) RequestedVideoDevice(ctx context.Context, id string) (mediadevices.Device, bool) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	dev, ok := d.VideoCaptureDevices(ctx).FindByID(id)
	metrics.RecordLookup("requested_video", ok)
	return dev, ok
}

// FirstAvailableAudioDevice returns the first audio capture device.
func (d *Dispatcher) FirstAvailableAudioDevice(ctx context.Context) (mediadevices.Device, bool) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	dev, ok := d.AudioCaptureDevices(ctx).First()
	metrics.RecordLookup("first_audio", ok)
	return dev, ok
}

// FirstAvailableVideoDevice returns the first video capture device.
func (d *Dispatcher) FirstAvailableVideoDevice(ctx context.Context) (mediadevices.Device, bool) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	dev, ok := d.VideoCaptureDevices(ctx).First()
	metrics.RecordLookup("first_video", ok)
	return dev, ok
}

// DisableDeviceEnumerationForTesting makes every accessor return the empty
// list from now on. There is no way to turn enumeration back on.
func (d *Dispatcher) DisableDeviceEnumerationForTesting() {
	d.enumerationDisabled.Store(true)
	d.logger.Debug("Device enumeration disabled")
}

// EnumerationDisabled reports whether DisableDeviceEnumerationForTesting was called.
func (d *Dispatcher) EnumerationDisabled() bool {
	return d.enumerationDisabled.Load()
}

// CreateMediaList returns one media list per screen or window entry in types,
// in order. Other types are skipped. The capturers created with the
// dispatcher go to the first screen and window lists; later lists of the same
// type get new capturers from the factory.
func (d *Dispatcher) CreateMediaList(ctx context.Context, types []desktop.MediaIDType) []desktop.MediaList {
	threads.DCheckCurrentlyOn(ctx, threads.UI)

	lists := make([]desktop.MediaList, 0, len(types))
	for _, t := range types {
		switch t {
		case desktop.Screen:
			lists = append(lists, desktop.NewNativeMediaList(t, d.takeScreenCapturer()))
		case desktop.Window:
			lists = append(lists, desktop.NewNativeMediaList(t, d.takeWindowCapturer()))
		default:
			d.logger.Debug("Skipping unsupported media list type", "type", t.String())
		}
	}
	return lists
}

func (d *Dispatcher) takeScreenCapturer() desktop.Capturer {
	d.capturerMu.Lock()
	defer d.capturerMu.Unlock()
	if c := d.screenCapturer; c != nil {
		d.screenCapturer = nil
		return c
	}
	return d.factory.NewScreenCapturer()
}

func (d *Dispatcher) takeWindowCapturer() desktop.Capturer {
	d.capturerMu.Lock()
	defer d.capturerMu.Unlock()
	if c := d.windowCapturer; c != nil {
		d.windowCapturer = nil
		return c
	}
	return d.factory.NewWindowCapturer()
}
