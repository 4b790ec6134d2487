package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/capturehost/internal/events"
	"github.com/smazurov/capturehost/internal/logging"
	"github.com/smazurov/capturehost/internal/mediadevices"
	"github.com/smazurov/capturehost/internal/metrics"
)

const defaultHotplugDebounce = 500 * time.Millisecond

// MediaCaptureDevices is the host-owned cache of capture devices. Lists
// handed out are never modified; a refresh swaps in new slices.
type MediaCaptureDevices struct {
	enumerator Enumerator
	bus        *events.Bus
	debounce   time.Duration
	logger     *slog.Logger

	mu    sync.RWMutex
	audio mediadevices.Devices
	video mediadevices.Devices

	monitorMu sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option configures MediaCaptureDevices.
type Option func(*MediaCaptureDevices)

// WithEventBus publishes DevicesChangedEvent on bus after refreshes.
func WithEventBus(bus *events.Bus) Option {
	return func(m *MediaCaptureDevices) {
		m.bus = bus
	}
}

// WithHotplugDebounce sets how long hotplug bursts are coalesced before a
// refresh. Default is 500ms.
func WithHotplugDebounce(d time.Duration) Option {
	return func(m *MediaCaptureDevices) {
		m.debounce = d
	}
}

// NewMediaCaptureDevices creates a host device cache over enumerator. The cache
// starts empty; call Refresh to populate it.
func NewMediaCaptureDevices(enumerator Enumerator, opts ...Option) *MediaCaptureDevices {
	m := &MediaCaptureDevices{
		enumerator: enumerator,
		debounce:   defaultHotplugDebounce,
		logger:     logging.GetLogger("capture"),
		audio:      mediadevices.Devices{},
		video:      mediadevices.Devices{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AudioCaptureDevices returns the cached audio capture devices.
func (m *MediaCaptureDevices) AudioCaptureDevices() mediadevices.Devices {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.audio
}

// VideoCaptureDevices returns the cached video capture devices.
func (m *MediaCaptureDevices) VideoCaptureDevices() mediadevices.Devices {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.video
}

// Refresh re-enumerates devices and publishes a DevicesChangedEvent for each
// kind whose list changed. On error the cache keeps its previous contents.
func (m *MediaCaptureDevices) Refresh(ctx context.Context) error {
	audio, video, err := m.enumerator.Enumerate(ctx)
	metrics.RecordEnumeration(err)
	if err != nil {
		m.logger.Warn("Device enumeration failed", "error", err)
		return err
	}
	if audio == nil {
		audio = mediadevices.Devices{}
	}
	if video == nil {
		video = mediadevices.Devices{}
	}

	m.mu.Lock()
	audioChanged := !m.audio.Equal(audio)
	videoChanged := !m.video.Equal(video)
	if audioChanged {
		m.audio = audio
	}
	if videoChanged {
		m.video = video
	}
	m.mu.Unlock()

	metrics.SetDeviceCount(events.KindAudio, len(audio))
	metrics.SetDeviceCount(events.KindVideo, len(video))

	now := time.Now().Format(time.RFC3339)
	if audioChanged {
		m.logger.Info("Audio capture devices changed", "count", len(audio))
		m.publish(events.DevicesChangedEvent{Kind: events.KindAudio, Count: len(audio), Timestamp: now})
	}
	if videoChanged {
		m.logger.Info("Video capture devices changed", "count", len(video))
		m.publish(events.DevicesChangedEvent{Kind: events.KindVideo, Count: len(video), Timestamp: now})
	}
	return nil
}

func (m *MediaCaptureDevices) publish(ev events.DevicesChangedEvent) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

// StartMonitoring refreshes once and then keeps the cache current from
// kernel hotplug events until StopMonitoring or ctx cancellation. Platforms
// without hotplug support only get the initial refresh.
func (m *MediaCaptureDevices) StartMonitoring(ctx context.Context) error {
	m.monitorMu.Lock()
	defer m.monitorMu.Unlock()

	if m.cancel != nil {
		return nil
	}

	if err := m.Refresh(ctx); err != nil {
		m.logger.Warn("Initial device enumeration failed", "error", err)
	}

	monitorCtx, cancel := context.WithCancel(ctx)
	triggers, err := startHotplug(monitorCtx, m.logger)
	if err != nil {
		cancel()
		return err
	}

	m.cancel = cancel
	m.done = make(chan struct{})
	go m.refreshLoop(monitorCtx, triggers, m.done)
	return nil
}

// StopMonitoring stops hotplug monitoring and waits for the refresh loop.
func (m *MediaCaptureDevices) StopMonitoring() {
	m.monitorMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.monitorMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// refreshLoop coalesces triggers and refreshes once per quiet period.
func (m *MediaCaptureDevices) refreshLoop(ctx context.Context, triggers <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-triggers:
			if !ok {
				triggers = nil
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(m.debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			_ = m.Refresh(ctx)
		}
	}
}
