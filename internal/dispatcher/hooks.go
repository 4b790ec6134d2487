package dispatcher

import (
	"context"
	"net/url"

	"github.com/smazurov/capturehost/internal/events"
	"github.com/smazurov/capturehost/internal/mediadevices"
	"github.com/smazurov/capturehost/internal/threads"
)

// OnAudioCaptureDevicesChanged is called when the host's audio list changes.
func (d *Dispatcher) OnAudioCaptureDevicesChanged(ctx context.Context) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	d.logger.Debug("Audio capture devices changed")
}

// OnVideoCaptureDevicesChanged is called when the host's video list changes.
func (d *Dispatcher) OnVideoCaptureDevicesChanged(ctx context.Context) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	d.logger.Debug("Video capture devices changed")
}

// OnMediaRequestStateChanged is called on every media request transition.
func (d *Dispatcher) OnMediaRequestStateChanged(ctx context.Context, req mediadevices.RequestID, origin *url.URL, streamType mediadevices.StreamType, state mediadevices.RequestState) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	originStr := ""
	if origin != nil {
		originStr = origin.String()
	}
	d.logger.Debug("Media request state changed",
		"render_process_id", req.RenderProcessID,
		"render_frame_id", req.RenderFrameID,
		"page_request_id", req.PageRequestID,
		"origin", originStr,
		"stream_type", streamType.String(),
		"state", state.String())
}

// OnCreatingAudioStream is called before a renderer opens an audio stream.
func (d *Dispatcher) OnCreatingAudioStream(ctx context.Context, renderProcessID, renderFrameID int) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	d.logger.Debug("Creating audio stream",
		"render_process_id", renderProcessID,
		"render_frame_id", renderFrameID)
}

// OnSetCapturingLinkSecured is called when a capture link's security changes.
func (d *Dispatcher) OnSetCapturingLinkSecured(ctx context.Context, req mediadevices.RequestID, streamType mediadevices.StreamType, secure bool) {
	threads.DCheckCurrentlyOn(ctx, threads.UI)
	d.logger.Debug("Capturing link secured",
		"render_process_id", req.RenderProcessID,
		"render_frame_id", req.RenderFrameID,
		"page_request_id", req.PageRequestID,
		"stream_type", streamType.String(),
		"secure", secure)
}

// Observe subscribes the hooks to bus. Every event is delivered on runner,
// which must be the UI runner. The returned func unsubscribes.
func (d *Dispatcher) Observe(bus *events.Bus, runner *threads.Runner) func() {
	post := func(task threads.Task) {
		if err := runner.PostTask(task); err != nil {
			d.logger.Warn("Dropping event", "error", err)
		}
	}

	unsubs := []func(){
		bus.Subscribe(func(e events.DevicesChangedEvent) {
			post(func(ctx context.Context) {
				switch e.Kind {
				case events.KindAudio:
					d.OnAudioCaptureDevicesChanged(ctx)
				case events.KindVideo:
					d.OnVideoCaptureDevicesChanged(ctx)
				}
			})
		}),
		bus.Subscribe(func(e events.MediaRequestStateChangedEvent) {
			post(func(ctx context.Context) {
				var origin *url.URL
				if e.Origin != "" {
					if u, err := url.Parse(e.Origin); err == nil {
						origin = u
					}
				}
				d.OnMediaRequestStateChanged(ctx, e.Request, origin, e.StreamType, e.State)
			})
		}),
		bus.Subscribe(func(e events.CreatingAudioStreamEvent) {
			post(func(ctx context.Context) {
				d.OnCreatingAudioStream(ctx, e.RenderProcessID, e.RenderFrameID)
			})
		}),
		bus.Subscribe(func(e events.CapturingLinkSecuredEvent) {
			post(func(ctx context.Context) {
				d.OnSetCapturingLinkSecured(ctx, e.Request, e.StreamType, e.Secure)
			})
		}),
	}

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
