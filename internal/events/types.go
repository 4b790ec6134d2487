package events

import "github.com/smazurov/capturehost/internal/mediadevices"

// Event type constants for kelindar/event.
const (
	TypeDevicesChanged uint32 = iota + 1
	TypeMediaRequestStateChanged
	TypeCreatingAudioStream
	TypeCapturingLinkSecured
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// Device kinds carried by DevicesChangedEvent.
const (
	KindAudio = "audio"
	KindVideo = "video"
)

// DevicesChangedEvent is published by the host when an enumeration produced a
// different device list for one kind.
type DevicesChangedEvent struct {
	Kind      string `json:"kind" example:"audio" doc:"Device kind: audio or video"`
	Count     int    `json:"count" example:"2" doc:"Number of devices after the change"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DevicesChangedEvent.
func (e DevicesChangedEvent) Type() uint32 { return TypeDevicesChanged }

// MediaRequestStateChangedEvent reports a state transition of a page's media request.
type MediaRequestStateChangedEvent struct {
	Request    mediadevices.RequestID    `json:"request"`
	Origin     string                    `json:"origin" example:"https://example.com" doc:"Security origin of the requesting page"`
	StreamType mediadevices.StreamType   `json:"stream_type"`
	State      mediadevices.RequestState `json:"state"`
}

// Type returns the event type identifier for MediaRequestStateChangedEvent.
func (e MediaRequestStateChangedEvent) Type() uint32 { return TypeMediaRequestStateChanged }

// CreatingAudioStreamEvent reports that a renderer is about to open an audio stream.
type CreatingAudioStreamEvent struct {
	RenderProcessID int `json:"render_process_id"`
	RenderFrameID   int `json:"render_frame_id"`
}

// Type returns the event type identifier for CreatingAudioStreamEvent.
func (e CreatingAudioStreamEvent) Type() uint32 { return TypeCreatingAudioStream }

// CapturingLinkSecuredEvent reports whether a capture link is secure.
type CapturingLinkSecuredEvent struct {
	Request    mediadevices.RequestID  `json:"request"`
	StreamType mediadevices.StreamType `json:"stream_type"`
	Secure     bool                    `json:"secure"`
}

// Type returns the event type identifier for CapturingLinkSecuredEvent.
func (e CapturingLinkSecuredEvent) Type() uint32 { return TypeCapturingLinkSecured }
