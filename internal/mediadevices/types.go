package mediadevices

import "fmt"

// StreamType identifies what a media stream carries and where it comes from.
type StreamType int

// Stream types.
const (
	NoService StreamType = iota
	DeviceAudioCapture
	DeviceVideoCapture
	TabAudioCapture
	TabVideoCapture
	DesktopVideoCapture
	DesktopAudioCapture
)

var streamTypeNames = map[StreamType]string{
	NoService:           "none",
	DeviceAudioCapture:  "device_audio_capture",
	DeviceVideoCapture:  "device_video_capture",
	TabAudioCapture:     "tab_audio_capture",
	TabVideoCapture:     "tab_video_capture",
	DesktopVideoCapture: "desktop_video_capture",
	DesktopAudioCapture: "desktop_audio_capture",
}

func (t StreamType) String() string {
	if name, ok := streamTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseStreamType is the inverse of StreamType.String.
func ParseStreamType(s string) (StreamType, error) {
	for t, name := range streamTypeNames {
		if name == s {
			return t, nil
		}
	}
	return NoService, fmt.Errorf("unknown stream type %q", s)
}

// IsAudio reports whether the stream carries audio.
func (t StreamType) IsAudio() bool {
	return t == DeviceAudioCapture || t == TabAudioCapture || t == DesktopAudioCapture
}

// IsVideo reports whether the stream carries video.
func (t StreamType) IsVideo() bool {
	return t == DeviceVideoCapture || t == TabVideoCapture || t == DesktopVideoCapture
}

// RequestState is the lifecycle state of a page's media request.
type RequestState int

// Request states.
const (
	NotRequested RequestState = iota
	Requested
	PendingApproval
	Opening
	Done
	Closing
	Error
)

func (s RequestState) String() string {
	switch s {
	case NotRequested:
		return "not_requested"
	case Requested:
		return "requested"
	case PendingApproval:
		return "pending_approval"
	case Opening:
		return "opening"
	case Done:
		return "done"
	case Closing:
		return "closing"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// ParseRequestState is the inverse of RequestState.String.
func ParseRequestState(s string) (RequestState, error) {
	for state := NotRequested; state <= Error; state++ {
		if state.String() == s {
			return state, nil
		}
	}
	return NotRequested, fmt.Errorf("unknown request state %q", s)
}

// RequestID identifies a media request issued by a page.
type RequestID struct {
	RenderProcessID int
	RenderFrameID   int
	PageRequestID   int
}
