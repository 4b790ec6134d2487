package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/capturehost/internal/events"
	"github.com/smazurov/capturehost/internal/mediadevices"
)

// RequestRef identifies the page request a report is about.
type RequestRef struct {
	RenderProcessID int `json:"render_process_id" example:"12" doc:"Renderer process"`
	RenderFrameID   int `json:"render_frame_id" example:"3" doc:"Frame within the renderer"`
	PageRequestID   int `json:"page_request_id" example:"1" doc:"Request within the page"`
}

func (r RequestRef) id() mediadevices.RequestID {
	return mediadevices.RequestID{
		RenderProcessID: r.RenderProcessID,
		RenderFrameID:   r.RenderFrameID,
		PageRequestID:   r.PageRequestID,
	}
}

// RequestStateInput reports a media request state transition.
type RequestStateInput struct {
	Body struct {
		RequestRef
		Origin     string `json:"origin,omitempty" example:"https://example.com" doc:"Security origin of the page"`
		StreamType string `json:"stream_type" enum:"none,device_audio_capture,device_video_capture,tab_audio_capture,tab_video_capture,desktop_video_capture,desktop_audio_capture"`
		State      string `json:"state" enum:"not_requested,requested,pending_approval,opening,done,closing,error"`
	}
}

// AudioStreamInput reports that a renderer is opening an audio stream.
type AudioStreamInput struct {
	Body struct {
		RenderProcessID int `json:"render_process_id" example:"12"`
		RenderFrameID   int `json:"render_frame_id" example:"3"`
	}
}

// LinkSecuredInput reports whether a capture link is secure.
type LinkSecuredInput struct {
	Body struct {
		RequestRef
		StreamType string `json:"stream_type" enum:"none,device_audio_capture,device_video_capture,tab_audio_capture,tab_video_capture,desktop_video_capture,desktop_audio_capture"`
		Secure     bool   `json:"secure"`
	}
}

// registerRequestRoutes lets the embedding host report media request
// activity. Reports are published on the event bus and reach the dispatcher
// hooks and SSE clients.
func (s *Server) registerRequestRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "report-request-state",
		Method:        http.MethodPost,
		Path:          "/api/requests/state",
		Summary:       "Report Request State",
		Description:   "Report a state change of a page's media request",
		Tags:          []string{"requests"},
		Security:      withAuth(),
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{400, 401},
	}, s.reportRequestState)

	huma.Register(s.api, huma.Operation{
		OperationID:   "report-audio-stream",
		Method:        http.MethodPost,
		Path:          "/api/requests/audio-stream",
		Summary:       "Report Audio Stream",
		Description:   "Report that a renderer is creating an audio stream",
		Tags:          []string{"requests"},
		Security:      withAuth(),
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{401},
	}, s.reportAudioStream)

	huma.Register(s.api, huma.Operation{
		OperationID:   "report-link-secured",
		Method:        http.MethodPost,
		Path:          "/api/requests/link-secured",
		Summary:       "Report Link Security",
		Description:   "Report whether a capture link is secure",
		Tags:          []string{"requests"},
		Security:      withAuth(),
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{400, 401},
	}, s.reportLinkSecured)
}

func (s *Server) reportRequestState(_ context.Context, input *RequestStateInput) (*struct{}, error) {
	streamType, err := mediadevices.ParseStreamType(input.Body.StreamType)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	state, err := mediadevices.ParseRequestState(input.Body.State)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	s.options.EventBus.Publish(events.MediaRequestStateChangedEvent{
		Request:    input.Body.id(),
		Origin:     input.Body.Origin,
		StreamType: streamType,
		State:      state,
	})
	return &struct{}{}, nil
}

func (s *Server) reportAudioStream(_ context.Context, input *AudioStreamInput) (*struct{}, error) {
	s.options.EventBus.Publish(events.CreatingAudioStreamEvent{
		RenderProcessID: input.Body.RenderProcessID,
		RenderFrameID:   input.Body.RenderFrameID,
	})
	return &struct{}{}, nil
}

func (s *Server) reportLinkSecured(_ context.Context, input *LinkSecuredInput) (*struct{}, error) {
	streamType, err := mediadevices.ParseStreamType(input.Body.StreamType)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	s.options.EventBus.Publish(events.CapturingLinkSecuredEvent{
		Request:    input.Body.id(),
		StreamType: streamType,
		Secure:     input.Body.Secure,
	})
	return &struct{}{}, nil
}
