package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/capturehost/internal/events"
)

// registerSSERoutes streams host notifications to clients.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Device list changes and media request notifications",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"devices-changed":       events.DevicesChangedEvent{},
		"request-state-changed": events.MediaRequestStateChangedEvent{},
		"creating-audio-stream": events.CreatingAudioStreamEvent{},
		"link-secured":          events.CapturingLinkSecuredEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 16)

		bus := s.options.EventBus
		unsubscribers := []func(){
			events.SubscribeToChannel[events.DevicesChangedEvent](bus, eventCh),
			events.SubscribeToChannel[events.MediaRequestStateChangedEvent](bus, eventCh),
			events.SubscribeToChannel[events.CreatingAudioStreamEvent](bus, eventCh),
			events.SubscribeToChannel[events.CapturingLinkSecuredEvent](bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-eventCh:
				if err := send.Data(ev); err != nil {
					return
				}
			}
		}
	})
}
