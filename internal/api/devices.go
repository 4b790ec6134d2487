package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/capturehost/internal/api/models"
	"github.com/smazurov/capturehost/internal/events"
	"github.com/smazurov/capturehost/internal/mediadevices"
)

// DeviceKindInput selects the audio or video list.
type DeviceKindInput struct {
	Kind string `path:"kind" enum:"audio,video" example:"video" doc:"Device kind"`
}

// DeviceIDInput addresses one device.
type DeviceIDInput struct {
	DeviceKindInput
	DeviceID string `path:"device_id" example:"hw:0,0" doc:"Stable device identifier"`
}

// DefaultDevicesInput selects which defaults to return.
type DefaultDevicesInput struct {
	Audio bool `query:"audio" default:"true" doc:"Include the default audio device"`
	Video bool `query:"video" default:"true" doc:"Include the default video device"`
}

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-default-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices/default",
		Summary:     "Default Devices",
		Description: "First available audio and/or video capture device",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, s.defaultDevices)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh-devices",
		Method:      http.MethodPost,
		Path:        "/api/devices/refresh",
		Summary:     "Refresh Devices",
		Description: "Re-enumerate host capture devices now",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, s.refreshDevices)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices/{kind}",
		Summary:     "List Devices",
		Description: "Audio or video capture devices known to the host",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, s.listDevices)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-device",
		Method:      http.MethodGet,
		Path:        "/api/devices/{kind}/{device_id}",
		Summary:     "Get Device",
		Description: "Look up a capture device by identifier",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, s.getDevice)
}

func (s *Server) listDevices(ctx context.Context, input *DeviceKindInput) (*models.DeviceListResponse, error) {
	var devices mediadevices.Devices
	var disabled bool
	err := s.onUI(ctx, func(ctx context.Context) error {
		d := s.options.Dispatcher
		if input.Kind == events.KindAudio {
			devices = d.AudioCaptureDevices(ctx)
		} else {
			devices = d.VideoCaptureDevices(ctx)
		}
		disabled = d.EnumerationDisabled()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.DeviceListResponse{
		Body: models.DeviceListData{
			Devices:             models.FromDevices(devices),
			Count:               len(devices),
			EnumerationDisabled: disabled,
		},
	}, nil
}

func (s *Server) getDevice(ctx context.Context, input *DeviceIDInput) (*models.DeviceResponse, error) {
	var dev mediadevices.Device
	var found bool
	err := s.onUI(ctx, func(ctx context.Context) error {
		if input.Kind == events.KindAudio {
			dev, found = s.options.Dispatcher.RequestedAudioDevice(ctx, input.DeviceID)
		} else {
			dev, found = s.options.Dispatcher.RequestedVideoDevice(ctx, input.DeviceID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, huma.Error404NotFound("No " + input.Kind + " device with id " + input.DeviceID)
	}
	return &models.DeviceResponse{Body: models.FromDevice(dev)}, nil
}

func (s *Server) defaultDevices(ctx context.Context, input *DefaultDevicesInput) (*models.DeviceListResponse, error) {
	if !input.Audio && !input.Video {
		return nil, huma.Error400BadRequest("At least one of audio or video must be requested")
	}

	var devices mediadevices.Devices
	var disabled bool
	err := s.onUI(ctx, func(ctx context.Context) error {
		devices = s.options.Dispatcher.DefaultDevices(ctx, input.Audio, input.Video)
		disabled = s.options.Dispatcher.EnumerationDisabled()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.DeviceListResponse{
		Body: models.DeviceListData{
			Devices:             models.FromDevices(devices),
			Count:               len(devices),
			EnumerationDisabled: disabled,
		},
	}, nil
}

func (s *Server) refreshDevices(ctx context.Context, _ *struct{}) (*models.RefreshResponse, error) {
	if s.options.Host != nil {
		if err := s.options.Host.Refresh(ctx); err != nil {
			return nil, huma.Error500InternalServerError("Device enumeration failed", err)
		}
	}

	var resp models.RefreshData
	err := s.onUI(ctx, func(ctx context.Context) error {
		resp.AudioCount = len(s.options.Dispatcher.AudioCaptureDevices(ctx))
		resp.VideoCount = len(s.options.Dispatcher.VideoCaptureDevices(ctx))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.RefreshResponse{Body: resp}, nil
}
