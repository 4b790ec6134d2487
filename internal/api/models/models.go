// Package models holds the request and response shapes of the HTTP API.
package models

import (
	"github.com/smazurov/capturehost/internal/desktop"
	"github.com/smazurov/capturehost/internal/mediadevices"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"a1b2c3d" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"42" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go runtime version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target OS and architecture"`
}

type VersionResponse struct {
	Body VersionData
}

// DeviceInfo is one capture device.
type DeviceInfo struct {
	ID      string `json:"id" example:"usb-046d_HD_Pro_Webcam_C920-video-index0" doc:"Stable device identifier"`
	Name    string `json:"name" example:"HD Pro Webcam C920" doc:"Device label"`
	Kind    string `json:"kind" example:"video" enum:"audio,video" doc:"Device kind"`
	GroupID string `json:"group_id,omitempty" example:"1-1:1.0" doc:"Physical device grouping"`
	Path    string `json:"path,omitempty" example:"/dev/video0" doc:"OS device node"`
}

// FromDevice converts a domain device.
func FromDevice(d mediadevices.Device) DeviceInfo {
	kind := "video"
	if d.Type.IsAudio() {
		kind = "audio"
	}
	return DeviceInfo{ID: d.ID, Name: d.Name, Kind: kind, GroupID: d.GroupID, Path: d.Path}
}

// FromDevices converts a domain device list. The result is never nil.
func FromDevices(devices mediadevices.Devices) []DeviceInfo {
	out := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		out = append(out, FromDevice(d))
	}
	return out
}

// Device list models
type DeviceListData struct {
	Devices             []DeviceInfo `json:"devices" doc:"Capture devices in host order"`
	Count               int          `json:"count" example:"2" doc:"Number of devices"`
	EnumerationDisabled bool         `json:"enumeration_disabled" example:"false" doc:"Whether device enumeration is disabled for testing"`
}

type DeviceListResponse struct {
	Body DeviceListData
}

type DeviceResponse struct {
	Body DeviceInfo
}

type RefreshData struct {
	AudioCount int `json:"audio_count" example:"1" doc:"Audio devices after refresh"`
	VideoCount int `json:"video_count" example:"2" doc:"Video devices after refresh"`
}

type RefreshResponse struct {
	Body RefreshData
}

// Desktop source models
type SourceInfo struct {
	ID   string `json:"id" example:"screen:0" doc:"Desktop media identifier"`
	Name string `json:"name" example:"HDMI-A-1" doc:"Source name"`
}

type MediaListData struct {
	Type    string       `json:"type" example:"screen" doc:"Media type of this list"`
	Sources []SourceInfo `json:"sources" doc:"Sources in this list"`
	Error   string       `json:"error,omitempty" doc:"Why the list could not be populated"`
}

// FromSources converts desktop sources. The result is never nil.
func FromSources(sources []desktop.Source) []SourceInfo {
	out := make([]SourceInfo, 0, len(sources))
	for _, s := range sources {
		out = append(out, SourceInfo{ID: s.ID.String(), Name: s.Name})
	}
	return out
}

type DesktopSourcesData struct {
	Lists []MediaListData `json:"lists" doc:"One entry per requested media type"`
}

type DesktopSourcesResponse struct {
	Body DesktopSourcesData
}
