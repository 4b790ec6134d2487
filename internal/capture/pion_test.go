package capture

import (
	"context"
	"testing"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/driver"
	md "github.com/smazurov/capturehost/internal/mediadevices"
)

func TestPionEnumerator(t *testing.T) {
	p := &PionEnumerator{enumerate: func() []mediadevices.MediaDeviceInfo {
		return []mediadevices.MediaDeviceInfo{
			{DeviceID: "cam-1", Kind: mediadevices.VideoInput, Label: "video0", DeviceType: driver.Camera},
			{DeviceID: "screen-0", Kind: mediadevices.VideoInput, Label: "Screen 0", DeviceType: driver.Screen},
			{DeviceID: "mic-1", Kind: mediadevices.AudioInput, Label: "default", DeviceType: driver.Microphone},
		}
	}}

	audio, video, err := p.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}

	if len(video) != 1 {
		t.Fatalf("Screens must be skipped, got %+v", video)
	}
	wantVideo := md.Device{Type: md.DeviceVideoCapture, ID: "cam-1", Name: "video0", GroupID: string(driver.Camera)}
	if video[0] != wantVideo {
		t.Errorf("video[0] = %+v, want %+v", video[0], wantVideo)
	}

	if len(audio) != 1 || audio[0].ID != "mic-1" || audio[0].Type != md.DeviceAudioCapture {
		t.Errorf("Unexpected audio: %+v", audio)
	}
}

func TestPionEnumerator_NoDevices(t *testing.T) {
	p := &PionEnumerator{enumerate: func() []mediadevices.MediaDeviceInfo { return nil }}

	audio, video, err := p.Enumerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if audio == nil || video == nil || len(audio)+len(video) != 0 {
		t.Errorf("Expected empty non-nil lists, got %v %v", audio, video)
	}
}
