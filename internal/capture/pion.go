package capture

import (
	"context"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/driver"
	md "github.com/smazurov/capturehost/internal/mediadevices"
)

// PionEnumerator lists the devices registered with the pion/mediadevices
// driver manager. Screen drivers are left out; they are desktop sources.
type PionEnumerator struct {
	enumerate func() []mediadevices.MediaDeviceInfo
}

// NewPionEnumerator creates an enumerator over the global pion driver manager.
func NewPionEnumerator() *PionEnumerator {
	return &PionEnumerator{enumerate: mediadevices.EnumerateDevices}
}

// Enumerate implements Enumerator.
func (p *PionEnumerator) Enumerate(_ context.Context) (md.Devices, md.Devices, error) {
	audio := md.Devices{}
	video := md.Devices{}

	for _, info := range p.enumerate() {
		if info.DeviceType == driver.Screen {
			continue
		}
		dev := md.Device{
			ID:      info.DeviceID,
			Name:    info.Label,
			GroupID: string(info.DeviceType),
		}
		switch info.Kind {
		case mediadevices.AudioInput:
			dev.Type = md.DeviceAudioCapture
			audio = append(audio, dev)
		case mediadevices.VideoInput:
			dev.Type = md.DeviceVideoCapture
			video = append(video, dev)
		}
	}
	return audio, video, nil
}
