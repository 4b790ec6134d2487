package capture

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/capturehost/internal/mediadevices"
)

// StaticEnumerator returns fixed device lists. It backs fake-device mode and
// tests; Set swaps the lists at runtime.
type StaticEnumerator struct {
	mu    sync.RWMutex
	audio mediadevices.Devices
	video mediadevices.Devices
	err   error
}

// NewStaticEnumerator creates an enumerator that always returns audio and video.
func NewStaticEnumerator(audio, video mediadevices.Devices) *StaticEnumerator {
	s := &StaticEnumerator{}
	s.Set(audio, video)
	return s
}

// Set replaces both device lists.
func (s *StaticEnumerator) Set(audio, video mediadevices.Devices) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = withType(audio, mediadevices.DeviceAudioCapture)
	s.video = withType(video, mediadevices.DeviceVideoCapture)
}

// SetError makes Enumerate fail with err until cleared with nil.
func (s *StaticEnumerator) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Enumerate implements Enumerator.
func (s *StaticEnumerator) Enumerate(_ context.Context) (mediadevices.Devices, mediadevices.Devices, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.audio.Clone(), s.video.Clone(), nil
}

// deviceFile is the TOML layout read by FileEnumerator:
//
//	[[audio]]
//	id = "fake-mic"
//	name = "Fake Microphone"
//
//	[[video]]
//	id = "fake-cam"
//	name = "Fake Camera"
type deviceFile struct {
	Audio []mediadevices.Device `toml:"audio"`
	Video []mediadevices.Device `toml:"video"`
}

// FileEnumerator reads device lists from a TOML file on every enumeration, so
// edits to the file show up on the next refresh.
type FileEnumerator struct {
	Path string
}

// NewFileEnumerator creates an enumerator backed by the TOML file at path.
func NewFileEnumerator(path string) *FileEnumerator {
	return &FileEnumerator{Path: path}
}

// Enumerate implements Enumerator.
func (f *FileEnumerator) Enumerate(_ context.Context) (mediadevices.Devices, mediadevices.Devices, error) {
	return LoadDeviceFile(f.Path)
}

// LoadDeviceFile parses a TOML device file.
func LoadDeviceFile(path string) (mediadevices.Devices, mediadevices.Devices, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read device file: %w", err)
	}

	var file deviceFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse device file %s: %w", path, err)
	}

	if err := validateIDs(file.Audio, "audio"); err != nil {
		return nil, nil, err
	}
	if err := validateIDs(file.Video, "video"); err != nil {
		return nil, nil, err
	}

	return withType(file.Audio, mediadevices.DeviceAudioCapture),
		withType(file.Video, mediadevices.DeviceVideoCapture), nil
}

func validateIDs(devices []mediadevices.Device, kind string) error {
	seen := make(map[string]struct{}, len(devices))
	for i, d := range devices {
		if d.ID == "" {
			return fmt.Errorf("%s device %d has no id", kind, i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("duplicate %s device id %q", kind, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

func withType(devices mediadevices.Devices, t mediadevices.StreamType) mediadevices.Devices {
	out := make(mediadevices.Devices, len(devices))
	for i, d := range devices {
		d.Type = t
		out[i] = d
	}
	return out
}
