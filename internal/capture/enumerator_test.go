package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/smazurov/capturehost/internal/mediadevices"
)

func failing(err error) Enumerator {
	return EnumeratorFunc(func(_ context.Context) (mediadevices.Devices, mediadevices.Devices, error) {
		return nil, nil, err
	})
}

func TestMultiEnumerator_MergesAndDedups(t *testing.T) {
	m := MultiEnumerator{
		NewStaticEnumerator(
			mediadevices.Devices{{ID: "mic", Name: "first"}},
			mediadevices.Devices{{ID: "cam"}},
		),
		NewStaticEnumerator(
			mediadevices.Devices{{ID: "mic", Name: "second"}, {ID: "usb-mic"}},
			nil,
		),
	}

	audio, video, err := m.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(audio) != 2 {
		t.Fatalf("Expected 2 audio devices, got %+v", audio)
	}
	if audio[0].Name != "first" {
		t.Errorf("Earlier enumerator should win duplicates, got %q", audio[0].Name)
	}
	if audio[1].ID != "usb-mic" {
		t.Errorf("Expected usb-mic second, got %q", audio[1].ID)
	}
	if len(video) != 1 {
		t.Errorf("Expected 1 video device, got %+v", video)
	}
}

func TestMultiEnumerator_PartialFailure(t *testing.T) {
	m := MultiEnumerator{
		failing(errors.New("netlink down")),
		NewStaticEnumerator(mediadevices.Devices{{ID: "mic"}}, nil),
	}

	audio, _, err := m.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Partial failure should not be an error: %v", err)
	}
	if len(audio) != 1 {
		t.Errorf("Expected surviving enumerator's devices, got %+v", audio)
	}
}

func TestMultiEnumerator_AllFail(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	m := MultiEnumerator{failing(errA), failing(errB)}

	_, _, err := m.Enumerate(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Expected joined error, got %v", err)
	}
}

func TestMultiEnumerator_Empty(t *testing.T) {
	_, _, err := MultiEnumerator{}.Enumerate(context.Background())
	if !errors.Is(err, ErrNoEnumerators) {
		t.Errorf("Expected ErrNoEnumerators, got %v", err)
	}
}

func TestNewEnumerator(t *testing.T) {
	tests := []struct {
		name       string
		backends   []string
		deviceFile string
		wantType   string
		wantErr    bool
	}{
		{"platform default", nil, "", "", false},
		{"single sysfs", []string{"sysfs"}, "", "*capture.SysfsEnumerator", false},
		{"single pion", []string{" Pion "}, "", "*capture.PionEnumerator", false},
		{"file", []string{"file"}, "/tmp/devices.toml", "*capture.FileEnumerator", false},
		{"file without path", []string{"file"}, "", "", true},
		{"multi", []string{"sysfs", "file"}, "/tmp/devices.toml", "capture.MultiEnumerator", false},
		{"unknown", []string{"dshow"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEnumerator(tt.backends, tt.deviceFile)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if e == nil {
				t.Fatal("Expected enumerator")
			}
			if tt.wantType == "" {
				return
			}
			if got := typeName(e); got != tt.wantType {
				t.Errorf("Enumerator type = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func typeName(e Enumerator) string {
	switch e.(type) {
	case *SysfsEnumerator:
		return "*capture.SysfsEnumerator"
	case *PionEnumerator:
		return "*capture.PionEnumerator"
	case *FileEnumerator:
		return "*capture.FileEnumerator"
	case MultiEnumerator:
		return "capture.MultiEnumerator"
	default:
		return "unknown"
	}
}
