package mediadevices

import "testing"

func testDevices() Devices {
	return Devices{
		{Type: DeviceAudioCapture, ID: "hw:0,0", Name: "HDA Intel PCH", GroupID: "PCH"},
		{Type: DeviceAudioCapture, ID: "hw:1,0", Name: "USB Audio", GroupID: "Device"},
		{Type: DeviceAudioCapture, ID: "hw:0,0", Name: "Duplicate", GroupID: "PCH"},
	}
}

func TestDevices_FindByID(t *testing.T) {
	devices := testDevices()

	tests := []struct {
		name     string
		id       string
		wantOK   bool
		wantName string
	}{
		{"first match", "hw:0,0", true, "HDA Intel PCH"},
		{"second device", "hw:1,0", true, "USB Audio"},
		{"missing", "hw:2,0", false, ""},
		{"empty id", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := devices.FindByID(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("FindByID(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if got.Name != tt.wantName {
				t.Errorf("FindByID(%q) name = %q, want %q", tt.id, got.Name, tt.wantName)
			}
		})
	}
}

func TestDevices_FindByIDOnEmpty(t *testing.T) {
	if _, ok := Empty().FindByID("hw:0,0"); ok {
		t.Error("Expected no match in empty list")
	}
	var nilList Devices
	if _, ok := nilList.FindByID("hw:0,0"); ok {
		t.Error("Expected no match in nil list")
	}
}

func TestDevices_First(t *testing.T) {
	got, ok := testDevices().First()
	if !ok || got.ID != "hw:0,0" {
		t.Errorf("First() = %+v, %v; want hw:0,0", got, ok)
	}

	if _, ok := Empty().First(); ok {
		t.Error("Expected First() on empty list to report not found")
	}
}

func TestEmpty_IsNotShared(t *testing.T) {
	a := Empty()
	a = append(a, Device{ID: "x"})
	if len(a) != 1 {
		t.Fatalf("Expected append to succeed, got len %d", len(a))
	}
	if len(Empty()) != 0 {
		t.Error("Appending to Empty() must not change later results")
	}
	if Empty() == nil {
		t.Error("Empty() should be non-nil")
	}
}

func TestDevices_CloneAndEqual(t *testing.T) {
	orig := testDevices()
	clone := orig.Clone()
	if !orig.Equal(clone) {
		t.Fatal("Clone should equal original")
	}

	clone[0].Name = "changed"
	if orig[0].Name == "changed" {
		t.Error("Clone must not share backing array")
	}
	if orig.Equal(clone) {
		t.Error("Lists with different names should not be equal")
	}
	if orig.Equal(orig[:2]) {
		t.Error("Lists with different lengths should not be equal")
	}
}

func TestStreamType(t *testing.T) {
	tests := []struct {
		st        StreamType
		wantName  string
		wantAudio bool
		wantVideo bool
	}{
		{NoService, "none", false, false},
		{DeviceAudioCapture, "device_audio_capture", true, false},
		{DeviceVideoCapture, "device_video_capture", false, true},
		{DesktopVideoCapture, "desktop_video_capture", false, true},
		{DesktopAudioCapture, "desktop_audio_capture", true, false},
		{StreamType(99), "unknown", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if got := tt.st.String(); got != tt.wantName {
				t.Errorf("String() = %q, want %q", got, tt.wantName)
			}
			if got := tt.st.IsAudio(); got != tt.wantAudio {
				t.Errorf("IsAudio() = %v, want %v", got, tt.wantAudio)
			}
			if got := tt.st.IsVideo(); got != tt.wantVideo {
				t.Errorf("IsVideo() = %v, want %v", got, tt.wantVideo)
			}
		})
	}
}

func TestRequestState_String(t *testing.T) {
	tests := map[RequestState]string{
		NotRequested:     "not_requested",
		Requested:        "requested",
		PendingApproval:  "pending_approval",
		Opening:          "opening",
		Done:             "done",
		Closing:          "closing",
		Error:            "error",
		RequestState(42): "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("RequestState(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}

func TestParseStreamTypeAndState(t *testing.T) {
	for st := NoService; st <= DesktopAudioCapture; st++ {
		got, err := ParseStreamType(st.String())
		if err != nil || got != st {
			t.Errorf("ParseStreamType(%q) = %v, %v", st.String(), got, err)
		}
	}
	if _, err := ParseStreamType("camera"); err == nil {
		t.Error("Expected error for unknown stream type")
	}

	for rs := NotRequested; rs <= Error; rs++ {
		got, err := ParseRequestState(rs.String())
		if err != nil || got != rs {
			t.Errorf("ParseRequestState(%q) = %v, %v", rs.String(), got, err)
		}
	}
	if _, err := ParseRequestState("unknown"); err == nil {
		t.Error("Expected error for unknown request state")
	}
}
