package desktop

import "testing"

func TestMediaID_StringAndParse(t *testing.T) {
	tests := []struct {
		in      string
		want    MediaID
		wantErr bool
	}{
		{"screen:0", MediaID{Type: Screen, ID: 0}, false},
		{"window:42", MediaID{Type: Window, ID: 42}, false},
		{"web-contents:7", MediaID{Type: WebContents, ID: 7}, false},
		{"none:1", MediaID{}, true},
		{"screen", MediaID{}, true},
		{"tab:1", MediaID{}, true},
		{"screen:abc", MediaID{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMediaID(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMediaID(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMediaID(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMediaID(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestParseMediaIDType(t *testing.T) {
	for _, typ := range []MediaIDType{None, Screen, Window, WebContents} {
		got, err := ParseMediaIDType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseMediaIDType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseMediaIDType("tab"); err == nil {
		t.Error("Expected error for unknown type")
	}
}

func TestMediaID_TextMarshaling(t *testing.T) {
	id := MediaID{Type: Window, ID: 3}
	text, err := id.MarshalText()
	if err != nil || string(text) != "window:3" {
		t.Fatalf("MarshalText = %q, %v", text, err)
	}

	var back MediaID
	if err := back.UnmarshalText(text); err != nil || back != id {
		t.Errorf("UnmarshalText = %+v, %v", back, err)
	}
	if err := back.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("Expected error for bogus id")
	}
}
