package desktop

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStatus(t *testing.T, root, connector, status string) {
	t.Helper()
	dir := filepath.Join(root, "sys", "class", "drm", connector)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "status"), []byte(status+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeConnectorID(t *testing.T, root, connector, id string) {
	t.Helper()
	path := filepath.Join(root, "sys", "class", "drm", connector, "connector_id")
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDRMScreenCapturer(t *testing.T) {
	root := t.TempDir()
	writeStatus(t, root, "card0-eDP-1", "connected")
	writeStatus(t, root, "card0-HDMI-A-1", "disconnected")
	writeStatus(t, root, "card1-DP-2", "connected")
	// The card node itself has no status and must be ignored
	if err := os.MkdirAll(filepath.Join(root, "sys", "class", "drm", "card0"), 0o755); err != nil {
		t.Fatal(err)
	}

	writeConnectorID(t, root, "card0-eDP-1", "77")

	c := &DRMScreenCapturer{Root: root}
	sources, err := c.Sources(context.Background())
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}

	want := []Source{
		{ID: MediaID{Type: Screen, ID: 77}, Name: "eDP-1"},
		{ID: MediaID{Type: Screen, ID: connectorID("", "card1-DP-2")}, Name: "DP-2"},
	}
	if len(sources) != len(want) {
		t.Fatalf("Expected %d sources, got %+v", len(want), sources)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %+v, want %+v", i, sources[i], want[i])
		}
	}
}

func TestDRMScreenCapturer_IDsSurviveUnplug(t *testing.T) {
	root := t.TempDir()
	writeStatus(t, root, "card0-eDP-1", "connected")
	writeStatus(t, root, "card0-HDMI-A-1", "connected")

	c := &DRMScreenCapturer{Root: root}
	list := NewNativeMediaList(Screen, c)
	rec := &recordingObserver{}
	list.SetObserver(rec)

	if err := list.Update(context.Background()); err != nil {
		t.Fatal(err)
	}
	var hdmi Source
	for _, src := range list.Sources() {
		if src.Name == "HDMI-A-1" {
			hdmi = src
		}
	}
	rec.calls = nil

	writeStatus(t, root, "card0-eDP-1", "disconnected")
	if err := list.Update(context.Background()); err != nil {
		t.Fatal(err)
	}

	if list.SourceCount() != 1 {
		t.Fatalf("Expected one screen left, got %d", list.SourceCount())
	}
	if got, _ := list.Source(0); got.ID != hdmi.ID || got.Name != "HDMI-A-1" {
		t.Errorf("Remaining screen = %+v, want ID %v", got, hdmi.ID)
	}
	for _, ev := range rec.calls {
		if strings.HasPrefix(ev, "renamed") {
			t.Errorf("Unplug reported as rename: %v", rec.calls)
		}
	}
	if len(rec.calls) == 0 || !strings.HasPrefix(rec.calls[0], "removed") {
		t.Errorf("Expected a removal, got %v", rec.calls)
	}
}

func TestDRMScreenCapturer_NoDRM(t *testing.T) {
	c := &DRMScreenCapturer{Root: t.TempDir()}
	sources, err := c.Sources(context.Background())
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if sources == nil || len(sources) != 0 {
		t.Errorf("Expected empty source list, got %v", sources)
	}
}

func TestUnsupportedWindowCapturer(t *testing.T) {
	c := DefaultFactory().NewWindowCapturer()
	if _, err := c.Sources(context.Background()); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Expected ErrNotSupported, got %v", err)
	}
	if DefaultFactory().NewScreenCapturer() == nil {
		t.Error("Expected a platform screen capturer")
	}
}

func TestFactoryFuncs(t *testing.T) {
	screens := StaticCapturer{{ID: MediaID{Type: Screen, ID: 0}, Name: "main"}}
	f := FactoryFuncs{Screen: func() Capturer { return screens }}

	if f.NewWindowCapturer() != nil {
		t.Error("Missing window constructor should yield nil")
	}
	got, err := f.NewScreenCapturer().Sources(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "main" {
		t.Errorf("Unexpected screen sources: %v, %v", got, err)
	}
}
