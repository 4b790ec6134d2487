package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/smazurov/capturehost/internal/api/models"
	"github.com/smazurov/capturehost/internal/capture"
	"github.com/smazurov/capturehost/internal/desktop"
	"github.com/smazurov/capturehost/internal/dispatcher"
	"github.com/smazurov/capturehost/internal/events"
	"github.com/smazurov/capturehost/internal/logging"
	"github.com/smazurov/capturehost/internal/mediadevices"
	"github.com/smazurov/capturehost/internal/threads"
)

type testEnv struct {
	api  humatest.TestAPI
	enum *capture.StaticEnumerator
	host *capture.MediaCaptureDevices
	disp *dispatcher.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	threads.SetStrictChecks(true)
	t.Cleanup(func() { threads.SetStrictChecks(false) })

	enum := capture.NewStaticEnumerator(
		mediadevices.Devices{{ID: "hw:0,0", Name: "Built-in Mic", GroupID: "PCH"}},
		mediadevices.Devices{
			{ID: "usb-cam", Name: "USB Camera", Path: "/dev/video0"},
			{ID: "hdmi-in", Name: "HDMI Capture", Path: "/dev/video2"},
		},
	)
	host := capture.NewMediaCaptureDevices(enum)
	if err := host.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	disp := dispatcher.New(dispatcher.Options{
		Host: host,
		Factory: desktop.FactoryFuncs{
			Screen: func() desktop.Capturer {
				return desktop.StaticCapturer{{ID: desktop.MediaID{Type: desktop.Screen, ID: 0}, Name: "eDP-1"}}
			},
			Window: desktop.DefaultFactory().NewWindowCapturer,
		},
	})

	runner := threads.NewRunner(threads.UI, 0)
	runner.Start()
	t.Cleanup(runner.Stop)

	_, api := humatest.New(t)
	s := &Server{
		api:     api,
		options: &Options{Dispatcher: disp, Runner: runner, Host: host},
		logger:  logging.GetLogger("api"),
	}
	s.registerRoutes()

	return &testEnv{api: api, enum: enum, host: host, disp: disp}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode %q: %v", resp.Body.String(), err)
	}
	return out
}

func TestHealthAndVersion(t *testing.T) {
	env := newTestEnv(t)

	resp := env.api.Get("/api/health")
	if resp.Code != http.StatusOK {
		t.Fatalf("health status = %d", resp.Code)
	}
	if got := decode[models.HealthData](t, resp); got.Status != "ok" {
		t.Errorf("health = %+v", got)
	}

	resp = env.api.Get("/api/version")
	if resp.Code != http.StatusOK {
		t.Fatalf("version status = %d", resp.Code)
	}
	if got := decode[models.VersionData](t, resp); got.Version == "" || got.GoVersion == "" {
		t.Errorf("version = %+v", got)
	}
}

func TestListDevices(t *testing.T) {
	env := newTestEnv(t)

	resp := env.api.Get("/api/devices/video")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	got := decode[models.DeviceListData](t, resp)
	if got.Count != 2 || got.Devices[0].ID != "usb-cam" || got.Devices[1].Kind != "video" {
		t.Errorf("video list = %+v", got)
	}

	resp = env.api.Get("/api/devices/audio")
	got = decode[models.DeviceListData](t, resp)
	if got.Count != 1 || got.Devices[0].Kind != "audio" || got.Devices[0].GroupID != "PCH" {
		t.Errorf("audio list = %+v", got)
	}

	if resp := env.api.Get("/api/devices/midi"); resp.Code < 400 {
		t.Errorf("unknown kind should be rejected, got %d", resp.Code)
	}
}

func TestGetDevice(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path     string
		wantCode int
		wantName string
	}{
		{"/api/devices/audio/hw:0,0", http.StatusOK, "Built-in Mic"},
		{"/api/devices/video/hdmi-in", http.StatusOK, "HDMI Capture"},
		{"/api/devices/video/hw:0,0", http.StatusNotFound, ""},
		{"/api/devices/audio/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := env.api.Get(tt.path)
			if resp.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", resp.Code, tt.wantCode, resp.Body.String())
			}
			if tt.wantName != "" {
				if got := decode[models.DeviceInfo](t, resp); got.Name != tt.wantName {
					t.Errorf("name = %q, want %q", got.Name, tt.wantName)
				}
			}
		})
	}
}

func TestDefaultDevices(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		query    string
		wantCode int
		wantIDs  []string
	}{
		{"", http.StatusOK, []string{"hw:0,0", "usb-cam"}},
		{"?audio=true&video=false", http.StatusOK, []string{"hw:0,0"}},
		{"?audio=false&video=true", http.StatusOK, []string{"usb-cam"}},
		{"?audio=false&video=false", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := env.api.Get("/api/devices/default" + tt.query)
			if resp.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", resp.Code, tt.wantCode, resp.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			got := decode[models.DeviceListData](t, resp)
			if len(got.Devices) != len(tt.wantIDs) {
				t.Fatalf("devices = %+v, want %v", got.Devices, tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if got.Devices[i].ID != id {
					t.Errorf("devices[%d] = %q, want %q", i, got.Devices[i].ID, id)
				}
			}
		})
	}
}

func TestDisabledEnumeration(t *testing.T) {
	env := newTestEnv(t)
	env.disp.DisableDeviceEnumerationForTesting()

	got := decode[models.DeviceListData](t, env.api.Get("/api/devices/video"))
	if got.Count != 0 || !got.EnumerationDisabled || got.Devices == nil {
		t.Errorf("disabled video list = %+v", got)
	}
	if resp := env.api.Get("/api/devices/video/usb-cam"); resp.Code != http.StatusNotFound {
		t.Errorf("lookup when disabled = %d, want 404", resp.Code)
	}
	got = decode[models.DeviceListData](t, env.api.Get("/api/devices/default"))
	if got.Count != 0 {
		t.Errorf("defaults when disabled = %+v", got)
	}
}

func TestRefreshDevices(t *testing.T) {
	env := newTestEnv(t)

	env.enum.Set(nil, mediadevices.Devices{{ID: "only-cam"}})
	resp := env.api.Post("/api/devices/refresh")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	got := decode[models.RefreshData](t, resp)
	if got.AudioCount != 0 || got.VideoCount != 1 {
		t.Errorf("refresh = %+v", got)
	}

	env.enum.SetError(errors.New("sysfs unreadable"))
	if resp := env.api.Post("/api/devices/refresh"); resp.Code != http.StatusInternalServerError {
		t.Errorf("failed refresh status = %d, want 500", resp.Code)
	}
}

func TestDesktopSources(t *testing.T) {
	env := newTestEnv(t)

	resp := env.api.Get("/api/desktop/sources?types=screen,window,web-contents")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	got := decode[models.DesktopSourcesData](t, resp)
	if len(got.Lists) != 2 {
		t.Fatalf("lists = %+v, want screen and window", got.Lists)
	}
	screen, window := got.Lists[0], got.Lists[1]
	if screen.Type != "screen" || len(screen.Sources) != 1 || screen.Sources[0].ID != "screen:0" {
		t.Errorf("screen list = %+v", screen)
	}
	if window.Type != "window" || window.Error == "" || len(window.Sources) != 0 {
		t.Errorf("window list = %+v, want unsupported error", window)
	}

	if resp := env.api.Get("/api/desktop/sources?types=tab"); resp.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", resp.Code)
	}
}

func TestParseMediaTypes(t *testing.T) {
	got, err := parseMediaTypes(" screen, ,window")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != desktop.Screen || got[1] != desktop.Window {
		t.Errorf("parseMediaTypes = %v", got)
	}
}

func TestBasicAuthAndCORS(t *testing.T) {
	threads.SetStrictChecks(true)
	defer threads.SetStrictChecks(false)

	host := capture.NewMediaCaptureDevices(capture.NewStaticEnumerator(nil, nil))
	runner := threads.NewRunner(threads.UI, 0)
	runner.Start()
	defer runner.Stop()

	s := NewServer(&Options{
		AuthUsername: "admin",
		AuthPassword: "secret",
		Dispatcher:   dispatcher.New(dispatcher.Options{Host: host, Factory: desktop.FactoryFuncs{}}),
		Runner:       runner,
		Host:         host,
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	})

	creds := func(user, pass string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}

	tests := []struct {
		name     string
		method   string
		path     string
		auth     string
		wantCode int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"devices need auth", http.MethodGet, "/api/devices/audio", "", http.StatusUnauthorized},
		{"wrong password", http.MethodGet, "/api/devices/audio", creds("admin", "nope"), http.StatusUnauthorized},
		{"bearer rejected", http.MethodGet, "/api/devices/audio", "Bearer token", http.StatusUnauthorized},
		{"valid credentials", http.MethodGet, "/api/devices/audio", creds("admin", "secret"), http.StatusOK},
		{"query credentials", http.MethodGet, "/api/devices/audio?auth=" + base64.StdEncoding.EncodeToString([]byte("admin:secret")), "", http.StatusOK},
		{"preflight", http.MethodOptions, "/api/devices/audio", "", http.StatusNoContent},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if rec.Code == http.StatusUnauthorized && !strings.Contains(rec.Header().Get("WWW-Authenticate"), "Basic") {
				t.Error("Expected WWW-Authenticate challenge")
			}
			if tt.method == http.MethodOptions && rec.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Error("Expected CORS headers on preflight")
			}
		})
	}
}

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		method string
		status int
		want   string
	}{
		{http.MethodOptions, 204, "DEBUG"},
		{http.MethodGet, 200, "INFO"},
		{http.MethodGet, 404, "WARN"},
		{http.MethodPost, 500, "ERROR"},
	}
	for _, tt := range tests {
		if got := requestLevel(tt.method, tt.status).String(); got != tt.want {
			t.Errorf("requestLevel(%s, %d) = %s, want %s", tt.method, tt.status, got, tt.want)
		}
	}
}

func newBusAPI(t *testing.T, env *testEnv) (humatest.TestAPI, *events.Bus) {
	t.Helper()
	bus := events.New()
	t.Cleanup(func() { _ = bus.Close() })

	_, api := humatest.New(t)
	s := &Server{
		api:     api,
		options: &Options{Dispatcher: env.disp, Host: env.host, EventBus: bus},
		logger:  logging.GetLogger("api"),
	}
	s.registerRoutes()
	return api, bus
}

func TestEventsRouteNeedsBus(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/events", "/api/requests/state"} {
		if env.api.OpenAPI().Paths[path] != nil {
			t.Errorf("%s registered without an event bus", path)
		}
	}

	api, _ := newBusAPI(t, env)
	for _, path := range []string{"/api/events", "/api/requests/state", "/api/requests/audio-stream", "/api/requests/link-secured"} {
		if api.OpenAPI().Paths[path] == nil {
			t.Errorf("%s missing with an event bus", path)
		}
	}
}

func TestRequestReportsArePublished(t *testing.T) {
	env := newTestEnv(t)
	api, bus := newBusAPI(t, env)

	ch := make(chan any, 4)
	defer events.SubscribeToChannel[events.MediaRequestStateChangedEvent](bus, ch)()
	defer events.SubscribeToChannel[events.CreatingAudioStreamEvent](bus, ch)()
	defer events.SubscribeToChannel[events.CapturingLinkSecuredEvent](bus, ch)()

	next := func() any {
		t.Helper()
		select {
		case ev := <-ch:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for event")
			return nil
		}
	}

	resp := api.Post("/api/requests/state", map[string]any{
		"render_process_id": 4,
		"render_frame_id":   1,
		"page_request_id":   9,
		"origin":            "https://example.com",
		"stream_type":       "device_video_capture",
		"state":             "opening",
	})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("state status = %d: %s", resp.Code, resp.Body.String())
	}
	stateEv, ok := next().(events.MediaRequestStateChangedEvent)
	if !ok || stateEv.State != mediadevices.Opening || stateEv.StreamType != mediadevices.DeviceVideoCapture ||
		stateEv.Request.PageRequestID != 9 || stateEv.Origin != "https://example.com" {
		t.Errorf("state event = %+v", stateEv)
	}

	resp = api.Post("/api/requests/audio-stream", map[string]any{"render_process_id": 4, "render_frame_id": 2})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("audio-stream status = %d: %s", resp.Code, resp.Body.String())
	}
	if ev, ok := next().(events.CreatingAudioStreamEvent); !ok || ev.RenderFrameID != 2 {
		t.Errorf("audio stream event = %+v", ev)
	}

	resp = api.Post("/api/requests/link-secured", map[string]any{
		"render_process_id": 4,
		"render_frame_id":   1,
		"page_request_id":   9,
		"stream_type":       "desktop_video_capture",
		"secure":            true,
	})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("link-secured status = %d: %s", resp.Code, resp.Body.String())
	}
	if ev, ok := next().(events.CapturingLinkSecuredEvent); !ok || !ev.Secure || ev.StreamType != mediadevices.DesktopVideoCapture {
		t.Errorf("link secured event = %+v", ev)
	}

	resp = api.Post("/api/requests/state", map[string]any{
		"render_process_id": 4,
		"render_frame_id":   1,
		"page_request_id":   9,
		"stream_type":       "device_video_capture",
		"state":             "bogus",
	})
	if resp.Code < 400 || resp.Code >= 500 {
		t.Errorf("invalid state status = %d, want 4xx", resp.Code)
	}
}
