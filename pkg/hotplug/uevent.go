// Package hotplug watches kernel device uevents so capture device lists can be
// refreshed when hardware is plugged or unplugged.
package hotplug

import (
	"bytes"
	"strings"
)

// Actions reported by the kernel.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
	ActionBind   = "bind"
	ActionUnbind = "unbind"
)

// Subsystems relevant to capture devices.
const (
	SubsystemVideo4Linux = "video4linux"
	SubsystemSound       = "sound"
)

// Event is one kernel device event.
type Event struct {
	Action    string
	KObj      string // kernel object path, e.g. /devices/pci0000:00/...
	Subsystem string
	DevName   string // e.g. video0, snd/pcmC0D0c
	Env       map[string]string
}

// AffectsDeviceList reports whether the event can change the set of capture
// devices. Change events are ignored.
func (e Event) AffectsDeviceList() bool {
	return e.Action == ActionAdd || e.Action == ActionRemove
}

var libudevMagic = []byte("libudev")

// ParseUEvent parses a netlink uevent message of the form
// "ACTION@KOBJ\0KEY=VALUE\0...". Messages rebroadcast by udevd carry a binary
// header, which is skipped. It returns nil for malformed input.
func ParseUEvent(data []byte) *Event {
	if bytes.HasPrefix(data, libudevMagic) {
		data = skipLibudevHeader(data)
	}

	fields := bytes.Split(data, []byte{0})
	if len(fields) == 0 {
		return nil
	}

	action, kobj, ok := strings.Cut(string(fields[0]), "@")
	if !ok || action == "" {
		return nil
	}

	ev := &Event{
		Action: action,
		KObj:   kobj,
		Env:    make(map[string]string, len(fields)-1),
	}

	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(string(field), "=")
		if !ok || key == "" {
			continue
		}
		ev.Env[key] = value

		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		}
	}

	return ev
}

// skipLibudevHeader returns the part of data that starts at "ACTION@".
func skipLibudevHeader(data []byte) []byte {
	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0 {
			continue
		}
		rest := data[i+1:]
		at := bytes.IndexByte(rest, '@')
		if at > 0 && at < 20 && bytes.IndexByte(rest[:at], 0) < 0 {
			return rest
		}
	}
	return nil
}
