// Package mediadevices defines the capture device model shared by the host
// enumeration layer and the dispatcher.
package mediadevices

// Device describes a single capture device.
type Device struct {
	Type    StreamType `json:"type" toml:"-"`
	ID      string     `json:"id" toml:"id"`
	Name    string     `json:"name" toml:"name"`
	GroupID string     `json:"group_id,omitempty" toml:"group_id"`
	Path    string     `json:"path,omitempty" toml:"path"`
}

// Devices is an ordered, read-only list of capture devices.
type Devices []Device

var emptyDevices = Devices{}

// Empty returns the shared empty device list. Callers must not append to it.
func Empty() Devices {
	return emptyDevices[:0:0]
}

// FindByID returns the first device whose ID equals id.
func (d Devices) FindByID(id string) (Device, bool) {
	for i := range d {
		if d[i].ID == id {
			return d[i], true
		}
	}
	return Device{}, false
}

// First returns the first device in the list.
func (d Devices) First() (Device, bool) {
	if len(d) == 0 {
		return Device{}, false
	}
	return d[0], true
}

// Clone returns a copy of the list that the caller owns.
func (d Devices) Clone() Devices {
	if d == nil {
		return nil
	}
	out := make(Devices, len(d))
	copy(out, d)
	return out
}

// Equal reports whether both lists hold the same devices in the same order.
func (d Devices) Equal(other Devices) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}
