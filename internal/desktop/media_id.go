// Package desktop lists the screens and windows available for desktop capture.
package desktop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotSupported is returned by capturers that cannot work on this platform.
var ErrNotSupported = errors.New("desktop capture not supported on this platform")

// MediaIDType is the kind of desktop media a source represents.
type MediaIDType int

// Desktop media kinds.
const (
	None MediaIDType = iota
	Screen
	Window
	WebContents
)

func (t MediaIDType) String() string {
	switch t {
	case Screen:
		return "screen"
	case Window:
		return "window"
	case WebContents:
		return "web-contents"
	default:
		return "none"
	}
}

// ParseMediaIDType parses the String form of a MediaIDType.
func ParseMediaIDType(s string) (MediaIDType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "screen":
		return Screen, nil
	case "window":
		return Window, nil
	case "web-contents":
		return WebContents, nil
	case "none", "":
		return None, nil
	default:
		return None, fmt.Errorf("unknown media type %q", s)
	}
}

// MediaID identifies a desktop source.
type MediaID struct {
	Type MediaIDType
	ID   int64
}

func (id MediaID) String() string {
	return id.Type.String() + ":" + strconv.FormatInt(id.ID, 10)
}

// ParseMediaID parses "screen:0" style identifiers.
func ParseMediaID(s string) (MediaID, error) {
	typ, num, ok := strings.Cut(s, ":")
	if !ok {
		return MediaID{}, fmt.Errorf("invalid media id %q", s)
	}
	t, err := ParseMediaIDType(typ)
	if err != nil {
		return MediaID{}, err
	}
	if t == None {
		return MediaID{}, fmt.Errorf("invalid media id %q: missing type", s)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return MediaID{}, fmt.Errorf("invalid media id %q: %w", s, err)
	}
	return MediaID{Type: t, ID: n}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id MediaID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *MediaID) UnmarshalText(text []byte) error {
	parsed, err := ParseMediaID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Source is one capturable screen or window.
type Source struct {
	ID   MediaID `json:"id"`
	Name string  `json:"name"`
}
