// Package capture is the host's media-device enumeration layer. It owns the
// audio and video capture device lists that the dispatcher reads.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/smazurov/capturehost/internal/mediadevices"
)

// ErrNoEnumerators is returned by a MultiEnumerator with nothing to query.
var ErrNoEnumerators = errors.New("no device enumerators configured")

// Enumerator produces the current audio and video capture device lists.
type Enumerator interface {
	Enumerate(ctx context.Context) (audio, video mediadevices.Devices, err error)
}

// EnumeratorFunc adapts a function to the Enumerator interface.
type EnumeratorFunc func(ctx context.Context) (mediadevices.Devices, mediadevices.Devices, error)

// Enumerate calls f.
func (f EnumeratorFunc) Enumerate(ctx context.Context) (mediadevices.Devices, mediadevices.Devices, error) {
	return f(ctx)
}

// MultiEnumerator queries several enumerators in order and concatenates
// their results. A device ID seen earlier wins over later duplicates.
// Partial results are kept when some enumerators fail, as long as one succeeds.
type MultiEnumerator []Enumerator

// Enumerate implements Enumerator.
func (m MultiEnumerator) Enumerate(ctx context.Context) (mediadevices.Devices, mediadevices.Devices, error) {
	if len(m) == 0 {
		return nil, nil, ErrNoEnumerators
	}

	var audio, video mediadevices.Devices
	seenAudio := make(map[string]struct{})
	seenVideo := make(map[string]struct{})

	var errs []error
	for i, e := range m {
		a, v, err := e.Enumerate(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("enumerator %d: %w", i, err))
			continue
		}
		audio = appendUnique(audio, a, seenAudio)
		video = appendUnique(video, v, seenVideo)
	}

	if len(errs) == len(m) {
		return nil, nil, errors.Join(errs...)
	}
	return audio, video, nil
}

func appendUnique(dst, src mediadevices.Devices, seen map[string]struct{}) mediadevices.Devices {
	for _, d := range src {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		dst = append(dst, d)
	}
	return dst
}
