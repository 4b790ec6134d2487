// Package threads models the host's named threads. Each thread is a single
// goroutine draining a FIFO task queue; tasks learn which thread they run on
// through their context.
package threads

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/smazurov/capturehost/internal/logging"
)

// ID names a host thread.
type ID int

// Host threads.
const (
	UI ID = iota
	IO
)

func (id ID) String() string {
	switch id {
	case UI:
		return "ui"
	case IO:
		return "io"
	default:
		return fmt.Sprintf("thread(%d)", int(id))
	}
}

type threadKey struct{}

// withThread marks ctx as belonging to a task running on thread id.
func withThread(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, threadKey{}, id)
}

// CurrentlyOn reports whether ctx was handed to a task running on thread id.
func CurrentlyOn(ctx context.Context, id ID) bool {
	if ctx == nil {
		return false
	}
	current, ok := ctx.Value(threadKey{}).(ID)
	return ok && current == id
}

var strictChecks atomic.Bool

// SetStrictChecks makes failed assertions panic instead of only logging.
func SetStrictChecks(enabled bool) {
	strictChecks.Store(enabled)
}

// DCheckCurrentlyOn asserts that ctx belongs to thread id.
func DCheckCurrentlyOn(ctx context.Context, id ID) bool {
	if CurrentlyOn(ctx, id) {
		return true
	}
	return failCheck("called on wrong thread", "expected_thread", id.String())
}

// DCheck asserts an arbitrary condition.
func DCheck(cond bool, msg string) bool {
	if cond {
		return true
	}
	return failCheck(msg)
}

func failCheck(msg string, args ...any) bool {
	logging.GetLogger("threads").Error("Check failed: "+msg, args...)
	if strictChecks.Load() {
		panic("check failed: " + msg)
	}
	return false
}
