//go:build linux

package hotplug

import (
	"context"
	"errors"
	"sync"
	"syscall"
)

// netlinkKobjectUEvent is the netlink protocol for kernel object events.
const netlinkKobjectUEvent = 15

// Monitor listens for kernel device events on a netlink socket.
type Monitor struct {
	fd         int
	mu         sync.RWMutex
	subsystems map[string]struct{}
}

// NewMonitor opens a netlink socket bound to the kernel broadcast group.
func NewMonitor() (*Monitor, error) {
	fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_DGRAM|syscall.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, err
	}

	addr := &syscall.SockaddrNetlink{Family: syscall.AF_NETLINK, Groups: 1}
	if err := syscall.Bind(fd, addr); err != nil {
		_ = syscall.Close(fd)
		return nil, err
	}

	// Receive timeout so Run can notice context cancellation.
	tv := syscall.Timeval{Sec: 1}
	if err := syscall.SetsockoptTimeval(fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
		_ = syscall.Close(fd)
		return nil, err
	}

	return &Monitor{fd: fd, subsystems: make(map[string]struct{})}, nil
}

// FilterSubsystem restricts delivered events to the given subsystems. With no
// filter every event is delivered.
func (m *Monitor) FilterSubsystem(subsystems ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range subsystems {
		m.subsystems[s] = struct{}{}
	}
}

func (m *Monitor) accepts(subsystem string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.subsystems) == 0 {
		return true
	}
	_, ok := m.subsystems[subsystem]
	return ok
}

// Close releases the socket.
func (m *Monitor) Close() error {
	return syscall.Close(m.fd)
}

// Run delivers events to out until ctx is cancelled or the socket fails.
// out is closed when Run returns.
func (m *Monitor) Run(ctx context.Context, out chan<- Event) error {
	defer close(out)

	buf := make([]byte, 8192)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, _, err := syscall.Recvfrom(m.fd, buf, 0)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) {
				continue
			}
			return err
		}

		ev := ParseUEvent(buf[:n])
		if ev == nil || !m.accepts(ev.Subsystem) {
			continue
		}

		select {
		case out <- *ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
