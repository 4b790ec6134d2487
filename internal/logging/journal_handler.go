package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

const syslogIdentifier = "capturehost"

// JournalHandler is a slog.Handler that sends records to the systemd journal.
// Attribute keys become upper-case journal fields; groups are joined with '_'.
type JournalHandler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle sends the log record to the journal.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	priority := journalPriority(r.Level)

	fields := map[string]string{
		"SYSLOG_IDENTIFIER": syslogIdentifier,
	}
	for _, attr := range h.attrs {
		putField(fields, h.prefix, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		putField(fields, h.prefix, attr)
		return true
	})

	if err := journal.Send(r.Message, priority, fields); err != nil {
		fmt.Fprintf(os.Stderr, "journal send failed: %v\n", err)
		return err
	}
	return nil
}

// WithAttrs returns a new handler with additional attributes.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a new handler with a group prefix.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

// putField flattens attr into journal fields.
func putField(fields map[string]string, prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := joinKey(prefix, attr.Key)
	value := attr.Value.Resolve()

	switch value.Kind() {
	case slog.KindGroup:
		for _, a := range value.Group() {
			putField(fields, key, a)
		}
		return
	case slog.KindInt64:
		fields[strings.ToUpper(key)] = strconv.FormatInt(value.Int64(), 10)
	case slog.KindUint64:
		fields[strings.ToUpper(key)] = strconv.FormatUint(value.Uint64(), 10)
	case slog.KindBool:
		fields[strings.ToUpper(key)] = strconv.FormatBool(value.Bool())
	case slog.KindTime:
		fields[strings.ToUpper(key)] = value.Time().Format("2006-01-02T15:04:05.000Z07:00")
	default:
		fields[strings.ToUpper(key)] = value.String()
	}
}

// IsJournalAvailable checks if the systemd journal is available.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
