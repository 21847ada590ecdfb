package pii

import (
	"log/slog"
	"strings"

	"github.com/V4T54L/causeway/internal/domain"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor masks sensitive event fields. A field is only known once the log
// has been parsed with a field pattern, so the redactor works on parsed
// events and rewrites their text to match.
type Redactor struct {
	fields map[string]struct{}
	logger *slog.Logger
}

func NewRedactor(fields []string, logger *slog.Logger) *Redactor {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" && f != "host" {
			set[f] = struct{}{}
		}
	}
	return &Redactor{fields: set, logger: logger}
}

// Redact masks every configured field of event, in the field map and in the
// event text. It reports whether anything was masked.
func (r *Redactor) Redact(event *domain.LogEvent) bool {
	redacted := false
	for name := range r.fields {
		value, ok := event.Fields[name]
		if !ok || value == "" || value == RedactedPlaceholder {
			continue
		}
		event.Fields[name] = RedactedPlaceholder
		event.Text = strings.ReplaceAll(event.Text, value, RedactedPlaceholder)
		redacted = true
	}
	return redacted
}

// RedactLines masks the events in place and writes their new text back into
// lines, the raw log they were parsed from. It returns the number of events
// changed.
func (r *Redactor) RedactLines(lines []string, events []domain.LogEvent) int {
	if len(r.fields) == 0 {
		return 0
	}
	count := 0
	for i := range events {
		if !r.Redact(&events[i]) {
			continue
		}
		count++
		if idx := events[i].Line - 1; idx >= 0 && idx < len(lines) {
			lines[idx] = events[i].Text
		} else {
			r.logger.Warn("redacted event has no source line", "line", events[i].Line)
		}
	}
	return count
}
