package pii

import (
	"io"
	"log/slog"
	"testing"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func testEvent(t *testing.T, text string, line int, fields map[string]string) domain.LogEvent {
	t.Helper()
	vt, err := domain.NewVectorTimestamp("a", map[string]int{"a": line})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return domain.NewLogEvent(text, vt, line, fields)
}

func TestRedactor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redactor := NewRedactor([]string{"email", "ssn", "host"}, logger)

	tests := []struct {
		name           string
		text           string
		fields         map[string]string
		expectedText   string
		expectedFields map[string]string
		expectRedacted bool
	}{
		{
			name:           "Redact single field",
			text:           "login test@example.com",
			fields:         map[string]string{"email": "test@example.com", "user": "42"},
			expectedText:   "login [REDACTED]",
			expectedFields: map[string]string{"email": "[REDACTED]", "user": "42", "host": "a"},
			expectRedacted: true,
		},
		{
			name:           "Redact multiple fields",
			text:           "x@y.z 000-00-0000",
			fields:         map[string]string{"email": "x@y.z", "ssn": "000-00-0000"},
			expectedText:   "[REDACTED] [REDACTED]",
			expectedFields: map[string]string{"email": "[REDACTED]", "ssn": "[REDACTED]", "host": "a"},
			expectRedacted: true,
		},
		{
			name:           "No fields to redact",
			text:           "user 42 logged in",
			fields:         map[string]string{"user": "42"},
			expectedText:   "user 42 logged in",
			expectedFields: map[string]string{"user": "42", "host": "a"},
			expectRedacted: false,
		},
		{
			name:           "Host is never redacted",
			text:           "a says hi",
			fields:         nil,
			expectedText:   "a says hi",
			expectedFields: map[string]string{"host": "a"},
			expectRedacted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := testEvent(t, tt.text, 1, tt.fields)
			if got := redactor.Redact(&event); got != tt.expectRedacted {
				t.Errorf("expected redacted %v, got %v", tt.expectRedacted, got)
			}
			if event.Text != tt.expectedText {
				t.Errorf("expected text %q, got %q", tt.expectedText, event.Text)
			}
			if diff := cmp.Diff(tt.expectedFields, event.Fields); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRedactor_RedactLines(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redactor := NewRedactor([]string{"email"}, logger)

	lines := []string{"mail bob@example.com", `a {"a":1}`, "plain", `a {"a":2}`}
	events := []domain.LogEvent{
		testEvent(t, "mail bob@example.com", 1, map[string]string{"email": "bob@example.com"}),
		testEvent(t, "plain", 3, nil),
	}

	if n := redactor.RedactLines(lines, events); n != 1 {
		t.Errorf("expected 1 redacted event, got %d", n)
	}
	expected := []string{"mail [REDACTED]", `a {"a":1}`, "plain", `a {"a":2}`}
	if diff := cmp.Diff(expected, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
