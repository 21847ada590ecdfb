// Package exception provides errors meant to be shown to a person, with a
// plain rendering and styled renderings for terminals and HTML.
package exception

import (
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style marks how a segment of an exception message is emphasized.
type Style int

const (
	Plain Style = iota
	Bold
	Italic
	Code
)

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
	codeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F")).PaddingLeft(2)
)

type segment struct {
	text  string
	style Style
}

// Exception is an error assembled from styled segments.
type Exception struct {
	segments     []segment
	userFriendly bool
}

// New returns an exception whose message starts with message.
func New(message string, userFriendly bool) *Exception {
	e := &Exception{userFriendly: userFriendly}
	if message != "" {
		e.Append(message, Plain)
	}
	return e
}

// Append adds text at the end of the message.
func (e *Exception) Append(text string, style Style) *Exception {
	e.segments = append(e.segments, segment{text: text, style: style})
	return e
}

// Prepend adds text at the start of the message.
func (e *Exception) Prepend(text string, style Style) *Exception {
	e.segments = append([]segment{{text: text, style: style}}, e.segments...)
	return e
}

func (e *Exception) SetUserFriendly(v bool) { e.userFriendly = v }

// IsUserFriendly reports whether the message can be shown to an end user
// as is.
func (e *Exception) IsUserFriendly() bool { return e.userFriendly }

// Error returns the plain message.
func (e *Exception) Error() string { return e.Plain() }

// Plain returns the message without any styling.
func (e *Exception) Plain() string {
	var b strings.Builder
	for _, s := range e.segments {
		b.WriteString(s.text)
	}
	return b.String()
}

// Styled renders the message for a terminal.
func (e *Exception) Styled() string {
	var b strings.Builder
	for _, s := range e.segments {
		switch s.style {
		case Bold:
			b.WriteString(boldStyle.Render(s.text))
		case Italic:
			b.WriteString(italicStyle.Render(s.text))
		case Code:
			b.WriteString("\n")
			b.WriteString(codeStyle.Render(s.text))
			b.WriteString("\n")
		default:
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// HTML renders the message as an HTML fragment.
func (e *Exception) HTML() string {
	var b strings.Builder
	for _, s := range e.segments {
		text := strings.ReplaceAll(html.EscapeString(s.text), "\n", "<br/>")
		switch s.style {
		case Bold:
			b.WriteString("<strong>" + text + "</strong>")
		case Italic:
			b.WriteString("<em>" + text + "</em>")
		case Code:
			b.WriteString("<pre>" + html.EscapeString(s.text) + "</pre>")
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}
