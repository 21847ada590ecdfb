package main

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	Muted       lipgloss.Style
	Error       lipgloss.Style
	Highlighted lipgloss.Style
	Dimmed      lipgloss.Style
	Collapsed   lipgloss.Style
	Motif       lipgloss.Style
	Unique      lipgloss.Style
}

var styles = Styles{
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8b949e")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f87171")).
		Bold(true),

	Highlighted: lipgloss.NewStyle().
		Bold(true).
		Underline(true),

	Dimmed: lipgloss.NewStyle().
		Faint(true),

	Collapsed: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")),

	Motif: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#56d364")).
		Bold(true),

	Unique: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ff7b72")),
}

var hostPalette = []lipgloss.Color{"#58a6ff", "#d2a8ff", "#79c0ff", "#ffa657", "#7ee787", "#ff7b72", "#e3b341", "#a5d6ff"}

// hostStyle gives every host a stable color.
func hostStyle(host string) lipgloss.Style {
	h := fnv.New32a()
	h.Write([]byte(host))
	return lipgloss.NewStyle().Bold(true).Foreground(hostPalette[h.Sum32()%uint32(len(hostPalette))])
}
