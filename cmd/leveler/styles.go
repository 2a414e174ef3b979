package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.Color("#2F9E44")
	mutedColor  = lipgloss.Color("#888888")
	errorColor  = lipgloss.Color("#C92A2A")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(18)

	valueStyle = lipgloss.NewStyle().Bold(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)
)

type row struct {
	key, value string
}

// renderSummary renders a title and aligned key/value rows.
func renderSummary(title string, rows []row) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')

	for _, r := range rows {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(r.key), valueStyle.Render(r.value)))
		b.WriteByte('\n')
	}

	return b.String()
}

func printError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render("Error:"), msg)
}
