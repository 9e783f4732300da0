// Package ui renders tasks for the terminal and provides the interactive browser.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/todo-go/internal/todo"
)

// Styles holds the lipgloss styles used to render tasks.
type Styles struct {
	Title   lipgloss.Style
	ID      lipgloss.Style
	Done    lipgloss.Style
	Pending lipgloss.Style
	Muted   lipgloss.Style
	Cursor  lipgloss.Style
	Error   lipgloss.Style
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		ID:      plain,
		Done:    plain,
		Pending: plain,
		Muted:   plain,
		Cursor:  plain,
		Error:   plain,
	}
}

// DefaultStyles returns the colored styles used on terminals.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ID:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Done:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Strikethrough(true),
		Pending: lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Cursor:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// StylesFor picks colored styles when w is a terminal and plain ones otherwise.
func StylesFor(w io.Writer) Styles {
	if IsTTY(w) {
		return DefaultStyles()
	}
	return PlainStyles()
}

// FormatTask formats one task as a single line, followed by timestamp lines
// when verbose is set.
func FormatTask(st Styles, id todo.ID, t todo.Task, verbose bool) string {
	mark := "[ ]"
	text := st.Pending.Render(t.Description)
	if t.Complete {
		mark = "[x]"
		text = st.Done.Render(t.Description)
	}

	line := fmt.Sprintf("%s %s %s", mark, st.ID.Render(fmt.Sprintf("%3d", id)), text)
	if !verbose {
		return line
	}

	var b strings.Builder
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(st.Muted.Render("      created   " + t.CreatedAt.Format(time.RFC3339)))
	if t.CompletedAt != nil {
		b.WriteString("\n")
		b.WriteString(st.Muted.Render("      completed " + t.CompletedAt.Format(time.RFC3339)))
	}
	return b.String()
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
