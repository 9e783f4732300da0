package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todo-go/internal/todo"
)

// ErrNotTTY is returned by RunTUI when stdout is not a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// defaultRefreshInterval is how often the browser reloads the store to pick
// up changes made by other invocations.
const defaultRefreshInterval = 2 * time.Second

// TUIOption configures the interactive browser.
type TUIOption func(*Model)

// WithUpdateOptions sets the locking used for changes made from the browser.
func WithUpdateOptions(opts todo.UpdateOptions) TUIOption {
	return func(m *Model) {
		m.opts = opts
	}
}

// WithRefreshInterval sets how often the store is reloaded. Zero disables it.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(m *Model) {
		m.refreshInterval = d
	}
}

// WithStyles overrides the styles used to draw the browser.
func WithStyles(st Styles) TUIOption {
	return func(m *Model) {
		m.styles = st
	}
}

// RunTUI starts the interactive browser on the store at path.
func RunTUI(ctx context.Context, path string, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}

	model := NewModel(ctx, path, append([]TUIOption{WithStyles(DefaultStyles())}, opts...)...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*Model); ok && m.fatal != nil {
		return m.fatal
	}
	return nil
}

type item struct {
	id   todo.ID
	task todo.Task
}

// Model is the bubbletea model of the task browser. Every change runs as
// its own load-mutate-save cycle, so the browser never holds the lock
// between key presses.
type Model struct {
	ctx             context.Context
	path            string
	opts            todo.UpdateOptions
	styles          Styles
	refreshInterval time.Duration

	items    []item
	cursor   int
	loadErr  error
	status   string
	showHelp bool

	// fatal is reported by RunTUI after the program exits.
	fatal error
}

type tickMsg time.Time

// NewModel creates a browser model for the store at path.
func NewModel(ctx context.Context, path string, opts ...TUIOption) *Model {
	m := &Model{
		ctx:             ctx,
		path:            path,
		styles:          PlainStyles(),
		refreshInterval: defaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	m.reload()
	if m.loadErr != nil && errors.Is(m.loadErr, todo.ErrNotFound) {
		m.fatal = m.loadErr
		return tea.Quit
	}
	return m.tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			if len(m.items) > 0 {
				m.cursor = len(m.items) - 1
			}
		case " ", "enter", "x":
			m.toggle()
		case "d", "delete":
			m.remove()
		case "c":
			m.clean()
		case "r", "f5":
			m.reload()
			m.status = "Reloaded"
		case "?", "h":
			m.showHelp = !m.showHelp
		}
	case tickMsg:
		m.reload()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Todo"))
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render(m.path))
	b.WriteString("\n\n")

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(m.styles.Error.Render("Error: " + m.loadErr.Error()))
		b.WriteString("\n\n")
	} else if len(m.items) == 0 {
		b.WriteString("  No tasks.\n\n")
	} else {
		for i, it := range m.items {
			cursor := "  "
			if i == m.cursor {
				cursor = m.styles.Cursor.Render("> ")
			}
			b.WriteString(cursor)
			b.WriteString(FormatTask(m.styles, it.id, it.task, false))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	pending, done := m.counts()
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d pending, %d done", pending, done)))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render("space toggle | d delete | c clean | r reload | ? help | q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) tick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// reload reads the store again and keeps the cursor on the same task when
// it still exists.
func (m *Model) reload() {
	var selected todo.ID
	if it, ok := m.selected(); ok {
		selected = it.id
	}

	err := todo.View(m.path, func(s *todo.Store) error {
		items := make([]item, 0, s.Len())
		for id, t := range s.List() {
			items = append(items, item{id: id, task: t})
		}
		m.items = items
		return nil
	})
	m.loadErr = err
	if err != nil {
		m.items = nil
	}

	m.cursor = 0
	for i, it := range m.items {
		if it.id == selected {
			m.cursor = i
			break
		}
	}
}

func (m *Model) selected() (item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return item{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) toggle() {
	it, ok := m.selected()
	if !ok {
		return
	}
	complete := !it.task.Complete
	var changed bool
	m.apply(func(s *todo.Store) (bool, error) {
		var err error
		changed, err = s.SetComplete(it.id, complete)
		return changed, err
	})
	if m.status != "" {
		return
	}
	switch {
	case !changed && complete:
		m.status = fmt.Sprintf("Task %d already complete", it.id)
	case !changed:
		m.status = fmt.Sprintf("Task %d already pending", it.id)
	case complete:
		m.status = fmt.Sprintf("Completed %d", it.id)
	default:
		m.status = fmt.Sprintf("Reopened %d", it.id)
	}
}

// remove deletes the selected task. The cursor stays at the same row, or
// moves to the new last row when the bottom task was deleted.
func (m *Model) remove() {
	it, ok := m.selected()
	if !ok {
		return
	}
	row := m.cursor
	m.apply(func(s *todo.Store) (bool, error) {
		return true, s.Remove(it.id)
	})
	if m.status == "" {
		m.status = fmt.Sprintf("Deleted %d", it.id)
	}
	if cur, ok := m.selected(); ok && cur.id == it.id {
		return
	}
	m.cursor = max(min(row, len(m.items)-1), 0)
}

func (m *Model) clean() {
	var removed int
	m.apply(func(s *todo.Store) (bool, error) {
		removed = s.Clean()
		return removed > 0, nil
	})
	if m.status == "" {
		m.status = fmt.Sprintf("Removed %d completed", removed)
	}
}

// apply runs fn as a load-mutate-save cycle and reloads the list. On
// failure the error becomes the status line.
func (m *Model) apply(fn todo.MutateFunc) {
	m.status = ""
	if err := todo.Update(m.ctx, m.path, m.opts, fn); err != nil {
		m.status = m.styles.Error.Render("Error: " + err.Error())
	}
	m.reload()
}

func (m *Model) counts() (pending, done int) {
	for _, it := range m.items {
		if it.task.Complete {
			done++
		} else {
			pending++
		}
	}
	return pending, done
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up, k          Move up\n")
	b.WriteString("  down, j        Move down\n")
	b.WriteString("  g, G           Jump to first or last task\n")
	b.WriteString("  space, enter   Toggle complete\n")
	b.WriteString("  d              Delete task\n")
	b.WriteString("  c              Remove completed tasks\n")
	b.WriteString("  r, F5          Reload from disk\n")
	b.WriteString("  ?, h           Toggle this help screen\n")
	b.WriteString("  q, esc, ctrl+c Quit\n\n")
}
