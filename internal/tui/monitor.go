// Package tui implements the live spool monitor behind "spoolio top": a
// Bubbletea program showing per-state element counts and the most recent
// element arrivals, refreshed by filesystem notifications with a timer
// fallback.
package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spoolio/spoolio/internal/spool"
)

// maxRecent is how many recent arrivals the monitor keeps on screen.
const maxRecent = 8

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	countStyle  = lipgloss.NewStyle().Bold(true)
	stateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// keymap holds the monitor's key bindings.
type keymap struct {
	Quit    key.Binding
	Refresh key.Binding
}

func defaultKeymap() keymap {
	return keymap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// arrival is one element observed entering a state directory.
type arrival struct {
	event spool.Event
	at    time.Time
}

// Model is the Bubbletea model for the spool monitor.
type Model struct {
	spool   *spool.Spool
	refresh time.Duration
	keys    keymap

	counts  map[spool.Status]int
	recent  []arrival
	lastErr string
	events  <-chan spool.Event

	quitting bool
}

type tickMsg time.Time

type eventMsg spool.Event

// New creates a monitor model for an open spool. The events channel feeds
// change notifications into the model; refresh bounds how stale the counts
// can get when notifications are dropped.
func New(s *spool.Spool, events <-chan spool.Event, refresh time.Duration) Model {
	m := Model{
		spool:   s,
		refresh: refresh,
		keys:    defaultKeymap(),
		counts:  map[spool.Status]int{},
		events:  events,
	}
	m.recount()
	return m
}

// Init starts the refresh timer and the event subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForEvent())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// Update handles key presses, timer ticks, and spool events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.recount()
			return m, nil
		}
	case tickMsg:
		m.recount()
		return m, m.tick()
	case eventMsg:
		m.recent = append(m.recent, arrival{event: spool.Event(msg), at: time.Now()})
		if len(m.recent) > maxRecent {
			m.recent = m.recent[len(m.recent)-maxRecent:]
		}
		m.recount()
		return m, m.waitForEvent()
	}
	return m, nil
}

// recount re-reads the state directories. Counting from disk keeps the
// display correct even when notification events are dropped.
func (m *Model) recount() {
	m.lastErr = ""
	for _, status := range []spool.Status{spool.StatusTmp, spool.StatusNew, spool.StatusWip, spool.StatusCur} {
		entries, err := os.ReadDir(m.spool.Dir(status))
		if err != nil {
			m.lastErr = err.Error()
			continue
		}
		n := 0
		for _, entry := range entries {
			if !strings.HasPrefix(entry.Name(), ".") {
				n++
			}
		}
		m.counts[status] = n
	}
}

// View renders the monitor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("spoolio top"))
	b.WriteString("  ")
	b.WriteString(keyStyle.Render(m.spool.Path()))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s %s", "STATE", "ELEMENTS")))
	b.WriteString("\n")
	for _, status := range []spool.Status{spool.StatusNew, spool.StatusWip, spool.StatusCur, spool.StatusTmp} {
		b.WriteString(fmt.Sprintf("%-6s %s\n",
			stateStyle.Render(status.String()),
			countStyle.Render(fmt.Sprintf("%d", m.counts[status]))))
	}

	if len(m.recent) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("RECENT"))
		b.WriteString("\n")
		for i := len(m.recent) - 1; i >= 0; i-- {
			r := m.recent[i]
			b.WriteString(fmt.Sprintf("%s  %s -> %s\n",
				footerStyle.Render(r.at.Format("15:04:05")),
				keyStyle.Render(truncateKey(r.event.Key.String())),
				stateStyle.Render(r.event.Status.String())))
		}
	}

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("error: " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q quit · r refresh"))
	return b.String()
}

// truncateKey shortens 64-char element keys for display.
func truncateKey(key string) string {
	if len(key) <= 16 {
		return key
	}
	return key[:16] + "…"
}

// Run opens the monitor over an open spool and blocks until the user
// quits. It wires the spool's Watch notifications into the model.
func Run(s *spool.Spool, refresh time.Duration) error {
	events := make(chan spool.Event, 64)
	cancel, err := s.Watch(func(ev spool.Event) {
		select {
		case events <- ev:
		default: // drop rather than block the watcher; the tick recount catches up
		}
	})
	if err != nil {
		return err
	}
	// The channel is left open: the watcher goroutine may still be
	// delivering an event while the program shuts down.
	defer cancel()

	p := tea.NewProgram(New(s, events, refresh), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
