package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/reccaster/internal/caster"
	"github.com/muurk/reccaster/internal/protocol"
)

// maxEvents is how many recent transitions the status view keeps
const maxEvents = 6

// StateMsg reports a caster state change to the status view
type StateMsg struct {
	From   string
	To     string
	Server string // Announced endpoint, set when entering Handshaking
	Reason string
	At     time.Time
}

// FrameMsg reports a protocol message sent or received
type FrameMsg struct {
	Dir caster.Direction
	Msg protocol.Message
}

// Sender is implemented by *tea.Program
type Sender interface {
	Send(msg tea.Msg)
}

// NewStatusObserver returns a caster.Observer that forwards events to a
// running status program.
func NewStatusObserver(p Sender) caster.Observer {
	return caster.ObserverFuncs{
		OnStateChanged: func(from, to caster.State, reason string) {
			msg := StateMsg{From: from.Name(), To: to.Name(), Reason: reason, At: time.Now()}
			if h, ok := to.(caster.Handshaking); ok {
				msg.Server = h.Announcement.Endpoint().String()
			}
			p.Send(msg)
		},
		OnFrameExchanged: func(dir caster.Direction, m protocol.Message) {
			p.Send(FrameMsg{Dir: dir, Msg: m})
		},
	}
}

// StatusModel is the live view shown by "reccaster run --tui"
type StatusModel struct {
	Listen   string
	Records  int
	State    string
	Server   string
	Since    time.Time
	Pings    int
	Sessions int // Uploads completed since start
	Events   []string

	progress SessionProgress
	spinner  spinner.Model
	width    int
	quitting bool
}

// NewStatusModel creates the status view. planSize is the number of
// messages in one upload.
func NewStatusModel(listen string, records, planSize int) StatusModel {
	sp := NewSessionProgress(planSize)
	sp.Enter("Discovering")

	return StatusModel{
		Listen:   listen,
		Records:  records,
		State:    "Discovering",
		Since:    time.Now(),
		progress: sp,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StepRunningStyle)),
		width:    GetTerminalWidth(),
	}
}

// Init implements tea.Model
func (m StatusModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StateMsg:
		m.applyState(msg)

	case FrameMsg:
		if msg.Dir == caster.Sent && m.State == "Uploading" {
			m.progress.MessageSent()
		}
		if _, ok := msg.Msg.(protocol.Pong); ok && msg.Dir == caster.Sent {
			m.Pings++
		}
	}

	return m, nil
}

func (m *StatusModel) applyState(msg StateMsg) {
	switch msg.To {
	case "Discovering":
		m.progress.Fail(msg.From, msg.Reason)
		m.Server = ""
	case "Handshaking":
		m.Server = msg.Server
		m.Pings = 0
		m.progress.Enter(msg.To)
	case "KeepingAlive":
		m.Sessions++
		m.progress.Enter(msg.To)
	default:
		m.progress.Enter(msg.To)
	}

	m.State = msg.To
	m.Since = msg.At

	event := fmt.Sprintf("%s  %s → %s  %s", msg.At.Format(time.TimeOnly), msg.From, msg.To, msg.Reason)
	m.Events = append(m.Events, event)
	if len(m.Events) > maxEvents {
		m.Events = m.Events[len(m.Events)-maxEvents:]
	}
}

// View implements tea.Model
func (m StatusModel) View() string {
	if m.quitting {
		return ""
	}

	params := []Param{
		{Key: "Listen", Value: m.Listen},
		{Key: "Records", Value: fmt.Sprint(m.Records)},
	}
	if m.Server != "" {
		params = append(params, Param{Key: "Server", Value: m.Server})
	}

	var b strings.Builder
	b.WriteString(RenderHeader("Reccaster", "reccaster run", params, m.width))
	b.WriteString("\n\n")

	state := StateStyle(m.State).Render(m.State)
	if m.State != "KeepingAlive" {
		state = m.spinner.View() + " " + state
	}
	fmt.Fprintf(&b, "  %s  %s\n\n", state, MutedStyle.Render("since "+m.Since.Format(time.TimeOnly)))

	b.WriteString(m.progress.Render())
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s %d    %s %d\n",
		MutedStyle.Render("Pings answered:"), m.Pings,
		MutedStyle.Render("Uploads completed:"), m.Sessions)

	if len(m.Events) > 0 {
		b.WriteString("\n")
		b.WriteString(TableHeaderStyle.Render("  RECENT"))
		b.WriteString("\n")
		for _, e := range m.Events {
			b.WriteString(MutedStyle.Render("  " + e))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("  q to quit"))
	b.WriteString("\n")
	return b.String()
}
