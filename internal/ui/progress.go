package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a session step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet reached
	StepRunning                    // Current state
	StepComplete                   // Passed in this session
	StepFailed                     // Where the last session ended
)

// Step is one stage of a session, matching one caster state
type Step struct {
	State   string // Caster state name
	Name    string // Display label
	Status  StepStatus
	Message string // Optional note, e.g. the failure reason
}

// SessionProgress tracks how far the current session has got, plus the
// upload progress while the catalog is being sent.
type SessionProgress struct {
	Steps []Step
	Sent  int // Upload messages sent in the current session
	Total int // Upload messages per session
	bar   progress.Model
}

// NewSessionProgress creates a progress display for uploads of total messages
func NewSessionProgress(total int) SessionProgress {
	return SessionProgress{
		Steps: []Step{
			{State: "Discovering", Name: "Discover server"},
			{State: "Handshaking", Name: "Handshake"},
			{State: "Uploading", Name: "Upload catalog"},
			{State: "KeepingAlive", Name: "Keep alive"},
		},
		Total: total,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		),
	}
}

func (p *SessionProgress) index(state string) int {
	for i, s := range p.Steps {
		if s.State == state {
			return i
		}
	}
	return -1
}

// Enter marks state as running and every earlier step as complete
func (p *SessionProgress) Enter(state string) {
	current := p.index(state)
	if current < 0 {
		return
	}
	if state == "Uploading" {
		p.Sent = 0
	}
	for i := range p.Steps {
		switch {
		case i < current:
			p.Steps[i].Status = StepComplete
		case i == current:
			p.Steps[i].Status = StepRunning
		default:
			p.Steps[i].Status = StepPending
		}
		p.Steps[i].Message = ""
	}
}

// Fail records that the session ended in state, then restarts discovery
func (p *SessionProgress) Fail(state, reason string) {
	p.Enter("Discovering")
	if i := p.index(state); i > 0 {
		p.Steps[i].Status = StepFailed
		p.Steps[i].Message = reason
	}
}

// MessageSent counts one upload message
func (p *SessionProgress) MessageSent() {
	if p.Sent < p.Total {
		p.Sent++
	}
}

// Percent returns the upload completion (0.0 - 1.0)
func (p *SessionProgress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Sent) / float64(p.Total)
}

// Render returns the styled step list, with the upload bar while uploading
func (p *SessionProgress) Render() string {
	var lines []string
	for _, step := range p.Steps {
		lines = append(lines, renderStepLine(step))
		if step.State == "Uploading" && step.Status == StepRunning {
			lines = append(lines, lipgloss.NewStyle().
				PaddingLeft(6).
				Render(fmt.Sprintf("%s  %d/%d", p.bar.ViewAs(p.Percent()), p.Sent, p.Total)))
		}
	}
	return strings.Join(lines, "\n")
}

func renderStepLine(step Step) string {
	var marker string
	var style lipgloss.Style

	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	line := "  " + style.Render(marker) + "  " + style.Render(step.Name)
	if step.Message != "" {
		line += "  " + StepNoteStyle.Render("("+step.Message+")")
	}
	return line
}
