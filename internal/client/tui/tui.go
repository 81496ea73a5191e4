// Package tui renders a chat session in the terminal. It only draws the
// controller's snapshots and forwards key presses; the controller owns the
// conversation.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"punch/internal/client/model"
	"punch/internal/client/session"
)

const (
	headerHeight = 2
	footerHeight = 2
	typingFrame  = 350 * time.Millisecond
)

var (
	accent = lipgloss.Color("#FF6B2C")
	muted  = lipgloss.Color("245")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle      = lipgloss.NewStyle().Foreground(muted)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(accent).Padding(0, 1)
	assistantStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#F1DFD0")).Padding(0, 1)
	stampStyle     = lipgloss.NewStyle().Foreground(muted).Faint(true)
	greetingStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1)
)

// Controller is the part of *session.Controller the TUI drives.
type Controller interface {
	Snapshot() session.Snapshot
	Submit(ctx context.Context, input string) bool
	Clear(ctx context.Context)
	SignOut(ctx context.Context) error
}

// changedMsg asks the model to redraw from the controller's latest
// snapshot.
type changedMsg struct{}

type submitDoneMsg struct{}

type typingTickMsg struct{}

type signedOutMsg struct{ err error }

type Model struct {
	ctx  context.Context
	ctrl Controller

	viewport viewport.Model
	input    textinput.Model
	snap     session.Snapshot

	ready     bool
	sending   bool
	ticking   bool
	frame     int
	signedOut bool
	err       error
}

func New(ctx context.Context, ctrl Controller) Model {
	input := textinput.New()
	input.Placeholder = "text punch..."
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Focus()

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		viewport: viewport.New(80, 20),
		input:    input,
		snap:     ctrl.Snapshot(),
	}
}

// Run starts the program and blocks until the user quits. It reports
// whether the user signed out.
func Run(ctx context.Context, ctrl *session.Controller) (bool, error) {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	// Observers may fire from inside Update (ctrl+l), where a blocking Send
	// would deadlock the event loop.
	ctrl.OnChange(func(session.Snapshot) { go p.Send(changedMsg{}) })

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m := final.(Model)
	return m.signedOut, m.err
}

func (m Model) SignedOut() bool { return m.signedOut }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh(m.ctrl.Snapshot())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+l":
			m.ctrl.Clear(m.ctx)
			m.refresh(m.ctrl.Snapshot())
			return m, nil
		case "ctrl+o":
			return m, m.signOut()
		case "enter":
			return m, m.submit()
		}

	case changedMsg:
		m.refresh(m.ctrl.Snapshot())
		return m, m.startTicking()

	case submitDoneMsg:
		m.sending = false
		m.refresh(m.ctrl.Snapshot())
		return m, nil

	case typingTickMsg:
		if !m.snap.Typing() {
			m.ticking = false
			return m, nil
		}
		m.frame = (m.frame + 1) % 3
		m.refresh(m.snap)
		return m, tick()

	case signedOutMsg:
		m.err = msg.err
		m.signedOut = msg.err == nil
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit is a no-op while a send started here has not reported back, even
// if no snapshot showing it has arrived yet.
func (m *Model) submit() tea.Cmd {
	if m.sending || m.snap.State != session.StateIdle {
		return nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()
	m.sending = true
	m.input.Blur()

	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.Submit(ctx, text)
		return submitDoneMsg{}
	}
}

func (m *Model) signOut() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return signedOutMsg{err: ctrl.SignOut(ctx)}
	}
}

func (m *Model) startTicking() tea.Cmd {
	if m.ticking || !m.snap.Typing() {
		return nil
	}
	m.ticking = true
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(typingFrame, func(time.Time) tea.Msg { return typingTickMsg{} })
}

// refresh redraws the transcript and keeps it scrolled to the newest line.
func (m *Model) refresh(snap session.Snapshot) {
	m.snap = snap
	if snap.State == session.StateIdle && !m.sending {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	width := m.viewport.Width
	bubbleWidth := max(width*3/4, 20)

	var b strings.Builder
	if len(m.snap.Messages) == 0 {
		b.WriteString(greetingStyle.Render("hey " + m.snap.Name + "!"))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("text me anything, i'm all ears"))
		b.WriteString("\n")
	}

	for _, msg := range m.snap.Messages {
		b.WriteString(renderMessage(msg, width, bubbleWidth))
		b.WriteString("\n")
	}

	if m.snap.Typing() {
		dots := strings.Repeat("•", m.frame+1) + strings.Repeat(" ", 2-m.frame)
		b.WriteString(assistantStyle.Render(dots))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMessage(msg model.Message, width, bubbleWidth int) string {
	style, align := assistantStyle, lipgloss.Left
	if msg.Role == model.RoleUser {
		style, align = userStyle, lipgloss.Right
	}
	if lipgloss.Width(msg.Content) > bubbleWidth {
		style = style.Width(bubbleWidth)
	}
	block := lipgloss.JoinVertical(align, style.Render(msg.Content), stampStyle.Render(msg.Timestamp))
	return lipgloss.PlaceHorizontal(width, align, block)
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	header := titleStyle.Render("punch") + hintStyle.Render("  ctrl+l clear · ctrl+o sign out · esc quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.viewport.View(),
		"",
		m.input.View(),
	)
}
