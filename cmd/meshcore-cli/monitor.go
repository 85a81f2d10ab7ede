package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/meshcore-go/companion/codec"
)

const maxMonitorRows = 200

// monitorKeyMap mirrors the teacher wizard's keyMap-per-screen pattern:
// a typed binding set feeding bubbles/help rather than a hardcoded string.
type monitorKeyMap struct {
	Quit key.Binding
}

func (k monitorKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Quit} }
func (k monitorKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Quit}} }

var monitorKeys = monitorKeyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)
	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))
	pushStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#43BF6D"))
	overflowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the radio's live event stream (pushes, acks, and replies) in a scrolling TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		ctx := context.Background()
		sess, addr, err := openSession(ctx, flags, logger)
		if err != nil {
			return err
		}
		defer sess.Close()

		model := newMonitorModel(sess, addr.Addr)
		program := tea.NewProgram(model, tea.WithAltScreen())
		_, err = program.Run()
		return err
	},
}

type eventMsg codec.Event
type streamClosedMsg struct{}

type monitorModel struct {
	sess   interface {
		Events() <-chan codec.Event
	}
	events <-chan codec.Event
	addr   string
	rows   []string
	width  int
	height int
	help   help.Model
}

func newMonitorModel(sess interface {
	Events() <-chan codec.Event
}, addr string) monitorModel {
	return monitorModel{sess: sess, events: sess.Events(), addr: addr, help: help.New()}
}

func waitForEvent(ch <-chan codec.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m monitorModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, monitorKeys.Quit) {
			return m, tea.Quit
		}
		return m, nil

	case eventMsg:
		m.rows = append(m.rows, formatEvent(codec.Event(msg)))
		if len(m.rows) > maxMonitorRows {
			m.rows = m.rows[len(m.rows)-maxMonitorRows:]
		}
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		m.rows = append(m.rows, footerStyle.Render("-- session closed --"))
		return m, nil

	default:
		return m, nil
	}
}

func (m monitorModel) View() string {
	header := headerStyle.Render(fmt.Sprintf("meshcore-cli monitor — %s", m.addr))

	visible := m.rows
	if m.height > 4 && len(visible) > m.height-4 {
		visible = visible[len(visible)-(m.height-4):]
	}

	body := ""
	for _, r := range visible {
		body += r + "\n"
	}

	footer := footerStyle.Render(m.help.View(monitorKeys))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func formatEvent(ev codec.Event) string {
	ts := time.Now().Format("15:04:05")

	switch {
	case ev.QueueOverflow != nil:
		return overflowStyle.Render(fmt.Sprintf("%s  queue overflow, dropped %s", ts, ev.QueueOverflow.DroppedCode))
	case ev.ConnectionState != nil:
		return overflowStyle.Render(fmt.Sprintf("%s  state -> %s", ts, ev.ConnectionState.State))
	case ev.Advertisement != nil:
		return pushStyle.Render(fmt.Sprintf("%s  advertisement from %x", ts, ev.Advertisement.PublicKey[:codec.PublicKeyPrefix]))
	case ev.Ack != nil:
		return pushStyle.Render(fmt.Sprintf("%s  ack %x", ts, ev.Ack.Code))
	case ev.NewContact != nil:
		return pushStyle.Render(fmt.Sprintf("%s  new contact %q", ts, ev.NewContact.Name))
	case ev.ContactMessage != nil:
		return pushStyle.Render(fmt.Sprintf("%s  message from %x: %s", ts, ev.ContactMessage.SenderPrefix, ev.ContactMessage.Text))
	case ev.ParseFailure != nil:
		return overflowStyle.Render(fmt.Sprintf("%s  parse failure: %s", ts, ev.ParseFailure.Reason))
	default:
		return rowStyle.Render(fmt.Sprintf("%s  %s", ts, ev.Code))
	}
}
