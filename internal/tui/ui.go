// Package tui provides the terminal user interface using Bubble Tea.
// It is a thin adapter over the pipeline: it submits prompts and
// renders the stream of state snapshots.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voyago-ai/voyago/internal/pipeline"
)

// stateMsg wraps a pipeline snapshot for the Bubble Tea loop.
type stateMsg pipeline.State

// streamClosedMsg signals that the snapshot stream ended.
type streamClosedMsg struct{}

// chatMessage is one entry in the transcript.
type chatMessage struct {
	role    string // "user", "assistant", "system", "warning", "error"
	content string
}

// Model is the Bubble Tea model for the assistant UI.
type Model struct {
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	styles    Styles

	orch   *pipeline.Orchestrator
	states <-chan pipeline.State
	cur    pipeline.State

	messages []chatMessage
	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates the UI model bound to an orchestrator.
func NewModel(orch *pipeline.Orchestrator) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about places, weather, or travel plans..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(DefaultTheme().Primary)

	return Model{
		textInput: ti,
		spinner:   s,
		viewport:  viewport.New(0, 0),
		styles:    DefaultStyles(),
		orch:      orch,
		states:    orch.Subscribe(),
		messages:  make([]chatMessage, 0),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.listen(),
	)
}

// listen waits for the next pipeline snapshot.
func (m Model) listen() tea.Cmd {
	ch := m.states
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return stateMsg(s)
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			query := strings.TrimSpace(m.textInput.Value())
			if query == "" {
				return m, nil
			}
			if m.handleCommand(query) {
				m.updateViewport()
				if m.quitting {
					return m, tea.Quit
				}
				return m, nil
			}

			if err := m.orch.Submit(context.Background(), query); err != nil {
				m.messages = append(m.messages, chatMessage{role: "error", content: err.Error()})
				m.updateViewport()
				return m, nil
			}

			m.messages = append(m.messages, chatMessage{role: "user", content: query})
			m.textInput.SetValue("")
			m.updateViewport()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10

		vpHeight := msg.Height - m.headerHeight() - m.footerHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.ready = true
		m.updateViewport()

	case stateMsg:
		m.applyState(pipeline.State(msg))
		m.updateViewport()
		return m, m.listen()

	case streamClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.cur.Generating || m.cur.Loading {
			m.updateViewport()
		}
	}

	if !m.cur.Generating {
		var tiCmd tea.Cmd
		m.textInput, tiCmd = m.textInput.Update(msg)
		cmds = append(cmds, tiCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// applyState folds a pipeline snapshot into the transcript.
func (m *Model) applyState(s pipeline.State) {
	prev := m.cur
	m.cur = s

	if !s.Stage.Terminal() {
		return
	}
	// Only record each terminal transition once.
	if prev.Stage.Terminal() && prev.RequestID == s.RequestID {
		return
	}

	switch s.Stage {
	case pipeline.StageDone:
		if s.Response != "" {
			m.messages = append(m.messages, chatMessage{role: "assistant", content: s.Response})
		}
		if s.Warning != "" {
			m.messages = append(m.messages, chatMessage{role: "warning", content: s.Warning})
		}
	case pipeline.StageFailed:
		m.messages = append(m.messages, chatMessage{role: "error", content: s.Err})
	}
}

// handleCommand processes special commands; reports whether the input
// was consumed.
func (m *Model) handleCommand(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		m.quitting = true
		return true

	case "clear":
		m.messages = make([]chatMessage, 0)
		m.textInput.SetValue("")
		return true

	case "help", "?":
		m.messages = append(m.messages, chatMessage{
			role: "system",
			content: `Available commands:
  help, ?     Show this help
  clear       Clear chat history
  exit, quit  Exit

Example queries:
  "What are the best restaurants in Paris?"
  "Current weather in Tokyo"
  "Plan a weekend trip to Rome"`,
		})
		m.textInput.SetValue("")
		return true
	}
	return false
}

func (m Model) headerHeight() int {
	return 2
}

func (m Model) footerHeight() int {
	return 4
}

// updateViewport rebuilds the viewport content and scrolls to the bottom.
func (m *Model) updateViewport() {
	var b strings.Builder

	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.cur.Generating {
		b.WriteString(m.renderProgress())
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return m.styles.SystemMessage.Render("Safe travels!\n")
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Voyago"))
	b.WriteString("  ")
	b.WriteString(m.renderBadges())
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.styles.Prompt.Render("> "))
	if m.cur.Generating {
		b.WriteString(m.styles.StatusText.Render("(processing...)"))
	} else {
		b.WriteString(m.textInput.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return m.styles.App.Render(b.String())
}

// renderBadges shows model readiness.
func (m Model) renderBadges() string {
	if m.cur.Loading {
		return m.styles.StatusText.Render(m.spinner.View() + " loading models")
	}

	badge := func(name string, on bool) string {
		if on {
			return m.styles.BadgeOn.Render("● " + name)
		}
		return m.styles.BadgeOff.Render("○ " + name)
	}
	return badge("tool", m.cur.ToolModelReady) + "  " + badge("chat", m.cur.ChatModelReady)
}

// renderProgress shows the current stage and any streamed text.
func (m Model) renderProgress() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.StageLabel.Render(m.cur.Stage.String()))
	if m.cur.Status != "" {
		b.WriteString(m.styles.StatusText.Render("  " + m.cur.Status))
	}
	if m.cur.Response != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.AssistantMessage.Render(m.cur.Response))
	}
	return b.String()
}

// renderMessage renders a single transcript entry.
func (m Model) renderMessage(msg chatMessage) string {
	switch msg.role {
	case "user":
		return m.styles.UserMessage.Render("You: " + msg.content)
	case "assistant":
		return m.styles.AssistantMessage.Render("Voyago: " + msg.content)
	case "system":
		return m.styles.SystemMessage.Render(msg.content)
	case "warning":
		return m.styles.WarningMessage.Render("Note: " + msg.content)
	case "error":
		return m.styles.ErrorMessage.Render(fmt.Sprintf("Error: %s", msg.content))
	}
	return ""
}

// renderHelpBar renders the bottom help bar.
func (m Model) renderHelpBar() string {
	help := []string{
		m.styles.HelpKey.Render("enter") + m.styles.HelpValue.Render(" send"),
		m.styles.HelpKey.Render("ctrl+c") + m.styles.HelpValue.Render(" quit"),
		m.styles.HelpKey.Render("help") + m.styles.HelpValue.Render(" commands"),
	}
	return m.styles.HelpBar.Render(strings.Join(help, "  |  "))
}
