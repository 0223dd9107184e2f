package main

// This file implements the interactive numerology guide using bubbletea.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"numerologyx/internal/render"
	"numerologyx/internal/session"
	"numerologyx/internal/types"
)

var chatWidth int

// chatCmd starts the conversational guide
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the numerology guide about your report",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().IntVar(&chatWidth, "width", 80, "Markdown wrap width")
}

// chatBackend is the part of the orchestrator the chat UI drives.
type chatBackend interface {
	SendMessage(ctx context.Context, text string) (types.ChatMessage, error)
	Messages() []types.ChatMessage
}

// chatModel is the bubbletea model for the chat interface
type chatModel struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    styles
	renderer  *glamour.TermRenderer

	// State
	isLoading bool
	err       error
	width     int
	height    int
	ready     bool
	name      string

	// Backend
	ctx     context.Context
	backend chatBackend
}

// Messages for tea updates
type (
	responseMsg types.ChatMessage
	errorMsg    error
)

const chatPlaceholder = "Ask about your numbers... (Enter to send, Esc to exit)"

func newChatModel(ctx context.Context, backend chatBackend, name string) chatModel {
	st := defaultStyles()

	ti := textinput.New()
	ti.Placeholder = chatPlaceholder
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 2048
	ti.Width = chatWidth
	ti.PromptStyle = st.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Spinner

	vp := viewport.New(chatWidth, 20)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth),
	)

	return chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    st,
		renderer:  renderer,
		name:      name,
		ctx:       ctx,
		backend:   backend,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			return m.submit()
		}
		m.textinput, tiCmd = m.textinput.Update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 2
		inputHeight := 3

		height := msg.Height - headerHeight - footerHeight - inputHeight
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = height
		}
		m.textinput.Width = msg.Width - 8

		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(msg.Width-8),
		)
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case responseMsg:
		m.isLoading = false
		m.err = nil
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case errorMsg:
		m.isLoading = false
		m.err = msg
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// submit sends the input as one conversation turn.
func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textinput.Value())
	if text == "" {
		return m, nil
	}
	m.textinput.Reset()
	m.isLoading = true
	m.err = nil

	return m, tea.Batch(
		m.spinner.Tick,
		m.sendTurn(text),
	)
}

func (m chatModel) sendTurn(text string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		reply, err := backend.SendMessage(ctx, text)
		if err != nil {
			return errorMsg(err)
		}
		return responseMsg(reply)
	}
}

func (m chatModel) renderHistory() string {
	history := m.backend.Messages()
	if len(history) == 0 {
		return m.styles.Muted.Render("Your report is loaded. Ask anything about your numbers, year or remedies.")
	}
	md := render.Markdown(history)
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	chatView := m.styles.Content.Render(m.viewport.View())
	if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Consulting the numbers..."
	}
	if m.err != nil {
		chatView += "\n" + m.styles.Error.Render("Error: "+m.err.Error())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		chatView,
		m.styles.Input.Render(m.textinput.View()),
		m.styles.Muted.Render(" Enter send • Esc quit • ↑/↓ scroll"),
	)
}

func (m chatModel) renderHeader() string {
	title := m.styles.Header.Render(" numerologyX guide ")
	who := m.styles.Muted.Render(" " + m.name)
	status := m.styles.Ready.Render("● Ready")
	if m.isLoading {
		status = m.styles.Busy.Render("● Thinking")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, who, "  ", status) + "\n"
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orch.Navigate(types.ViewChat); err != nil {
		if errors.Is(err, session.ErrNoIdentity) {
			return fmt.Errorf(`no report yet: run "numerologyx calculate" first`)
		}
		return err
	}

	name := ""
	if id := a.orch.State().Identity; id != nil {
		name = id.FullName
	}
	p := tea.NewProgram(newChatModel(ctx, a.orch, name), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
