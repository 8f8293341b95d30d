// This file implements the interactive chat interface using bubbletea.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"marketnerd/cmd/marketnerd/ui"
	"marketnerd/internal/campaign"
	"marketnerd/internal/perception"
	"marketnerd/internal/session"
)

type chatRole string

const (
	roleUser      chatRole = "user"
	roleAssistant chatRole = "assistant"
)

type chatEntry struct {
	role    chatRole
	content string
	time    time.Time
}

// turnMsg carries the backend's reply for one user message.
type turnMsg struct {
	text      string
	brief     string // rendered campaign brief, set when a session completed
	sessionID string // live session to continue, empty when none
	question  bool
	offer     bool // the reply invited the user to start a consultation
	err       error
}

// chatModel is the bubbletea model for the interactive interface.
type chatModel struct {
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	history   []chatEntry
	isLoading bool
	width     int
	height    int
	ready     bool

	// sessionID is the live consultation, empty when just chatting.
	sessionID string

	// offered is set after the assistant invited the user to start a
	// consultation, so a plain "yes" opens one.
	offered bool

	ctx context.Context
}

func newChatModel(ctx context.Context) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Tell me what you want to promote..."
	ti.Focus()
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	renderer, _ := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(78))

	return chatModel{
		textinput: ti,
		spinner:   sp,
		styles:    ui.DefaultStyles(),
		renderer:  renderer,
		ctx:       ctx,
	}
}

func runChat() error {
	ctx, cancel := signalContext()
	defer cancel()

	app.manager.StartSweeper(ctx)
	startConfigWatcher(ctx)

	p := tea.NewProgram(newChatModel(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 6
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			input := strings.TrimSpace(m.textinput.Value())
			if input == "" {
				return m, nil
			}
			if input == "/quit" || input == "/exit" {
				return m, tea.Quit
			}
			m.textinput.Reset()
			m.history = append(m.history, chatEntry{role: roleUser, content: input, time: time.Now()})
			m.isLoading = true
			m.refreshViewport()
			return m, tea.Batch(m.spinner.Tick, m.submit(input))
		}

	case turnMsg:
		m.isLoading = false
		if msg.err != nil {
			// The session state is unchanged server-side; keep the live
			// session id so the user can retry their answer.
			m.history = append(m.history, chatEntry{
				role:    roleAssistant,
				content: m.styles.Error.Render(fmt.Sprintf("Something went wrong: %v", msg.err)),
				time:    time.Now(),
			})
		} else {
			m.sessionID = msg.sessionID
			m.offered = msg.offer
			text := msg.text
			if msg.question {
				text = m.styles.Question.Render(text)
			}
			m.history = append(m.history, chatEntry{role: roleAssistant, content: text, time: time.Now()})
			if msg.brief != "" {
				m.history = append(m.history, chatEntry{role: roleAssistant, content: msg.brief, time: time.Now()})
			}
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

const campaignOffer = "I'm a marketing assistant. Tell me about a product or service you'd like to promote and we'll build a campaign together."

// submit routes one user message: continue the live session if there is
// one, otherwise classify the message and possibly open a session.
func (m chatModel) submit(input string) tea.Cmd {
	sessionID := m.sessionID
	offered := m.offered
	ctx := m.ctx
	return func() tea.Msg {
		stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
		defer cancel()

		if sessionID != "" {
			res, err := app.manager.Submit(stepCtx, sessionID, input)
			if err != nil {
				return turnMsg{err: err, sessionID: sessionID}
			}
			return m.resultMsg(res)
		}

		kind, err := app.router.Classify(stepCtx, input)
		if err != nil {
			logger.Warn(fmt.Sprintf("router degraded: %v", err))
		}
		if !shouldConsult(kind, offered, input) {
			return turnMsg{text: campaignOffer, offer: true}
		}

		_, res, err := app.manager.Create(stepCtx, input)
		if err != nil {
			return turnMsg{err: err}
		}
		return m.resultMsg(res)
	}
}

// shouldConsult decides whether a message opens a consultation: either the
// classifier calls it marketing, or the user just accepted the assistant's
// offer to start one with a plain confirmation.
func shouldConsult(kind perception.MessageKind, offered bool, input string) bool {
	if kind == perception.KindMarketing {
		return true
	}
	return offered && perception.IsAffirmative(input)
}

func (m chatModel) resultMsg(res *session.TurnResult) turnMsg {
	switch res.Type {
	case session.TurnQuestion:
		return turnMsg{text: res.Question, sessionID: res.SessionID, question: true}
	case session.TurnReady:
		brief := campaign.Brief(res.Request)
		if m.renderer != nil {
			if rendered, err := m.renderer.Render(brief); err == nil {
				brief = rendered
			}
		}
		return turnMsg{
			text:  "That's everything I need. Here is your campaign brief:",
			brief: brief,
		}
	default:
		return turnMsg{
			text: fmt.Sprintf("The consultation could not continue (%s). Let's start over whenever you're ready.", res.Reason),
		}
	}
}

func (m *chatModel) refreshViewport() {
	if !m.ready {
		return
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("marketNERD") + "\n")
	for _, entry := range m.history {
		switch entry.role {
		case roleUser:
			b.WriteString(m.styles.User.Render("you: ") + entry.content + "\n")
		default:
			b.WriteString(m.styles.Assistant.Render("nerd: ") + entry.content + "\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "loading..."
	}
	status := ""
	if m.isLoading {
		status = m.styles.Status.Render(m.spinner.View() + " thinking...")
	} else if m.sessionID != "" {
		status = m.styles.Status.Render("consultation in progress; /quit to exit")
	} else {
		status = m.styles.Status.Render("enter a message; /quit to exit")
	}
	return fmt.Sprintf("%s\n%s\n%s",
		m.viewport.View(),
		m.styles.InputBox.Render(m.textinput.View()),
		status,
	)
}
