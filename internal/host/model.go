package host

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/orbis-ime/internal/imedialog"
	"github.com/muurk/orbis-ime/internal/ui"
)

// DefaultFrameRate is used when no frame rate is configured
const DefaultFrameRate = 30

type frameMsg time.Time

// Model hosts one dialog. Input collected between frames is handed to the
// controller as a single frame on every tick.
type Model struct {
	ctrl     *imedialog.Controller
	widget   *imedialog.WidgetState
	capacity int
	interval time.Duration

	// Input since the last frame
	pending []imedialog.Keycode
	paste   *string
	submit  bool
	cancel  bool

	state  imedialog.State
	result imedialog.Result

	width int
	keys  keyMap
	help  help.Model
}

// NewModel creates a model drawing ctrl, which was built from cfg, at
// frameRate frames per second
func NewModel(ctrl *imedialog.Controller, cfg *imedialog.Config, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	width := ui.GetTerminalWidth()
	h := help.New()
	h.Width = width

	return Model{
		ctrl:     ctrl,
		widget:   &imedialog.WidgetState{},
		capacity: int(cfg.MaxTextLength),
		interval: time.Second / time.Duration(frameRate),
		width:    width,
		keys:     newKeyMap(cfg),
		help:     h,
	}
}

// State returns the dialog state seen at the last frame
func (m Model) State() imedialog.State { return m.state }

// Result returns the result seen at the last frame
func (m Model) Result() imedialog.Result { return m.result }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = ui.ClampWidth(msg.Width)
		m.help.Width = m.width
		return m, nil

	case tea.KeyMsg:
		if m.state.Terminal() {
			return m, nil
		}
		switch {
		case msg.Paste:
			m = m.pasted(msg.Runes)
		case key.Matches(msg, m.keys.Submit):
			m.submit = true
		case key.Matches(msg, m.keys.Cancel):
			m.cancel = true
		default:
			m.pending = append(m.pending, translateKey(msg)...)
		}
		return m, nil

	case frameMsg:
		m = m.drawFrame()
		if m.state.Terminal() {
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// pasted inserts text at the cursor as a direct widget edit. Input still
// waiting for a frame is drawn first so it lands before the paste.
func (m Model) pasted(runes []rune) Model {
	if len(m.pending) > 0 || m.paste != nil || m.submit || m.cancel {
		m = m.drawFrame()
		if m.state.Terminal() {
			return m
		}
	}
	text := m.widget.Text
	cursor := min(max(m.widget.Cursor, 0), len(text))
	edited := text[:cursor] + string(runes) + text[cursor:]
	m.paste = &edited
	return m
}

func (m Model) drawFrame() Model {
	m.ctrl.Draw(&imedialog.Input{
		KeyEvents:    m.pending,
		PastedText:   m.paste,
		SubmitAction: m.submit,
		CancelAction: m.cancel,
		Target:       m.widget,
	})
	m.pending, m.paste, m.submit, m.cancel = nil, nil, false, false
	m.state, m.result = m.ctrl.Poll()
	return m
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	title := m.widget.Title
	if title == "" {
		title = "Input"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(inputBoxStyle(m.width, m.state).Render(m.renderText()))
	b.WriteString("\n")
	b.WriteString(counterStyle.Render(fmt.Sprintf("%d/%d", imedialog.CodeUnits(m.widget.Text), m.capacity)))
	b.WriteString("\n")

	if m.state.Terminal() {
		b.WriteString(helpStyle.Render(statusLine(m.state)))
	} else {
		b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderText() string {
	if m.state.Terminal() {
		return m.widget.Text
	}
	if m.widget.Text == "" && m.widget.Placeholder != "" {
		return cursorStyle.Render(" ") + placeholderStyle.Render(m.widget.Placeholder)
	}
	return renderCursor(m.widget.Text, m.widget.Cursor)
}

// renderCursor highlights the character at byte offset cursor
func renderCursor(text string, cursor int) string {
	cursor = min(max(cursor, 0), len(text))
	before, after := text[:cursor], text[cursor:]
	r, size := utf8.DecodeRuneInString(after)
	if size == 0 || r == '\n' {
		return before + cursorStyle.Render(" ") + after
	}
	return before + cursorStyle.Render(string(r)) + after[size:]
}

func statusLine(state imedialog.State) string {
	switch state {
	case imedialog.StateConfirmed:
		return ui.SuccessTitleStyle.Render(ui.SuccessMarker + " Confirmed")
	case imedialog.StateCancelled:
		return ui.WarningTitleStyle.Render(ui.WarningMarker + " Cancelled")
	default:
		return ui.ErrorTitleStyle.Render(ui.FailureMarker + " Aborted")
	}
}
