package tui

import (
	"context"
	"fmt"
	"strings"

	"webterm/internal/events"
	"webterm/internal/history"
	"webterm/internal/logger"
	"webterm/internal/protocol"
	"webterm/internal/scrollback"
	"webterm/internal/session"
	"webterm/internal/telemetry"
	"webterm/internal/tui/render"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var log = logger.Named("tui")

type Options struct {
	Controller *session.Controller
	Executor   session.Executor
	// Events 上的 telemetry.updated 会被应用到会话状态，其余事件忽略。
	Events      *events.Bus
	ExecutorURL string
	// Context 用于执行请求，默认 context.Background()。
	Context context.Context
	// Copy 写剪贴板，默认 clipboard.WriteAll。
	Copy func(string) error

	DisableHistorySearch bool
	DisableClipboard     bool
}

type executeResultMsg struct {
	Outcome protocol.Outcome
}

type busEventMsg struct {
	Event events.Event
}

type Model struct {
	ctrl        *session.Controller
	executor    session.Executor
	ctx         context.Context
	copy        func(string) error
	executorURL string
	noSearch    bool
	noClipboard bool

	input    textinput.Model
	viewport render.Viewport
	spin     spinner.Model
	search   historySearch

	eventsSub <-chan events.Event
	notice    string

	width           int
	height          int
	transcriptDirty bool
	quitting        bool
}

func New(opts Options) *Model {
	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = session.New(session.Options{})
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Prompt = ctrl.Prompt() + " "
	ti.Placeholder = "Type a command and press Enter"
	ti.CharLimit = 0
	ti.Width = 80
	ti.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	m := &Model{
		ctrl:            ctrl,
		executor:        opts.Executor,
		ctx:             ctx,
		copy:            copyFn,
		executorURL:     opts.ExecutorURL,
		noSearch:        opts.DisableHistorySearch,
		noClipboard:     opts.DisableClipboard,
		input:           ti,
		viewport:        render.NewViewport(80, 12),
		spin:            spin,
		search:          newHistorySearch(),
		width:           80,
		height:          24,
		transcriptDirty: true,
	}
	ctrl.Scrollback().Attach(scrollback.SinkFunc(func(scrollback.Line) {
		m.refreshTranscript()
	}))
	if opts.Events != nil {
		m.eventsSub = opts.Events.Subscribe()
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spin.Tick}
	if cmd := m.listenEvents(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.finish(cmds...)
	case executeResultMsg:
		m.ctrl.Resolve(msg.Outcome)
		return m.finish(cmds...)
	case busEventMsg:
		m.handleBusEvent(msg.Event)
		if cmd := m.listenEvents(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m.finish(cmds...)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		return m.finish(cmds...)
	case tea.MouseMsg:
		cmds = append(cmds, m.viewport.HandleUpdate(msg))
		return m.finish(cmds...)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quit()
			return m.finish(tea.Quit)
		}
		if m.search.active {
			if text, done := m.search.handleKey(msg, m.ctrl.History().Entries()); done {
				if text != "" {
					m.ctrl.SetBuffer(text)
					m.syncInput()
				}
			}
			return m.finish(cmds...)
		}
		if cmd, handled := m.handleKey(msg); handled {
			cmds = append(cmds, cmd)
			return m.finish(cmds...)
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if after := m.input.Value(); after != before {
		m.ctrl.TextChanged(after)
		m.notice = ""
	}
	return m.finish(cmds...)
}

// handleKey 处理输入控制器绑定的按键，其余按键交给输入框。
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.submit(), true
	case tea.KeyUp:
		m.ctrl.Recall(history.Older)
		m.syncInput()
		return nil, true
	case tea.KeyDown:
		m.ctrl.Recall(history.Newer)
		m.syncInput()
		return nil, true
	case tea.KeyTab:
		if m.ctrl.Complete() {
			m.syncInput()
		}
		return nil, true
	case tea.KeyEsc:
		m.ctrl.HideSuggestions()
		return nil, true
	case tea.KeyPgUp:
		m.viewport.ScrollPageUp()
		return nil, true
	case tea.KeyPgDown:
		m.viewport.ScrollPageDown()
		return nil, true
	case tea.KeyCtrlR:
		if m.noSearch {
			return nil, false
		}
		m.search.open(m.ctrl.History().Entries())
		return nil, true
	case tea.KeyCtrlY:
		if m.noClipboard {
			return nil, false
		}
		m.copyLastOutput()
		return nil, true
	}
	if msg.Alt && len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9' {
		if m.ctrl.SelectSuggestion(int(msg.Runes[0] - '1')) {
			m.syncInput()
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) submit() tea.Cmd {
	job, ok := m.ctrl.Submit()
	if !ok {
		return nil
	}
	m.syncInput()
	m.notice = ""
	if m.executor == nil {
		return func() tea.Msg {
			return executeResultMsg{Outcome: protocol.TransportFailure(job.Command, fmt.Errorf("executor not configured"))}
		}
	}
	ctx, exec := m.ctx, m.executor
	return func() tea.Msg {
		return executeResultMsg{Outcome: job.Run(ctx, exec)}
	}
}

func (m *Model) copyLastOutput() {
	line, ok := m.ctrl.Scrollback().LastOutput()
	if !ok {
		m.notice = "nothing to copy"
		return
	}
	if err := m.copy(scrollback.Sanitize(line.Text)); err != nil {
		log.Warnf("clipboard write failed: %v", err)
		m.notice = "copy failed: " + err.Error()
		return
	}
	m.notice = "copied last output"
}

func (m *Model) quit() {
	m.quitting = true
	m.ctrl.Close()
}

// syncInput 把控制器中的输入写回输入框，光标放到末尾。
func (m *Model) syncInput() {
	value := m.ctrl.State().Buffer
	if m.input.Value() != value {
		m.input.SetValue(value)
	}
	m.input.CursorEnd()
}

func (m *Model) listenEvents() tea.Cmd {
	if m.eventsSub == nil {
		return nil
	}
	sub := m.eventsSub
	return func() tea.Msg {
		evt, ok := <-sub
		if !ok {
			return nil
		}
		return busEventMsg{Event: evt}
	}
}

func (m *Model) handleBusEvent(evt events.Event) {
	switch evt.Type {
	case events.TypeTelemetryUpdated:
		if snap, ok := evt.Snapshot(); ok {
			m.ctrl.ApplyTelemetry(snap)
		}
	}
}

func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	if m.transcriptDirty {
		m.flushTranscript()
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	// header + pane border + suggestions + input + status
	reserved := 1 + 2 + 1 + 1 + 1
	viewHeight := height - reserved
	if viewHeight < 3 {
		viewHeight = 3
	}
	paneWidth := width - 4
	if paneWidth < 10 {
		paneWidth = 10
	}
	m.viewport.Resize(paneWidth, viewHeight)
	m.input.Width = maxInt(10, width-lipgloss.Width(m.input.Prompt)-1)
	m.search.width = width
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	m.transcriptDirty = true
}

func (m *Model) flushTranscript() {
	m.transcriptDirty = false
	m.viewport.SetLines(m.renderTranscriptLines())
}

func (m *Model) renderTranscriptLines() []string {
	lines := m.ctrl.Scrollback().Lines()
	if len(lines) == 0 {
		return []string{hintStyle.Render("Connected to " + m.executorLabel() + ". Type a command to start.")}
	}
	return render.Lines(lines, m.viewport.Width)
}

func (m *Model) executorLabel() string {
	if m.executorURL == "" {
		return "executor"
	}
	return m.executorURL
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.ctrl.State()
	header := renderHeader(m.executorLabel(), telemetry.Format(st.Telemetry), m.width)
	pane := renderPane(m.viewport.View(), m.width, m.viewport.Height)
	parts := []string{header, pane}
	parts = append(parts, renderSuggestions(st.Suggestions, m.width))
	parts = append(parts, m.input.View())
	parts = append(parts, statusLine(st, m.notice, m.width, m.spin))
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.search.active {
		return lipgloss.JoinVertical(lipgloss.Left, content, m.search.view())
	}
	return content
}

// Controller 返回底层会话，便于退出后保存记录。
func (m *Model) Controller() *session.Controller {
	return m.ctrl
}

var (
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	accentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("#FFB454"))
)

func renderHeader(executor string, tel telemetry.Display, width int) string {
	left := accentStyle.Render("webterm") + hintStyle.Render(" • "+executor)
	right := hintStyle.Render(tel.CPU + "  " + tel.MEM)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(left + strings.Repeat(" ", gap) + right)
}

func renderPane(body string, width int, height int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5E6472")).
		Padding(0, 1)
	if width > 2 {
		style = style.Width(width - 2)
	}
	if height > 0 {
		style = style.Height(height)
	}
	return style.Render(body)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
