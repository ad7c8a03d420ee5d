package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"companion-cli/internal/capture"
	"companion-cli/internal/config"
	"companion-cli/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
)

// toggleMsg shows or hides a resident overlay.
type toggleMsg struct{}

type Options struct {
	Config *config.Config
	Sink   capture.ItemSink
	Logger *zap.Logger
	// Resident keeps the program running after the overlay hides; it comes back on toggle.
	Resident bool
	// Bell receives the terminal bell when tui.error_surface is "bell".
	Bell io.Writer
	// Context is the parent of sink calls.
	Context context.Context
}

// Result describes a finished overlay session.
type Result struct {
	Saved []model.Item
	// LastError is the most recent failed submission, if any.
	LastError error
}

func (r Result) Canceled() bool { return len(r.Saved) == 0 }

type overlayModel struct {
	ctrl *capture.Controller
	host *programHost
	log  *zap.Logger

	keys keyMap
	help help.Model
	ta   textarea.Model
	spin spinner.Model

	bell   io.Writer
	bellOn bool

	termWidth int
	pending   []capture.Msg
	// inputCmds holds textarea commands (cursor blink) raised while the controller
	// focused the input; Update returns them.
	inputCmds []tea.Cmd

	saved   []model.Item
	lastErr error
}

// inputFocuser lets the controller focus the textarea owned by the model.
type inputFocuser struct{ m *overlayModel }

func (f inputFocuser) Focus() {
	if cmd := f.m.ta.Focus(); cmd != nil {
		f.m.inputCmds = append(f.m.inputCmds, cmd)
	}
}

func newOverlayModel(opts Options, host *programHost) (*overlayModel, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("tui: missing configuration")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := &overlayModel{
		host:   host,
		log:    log.Named("tui"),
		keys:   newKeyMap(cfg.TUI.SubmitKeys),
		help:   help.New(),
		bell:   opts.Bell,
		bellOn: cfg.TUI.ErrorSurface == "bell",
	}

	m.ta = textarea.New()
	m.ta.Placeholder = cfg.TUI.Placeholder
	// bubbles v0.20 defaults to a small CharLimit and MaxHeight.
	m.ta.CharLimit = 0
	m.ta.MaxHeight = 0
	m.ta.ShowLineNumbers = false
	m.ta.Prompt = glyphPrompt() + " "
	m.ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	m.ta.SetHeight(1)

	m.spin = spinner.New(spinner.WithSpinner(glyphSpinner()), spinner.WithStyle(styleAccent()))
	m.help.ShortSeparator = glyphSeparator()

	cc := cfg.Controller()
	if !host.resident {
		// Hiding ends a non-resident overlay; a blur must not take the buffer with it.
		cc.HideOnBlur = false
	}
	ctrl, err := capture.New(cc, host, opts.Sink,
		capture.WithLogger(log),
		capture.WithInput(inputFocuser{m: m}),
		capture.WithErrorReporter(m.reportError),
		capture.WithSubmitHook(m.submitted),
		capture.WithBaseContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	m.ctrl = ctrl
	m.ctrl.Attach(m.post)
	m.layoutInput()
	return m, nil
}

func (m *overlayModel) post(msg capture.Msg) { m.pending = append(m.pending, msg) }

func (m *overlayModel) reportError(err error) {
	m.lastErr = err
	if m.bellOn && m.bell != nil {
		_, _ = io.WriteString(m.bell, "\a")
	}
}

func (m *overlayModel) submitted(it model.Item, err error) {
	if err == nil {
		m.saved = append(m.saved, it)
	}
}

func (m *overlayModel) result() Result {
	return Result{Saved: append([]model.Item(nil), m.saved...), LastError: m.lastErr}
}

func teaCmd(c capture.Cmd) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg { return c() }
}

// frameWidth is the overlay width in columns, capped by the terminal.
func (m *overlayModel) frameWidth() int {
	w := m.ctrl.Sizing().Width
	if m.termWidth > 0 && m.termWidth < w {
		w = m.termWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// textWidth is the textarea width: frame minus border and padding.
func (m *overlayModel) textWidth() int { return m.frameWidth() - 4 }

func (m *overlayModel) layoutInput() {
	m.ta.SetWidth(m.textWidth())
	m.help.Width = m.textWidth()
}

// naturalHeight measures the buffer the way the controller expects: wrapped rows
// times the row height, uncapped.
func (m *overlayModel) naturalHeight() int {
	contentW := m.textWidth() - xansi.StringWidth(m.ta.Prompt)
	return wrappedRows(m.ta.Value(), contentW) * m.ctrl.Sizing().LineHeight
}

func (m *overlayModel) applySurface() {
	v := m.ctrl.View()
	rows := v.Surface.Height / m.ctrl.Sizing().LineHeight
	if rows < 1 {
		rows = 1
	}
	m.ta.SetHeight(rows)
}

// syncInput mirrors controller-side clears (save, cancel) into the textarea.
func (m *overlayModel) syncInput() {
	if m.ctrl.Content() == "" && m.ta.Value() != "" {
		m.ta.Reset()
	}
	m.applySurface()
}

func (m *overlayModel) drain() []tea.Cmd {
	var cmds []tea.Cmd
	for len(m.pending) > 0 {
		msg := m.pending[0]
		m.pending = m.pending[1:]
		if cmd, ok := m.ctrl.Update(msg); ok && cmd != nil {
			cmds = append(cmds, teaCmd(cmd))
		}
	}
	return cmds
}

func (m *overlayModel) Init() tea.Cmd {
	// The terminal starts focused.
	m.host.emitFocus(true)
	return tea.Batch(append(m.drain(), textarea.Blink)...)
}

func (m *overlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.layoutInput()
		if m.ctrl.State() == capture.StateIdle && m.host.visible {
			m.ctrl.TextChanged(m.ta.Value(), m.naturalHeight())
		}
	case tea.FocusMsg:
		m.host.emitFocus(true)
	case tea.BlurMsg:
		m.host.emitFocus(false)
	case toggleMsg:
		m.ctrl.Toggle()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.ctrl.Close()
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKey(msg))
	case spinner.TickMsg:
		if m.ctrl.View().Busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	default:
		if cmd, ok := m.ctrl.Update(msg); ok {
			cmds = append(cmds, teaCmd(cmd))
		} else {
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.drain()...)
	cmds = append(cmds, m.inputCmds...)
	m.inputCmds = nil
	m.syncInput()
	if m.host.quit {
		m.ctrl.Close()
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m *overlayModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if !m.host.visible {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Submit):
		cmd, _ := m.ctrl.HandleKey(capture.KeySubmit)
		if cmd == nil {
			return nil
		}
		return tea.Batch(teaCmd(cmd), m.spin.Tick)
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.HandleKey(capture.KeyEscape)
		return nil
	}

	if !m.ctrl.View().InputEnabled {
		return nil
	}
	before := m.ta.Value()
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	if after := m.ta.Value(); after != before {
		m.ctrl.TextChanged(after, m.naturalHeight())
	}
	return cmd
}

func (m *overlayModel) statusLine(v capture.View) string {
	switch {
	case v.Busy:
		return m.spin.View() + " Saving…"
	case v.Notice != "":
		return styleError().Render(v.Notice)
	case v.Content != "":
		n := utf8.RuneCountInString(v.Content)
		return styleMuted().Render(fmt.Sprintf("%d chars", n))
	default:
		return ""
	}
}

func (m *overlayModel) View() string {
	if !m.host.visible {
		return ""
	}
	v := m.ctrl.View()
	width := m.frameWidth()

	body := strings.Join([]string{
		m.ta.View(),
		m.statusLine(v),
		m.help.ShortHelpView(m.keys.ShortHelp()),
	}, "\n")
	box := styleFrame(width).Render(body)

	height := m.host.height
	if height <= 0 {
		height = m.ctrl.Sizing().BaseHeight
	}
	return normalizePane(box, width, height)
}
