package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"companion-cli/internal/config"
	"companion-cli/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type recordingSink struct {
	mu    sync.Mutex
	items []model.Item
	err   error
}

func (s *recordingSink) Submit(_ context.Context, it model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, it)
	return nil
}

func (s *recordingSink) saved() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults(t.TempDir())
	cfg.OwnerID = "owner-1"
	cfg.Window.FocusDelayMs = 0
	return cfg
}

func newTestOverlay(t *testing.T, opts Options, resident bool) *overlayModel {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig(t)
	}
	m, err := newOverlayModel(opts, newProgramHost(resident))
	if err != nil {
		t.Fatalf("new overlay: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	run(m, m.Init())
	if !m.ta.Focused() {
		t.Fatalf("expected textarea to be focused after init")
	}
	return m
}

// run executes cmd and feeds its messages back into the model once. Follow-up
// commands (cursor blink, spinner ticks) are not executed.
func run(m *overlayModel, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			run(m, c)
		}
	case tea.QuitMsg, spinner.TickMsg:
	default:
		m.Update(msg)
	}
}

func typeText(m *overlayModel, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func pressEnter(m *overlayModel) {
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func pressSubmit(m *overlayModel) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	return cmd
}

func TestOverlay_SubmitSavesRawBufferAndQuits(t *testing.T) {
	sink := &recordingSink{}
	m := newTestOverlay(t, Options{Sink: sink}, false)

	typeText(m, "Call dentist")
	pressEnter(m)
	if got := m.ctrl.Content(); got != "Call dentist\n" {
		t.Fatalf("expected buffer %q, got %q", "Call dentist\n", got)
	}
	if m.host.height != 6 {
		t.Fatalf("expected window height 6 for two rows, got %d", m.host.height)
	}

	cmd := pressSubmit(m)
	if cmd == nil {
		t.Fatalf("expected submit command")
	}
	if !strings.Contains(m.View(), "Saving") {
		t.Fatalf("expected busy indicator while sending, got:\n%s", m.View())
	}
	run(m, cmd)

	items := sink.saved()
	if len(items) != 1 {
		t.Fatalf("expected 1 saved item, got %d", len(items))
	}
	it := items[0]
	if it.Content != "Call dentist\n" || it.Kind != model.KindTask || it.Metadata.Delegated {
		t.Fatalf("unexpected item: %+v", it)
	}
	if !m.host.quit || m.host.visible {
		t.Fatalf("expected overlay to hide and quit after save")
	}
	if m.host.height != 5 {
		t.Fatalf("expected reset to base height 5, got %d", m.host.height)
	}
	if m.ta.Value() != "" {
		t.Fatalf("expected textarea cleared, got %q", m.ta.Value())
	}
	res := m.result()
	if res.Canceled() || len(res.Saved) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestOverlay_DelegationKeyword(t *testing.T) {
	sink := &recordingSink{}
	cfg := testConfig(t)
	cfg.TUI.SubmitKeys = []string{"ctrl+s"}
	m := newTestOverlay(t, Options{Config: cfg, Sink: sink}, false)

	typeText(m, "ДЖИВС book a table")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	run(m, cmd)

	items := sink.saved()
	if len(items) != 1 || !items[0].Metadata.Delegated {
		t.Fatalf("expected one delegated item, got %+v", items)
	}
}

func TestOverlay_EscapeCancels(t *testing.T) {
	sink := &recordingSink{}
	m := newTestOverlay(t, Options{Sink: sink}, false)

	typeText(m, "draft")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command on cancel")
	}
	if !m.host.quit {
		t.Fatalf("expected cancel to hide the overlay")
	}
	if m.ctrl.Content() != "" || m.ta.Value() != "" {
		t.Fatalf("expected buffer cleared on cancel")
	}
	if len(sink.saved()) != 0 {
		t.Fatalf("expected nothing saved")
	}
	if !m.result().Canceled() {
		t.Fatalf("expected canceled result")
	}
}

func TestOverlay_BlankSubmitIsIgnored(t *testing.T) {
	m := newTestOverlay(t, Options{Sink: &recordingSink{}}, false)

	typeText(m, "   ")
	pressEnter(m)
	if cmd := pressSubmit(m); cmd != nil {
		t.Fatalf("expected no command for blank submit")
	}
	if m.host.quit {
		t.Fatalf("blank submit must not hide the overlay")
	}
}

func TestOverlay_FailureKeepsBufferAndRingsBell(t *testing.T) {
	var bell bytes.Buffer
	cfg := testConfig(t)
	cfg.TUI.ErrorSurface = "bell"
	sink := &recordingSink{err: errors.New("network down")}
	m := newTestOverlay(t, Options{Config: cfg, Sink: sink, Bell: &bell}, false)

	typeText(m, "x")
	run(m, pressSubmit(m))

	if m.host.quit || !m.host.visible {
		t.Fatalf("failed save must keep the overlay open")
	}
	if m.ta.Value() != "x" || m.ctrl.Content() != "x" {
		t.Fatalf("expected buffer preserved, got %q", m.ta.Value())
	}
	if !strings.Contains(m.View(), "Not saved") {
		t.Fatalf("expected failure notice in view:\n%s", m.View())
	}
	if bell.String() != "\a" {
		t.Fatalf("expected a bell, got %q", bell.String())
	}
	if m.result().LastError == nil {
		t.Fatalf("expected last error recorded")
	}

	// Retry after the sink recovers.
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	run(m, pressSubmit(m))
	if len(sink.saved()) != 1 || !m.host.quit {
		t.Fatalf("expected retry to save and quit")
	}
}

func TestOverlay_InputIgnoredWhileSending(t *testing.T) {
	sink := &recordingSink{}
	m := newTestOverlay(t, Options{Sink: sink}, false)

	typeText(m, "first")
	cmd := pressSubmit(m)
	if cmd == nil {
		t.Fatalf("expected submit command")
	}
	typeText(m, "zzz")
	if m.ctrl.Content() != "first" {
		t.Fatalf("expected input ignored while sending, got %q", m.ctrl.Content())
	}
	if again := pressSubmit(m); again != nil {
		t.Fatalf("expected second submit to be ignored while sending")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.host.quit {
		t.Fatalf("escape must be ignored while sending")
	}
	run(m, cmd)
	if len(sink.saved()) != 1 {
		t.Fatalf("expected exactly one save, got %d", len(sink.saved()))
	}
}

func TestOverlay_GrowthIsCapped(t *testing.T) {
	m := newTestOverlay(t, Options{Sink: &recordingSink{}}, false)

	for i := 0; i < 20; i++ {
		typeText(m, "line")
		pressEnter(m)
	}
	// base 5 + (max text 8 - line 1)
	if m.host.height != 12 {
		t.Fatalf("expected capped height 12, got %d", m.host.height)
	}
	if !m.ctrl.View().Surface.Scroll {
		t.Fatalf("expected scroll once the text exceeds the cap")
	}
	if got := strings.Count(m.View(), "\n") + 1; got != 12 {
		t.Fatalf("expected view to render 12 rows, got %d", got)
	}
}

func TestOverlay_ResidentToggleKeepsBuffer(t *testing.T) {
	m := newTestOverlay(t, Options{Sink: &recordingSink{}}, true)

	typeText(m, "keep me")
	m.Update(toggleMsg{})
	if m.host.visible || m.host.quit {
		t.Fatalf("expected resident overlay hidden but running")
	}
	if m.View() != "" {
		t.Fatalf("expected blank view while hidden")
	}
	typeText(m, "ignored")

	_, cmd := m.Update(toggleMsg{})
	if !m.host.visible {
		t.Fatalf("expected overlay shown again")
	}
	if m.host.focusRequests != 1 {
		t.Fatalf("expected one focus request, got %d", m.host.focusRequests)
	}
	run(m, cmd)
	if m.ctrl.Content() != "keep me" || m.ta.Value() != "keep me" {
		t.Fatalf("expected buffer kept across toggle, got %q", m.ctrl.Content())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.host.quit {
		t.Fatalf("resident overlay must not quit on cancel")
	}
	if m.ctrl.Content() != "" {
		t.Fatalf("expected cancel to clear the buffer")
	}
}

func TestOverlay_HideOnBlur(t *testing.T) {
	cfg := testConfig(t)
	cfg.Window.HideOnBlur = true
	m := newTestOverlay(t, Options{Config: cfg, Sink: &recordingSink{}}, true)

	typeText(m, "half a thought")
	m.Update(tea.BlurMsg{})
	if m.host.visible {
		t.Fatalf("expected blur to hide the overlay")
	}
	if m.ctrl.Content() != "half a thought" {
		t.Fatalf("expected buffer kept on blur")
	}
}

func TestOverlay_BlurKeepsNonResidentOverlayOpen(t *testing.T) {
	cfg := testConfig(t)
	cfg.Window.HideOnBlur = true
	m := newTestOverlay(t, Options{Config: cfg, Sink: &recordingSink{}}, false)

	typeText(m, "half a thought")
	m.Update(tea.BlurMsg{})
	if m.host.quit || !m.host.visible {
		t.Fatalf("expected non-resident overlay to stay open on blur")
	}
	if m.ctrl.Content() != "half a thought" || m.ta.Value() != "half a thought" {
		t.Fatalf("expected buffer kept on blur, got %q", m.ctrl.Content())
	}
}

func TestOverlay_DelayedFocusRestartsCursorBlink(t *testing.T) {
	m := newTestOverlay(t, Options{Sink: &recordingSink{}}, false)
	m.ta.Blur()

	inputFocuser{m: m}.Focus()
	if !m.ta.Focused() {
		t.Fatalf("expected textarea focused")
	}
	if len(m.inputCmds) != 1 {
		t.Fatalf("expected the blink command to be kept, got %d", len(m.inputCmds))
	}
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if cmd == nil {
		t.Fatalf("expected Update to return the blink command")
	}
	if len(m.inputCmds) != 0 {
		t.Fatalf("expected input commands drained")
	}
}

func TestOverlay_CtrlCQuits(t *testing.T) {
	m := newTestOverlay(t, Options{Sink: &recordingSink{}}, true)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestNewKeyMap(t *testing.T) {
	km := newKeyMap([]string{" Ctrl+J ", ""})
	if !key.Matches(tea.KeyMsg{Type: tea.KeyCtrlJ}, km.Submit) {
		t.Fatalf("expected ctrl+j to submit")
	}
	if key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Submit) {
		t.Fatalf("plain enter must not submit")
	}

	def := newKeyMap(nil)
	if !key.Matches(tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, def.Submit) {
		t.Fatalf("expected alt+enter to submit by default")
	}
}
