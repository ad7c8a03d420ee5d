// Package capture implements the quick capture controller: the text buffer, the
// submit/cancel state machine, window sizing and the focus lifecycle of the host window.
//
// A Controller is owned by a single event loop. Blocking work (the sink call and the
// focus delay) is returned as a Cmd; the loop runs it and feeds the resulting Msg back
// through Update.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"companion-cli/internal/model"

	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Outcome records how the most recent submission ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSaved
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// DefaultFocusDelay lets host focus animations settle before the input grabs focus.
const DefaultFocusDelay = 50 * time.Millisecond

type Config struct {
	Kind    model.Kind
	OwnerID string
	Source  string

	Sizing     Sizing
	Delegation Delegation

	FocusDelay time.Duration
	// HideOnBlur hides the window (keeping the buffer) when the host loses focus.
	HideOnBlur bool
	// SubmitTimeout bounds the sink call. Zero means no timeout.
	SubmitTimeout time.Duration
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l.Named("capture")
		}
	}
}

func WithInput(in Input) Option {
	return func(c *Controller) { c.input = in }
}

// WithErrorReporter installs the user-facing error surface. It is called on the
// loop after a failed submission, in addition to the notice kept in the View.
func WithErrorReporter(fn func(error)) Option {
	return func(c *Controller) { c.report = fn }
}

// WithSubmitHook is called on the loop after every completed submission.
func WithSubmitHook(fn func(model.Item, error)) Option {
	return func(c *Controller) { c.onSubmitted = fn }
}

// WithBaseContext sets the parent context of sink calls.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// View is a read-only snapshot for the rendering layer.
type View struct {
	State        State
	Outcome      Outcome
	Content      string
	InputEnabled bool
	Busy         bool
	Surface      SurfaceLayout
	WindowHeight int
	Visible      bool
	Notice       string
}

type Controller struct {
	cfg   Config
	host  WindowHost
	sink  ItemSink
	input Input

	log         *zap.Logger
	report      func(error)
	onSubmitted func(model.Item, error)
	ctx         context.Context
	now         func() time.Time

	state   State
	outcome Outcome
	buffer  string
	surface SurfaceLayout
	visible bool
	notice  string

	// appliedHeight is the last height the host accepted; 0 when unknown.
	appliedHeight int
	seq           uint64

	unsubscribe func()
}

func New(cfg Config, host WindowHost, sink ItemSink, opts ...Option) (*Controller, error) {
	if host == nil {
		return nil, errors.New("capture: window host is required")
	}
	if sink == nil {
		return nil, errors.New("capture: item sink is required")
	}
	if cfg.Kind != model.KindTask && cfg.Kind != model.KindNote {
		return nil, fmt.Errorf("capture: unknown item kind %q", cfg.Kind)
	}
	if strings.TrimSpace(cfg.OwnerID) == "" {
		return nil, errors.New("capture: owner id is required")
	}
	if cfg.Sizing == (Sizing{}) {
		cfg.Sizing = PixelSizing()
	}
	if err := cfg.Sizing.Validate(); err != nil {
		return nil, err
	}
	if cfg.FocusDelay < 0 {
		cfg.FocusDelay = 0
	}

	c := &Controller{
		cfg:     cfg,
		host:    host,
		sink:    sink,
		log:     zap.NewNop(),
		ctx:     context.Background(),
		now:     time.Now,
		surface: cfg.Sizing.Reset(),
		visible: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Attach subscribes to host focus notifications, delivering them through post.
// post must enqueue onto the loop that owns the controller.
func (c *Controller) Attach(post func(Msg)) {
	if c.unsubscribe != nil || post == nil {
		return
	}
	c.unsubscribe = c.host.OnFocusChanged(func(focused bool) {
		post(FocusChangedMsg{Focused: focused})
	})
}

// Close releases the focus subscription. Safe to call more than once.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Content() string { return c.buffer }

func (c *Controller) Sizing() Sizing { return c.cfg.Sizing }

func (c *Controller) View() View {
	return View{
		State:        c.state,
		Outcome:      c.outcome,
		Content:      c.buffer,
		InputEnabled: c.state == StateIdle,
		Busy:         c.state == StateSending,
		Surface:      c.surface,
		WindowHeight: c.cfg.Sizing.WindowHeight(c.surface.Height),
		Visible:      c.visible,
		Notice:       c.notice,
	}
}

// Update handles controller messages. The second result is false when msg is not
// one of the controller's own messages.
func (c *Controller) Update(msg Msg) (Cmd, bool) {
	switch msg := msg.(type) {
	case FocusChangedMsg:
		if msg.Focused {
			return c.FocusGained(), true
		}
		c.FocusLost()
		return nil, true
	case focusDueMsg:
		if c.input != nil {
			c.input.Focus()
		}
		return nil, true
	case submitResultMsg:
		c.finishSubmit(msg)
		return nil, true
	}
	return nil, false
}

// TextChanged records new buffer content and resizes for the measured natural height.
func (c *Controller) TextChanged(content string, naturalHeight int) {
	c.buffer = content
	c.surface = c.cfg.Sizing.Surface(naturalHeight)
	c.resize(c.cfg.Sizing.WindowHeight(c.surface.Height), false)
}

// HandleKey maps a key to a transition. It reports false for keys the text
// surface should handle itself (plain Enter inserts a newline).
func (c *Controller) HandleKey(k Key) (Cmd, bool) {
	switch k {
	case KeySubmit:
		return c.Submit(), true
	case KeyEscape:
		c.Cancel()
		return nil, true
	default:
		return nil, false
	}
}

// Submit starts persisting the buffer. It returns nil when nothing was started:
// the buffer is blank or a submission is already in flight.
func (c *Controller) Submit() Cmd {
	if c.state != StateIdle {
		c.log.Debug("submit ignored while sending")
		return nil
	}
	if strings.TrimSpace(c.buffer) == "" {
		return nil
	}

	item, err := model.NewItem(model.ItemSpec{
		Content:   c.buffer,
		Kind:      c.cfg.Kind,
		OwnerID:   c.cfg.OwnerID,
		Source:    c.cfg.Source,
		Delegated: c.cfg.Delegation.Match(c.buffer),
		Now:       c.now(),
	})
	if err != nil {
		c.fail("", err, &ItemError{Err: err})
		return nil
	}

	c.state = StateSending
	c.outcome = OutcomeNone
	c.notice = ""
	c.seq++
	seq := c.seq
	c.log.Info("submitting item",
		zap.String("id", item.ID),
		zap.String("kind", string(item.Kind)),
		zap.Bool("delegated", item.Metadata.Delegated),
		zap.Int("chars", len([]rune(item.Content))),
	)

	ctx, sink, timeout := c.ctx, c.sink, c.cfg.SubmitTimeout
	return func() Msg {
		return submitResultMsg{seq: seq, item: item, err: callSink(ctx, sink, timeout, item)}
	}
}

func callSink(ctx context.Context, sink ItemSink, timeout time.Duration, item model.Item) (err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return sink.Submit(ctx, item)
}

func (c *Controller) finishSubmit(msg submitResultMsg) {
	if c.state != StateSending || msg.seq != c.seq {
		c.log.Warn("dropping stale submit result", zap.Uint64("seq", msg.seq))
		return
	}
	c.state = StateIdle
	if msg.err != nil {
		c.fail(msg.item.ID, msg.err, &SinkError{ItemID: msg.item.ID, Err: msg.err})
	} else {
		c.outcome = OutcomeSaved
		c.log.Info("item saved", zap.String("id", msg.item.ID))
		c.hide()
	}
	if c.onSubmitted != nil {
		c.onSubmitted(msg.item, msg.err)
	}
}

// fail keeps the buffer and surfaces reported; cause is what the user sees.
func (c *Controller) fail(itemID string, cause, reported error) {
	c.outcome = OutcomeFailed
	c.notice = "Not saved: " + cause.Error()
	c.log.Error("item not saved", zap.String("id", itemID), zap.Error(reported))
	if c.report != nil {
		c.report(reported)
	}
}

// Cancel clears the buffer and hides the window. Ignored while sending.
func (c *Controller) Cancel() {
	if c.state == StateSending {
		c.log.Debug("cancel ignored while sending")
		return
	}
	c.hide()
}

// FocusGained schedules focusing the text input after the configured delay.
func (c *Controller) FocusGained() Cmd {
	delay := c.cfg.FocusDelay
	return func() Msg {
		if delay > 0 {
			time.Sleep(delay)
		}
		return focusDueMsg{}
	}
}

func (c *Controller) FocusLost() {
	if !c.cfg.HideOnBlur || c.state == StateSending || !c.visible {
		return
	}
	c.setVisible(false)
}

// Show makes the window visible and asks the host for focus.
func (c *Controller) Show() {
	c.setVisible(true)
	if err := c.host.Focus(); err != nil {
		c.log.Warn("host focus failed", zap.Error(err))
	}
}

// Toggle flips window visibility the way the global shortcut does: the buffer is
// kept across a toggle-hide.
func (c *Controller) Toggle() {
	if c.visible {
		c.setVisible(false)
		return
	}
	c.Show()
}

func (c *Controller) hide() {
	c.buffer = ""
	c.notice = ""
	c.surface = c.cfg.Sizing.Reset()
	c.resize(c.cfg.Sizing.BaseHeight, true)
	c.setVisible(false)
}

func (c *Controller) setVisible(visible bool) {
	c.visible = visible
	if err := c.host.SetVisible(visible); err != nil {
		c.log.Warn("host visibility change failed", zap.Bool("visible", visible), zap.Error(err))
	}
}

func (c *Controller) resize(height int, force bool) {
	if !force && height == c.appliedHeight {
		return
	}
	if err := c.host.Resize(c.cfg.Sizing.Width, height); err != nil {
		c.appliedHeight = 0
		c.log.Warn("host resize failed", zap.Int("height", height), zap.Error(err))
		return
	}
	c.appliedHeight = height
}
