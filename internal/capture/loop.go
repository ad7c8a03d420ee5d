package capture

import (
	"context"

	"github.com/sourcegraph/conc"
)

// Loop is a channel-backed event loop for hosts that do not bring their own
// (bubbletea programs drive the controller from their Update instead).
type Loop struct {
	ctrl  *Controller
	queue chan func() Cmd
	done  chan struct{}
	wg    conc.WaitGroup
}

func NewLoop(c *Controller) *Loop {
	return &Loop{
		ctrl:  c,
		queue: make(chan func() Cmd, 64),
		done:  make(chan struct{}),
	}
}

// Post delivers msg to the controller on the loop. Messages posted after the loop
// stopped are dropped.
func (l *Loop) Post(msg Msg) {
	l.enqueue(func() Cmd {
		cmd, _ := l.ctrl.Update(msg)
		return cmd
	})
}

// Do runs fn against the controller on the loop.
func (l *Loop) Do(fn func(c *Controller) Cmd) {
	l.enqueue(func() Cmd { return fn(l.ctrl) })
}

func (l *Loop) enqueue(fn func() Cmd) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run processes queued work until ctx is done, then waits for in-flight commands.
func (l *Loop) Run(ctx context.Context) error {
	l.ctrl.Attach(l.Post)
	defer l.ctrl.Close()
	defer l.wg.Wait()
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.exec(fn())
		}
	}
}

func (l *Loop) exec(cmd Cmd) {
	if cmd == nil {
		return
	}
	l.wg.Go(func() {
		if msg := cmd(); msg != nil {
			l.Post(msg)
		}
	})
}
