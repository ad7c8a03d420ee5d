package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"companion-cli/internal/capture"
	"companion-cli/internal/format"
	"companion-cli/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type submitResult struct {
	item model.Item
	err  error
}

func newAddCmd(app *App) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Capture an item without the overlay",
		Long: strings.TrimSpace(`
Capture an item headlessly. Arguments are joined with single spaces; use --stdin to
capture text verbatim (newlines included).
`),
		Example: strings.TrimSpace(`
  companion add Call dentist
  companion add "дживс book a table for friday"
  printf 'Call dentist\n' | companion add --stdin
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if fromStdin {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, err)
				}
				content = string(b)
			}
			if strings.TrimSpace(content) == "" {
				return writeErr(cmd, model.ErrBlankContent)
			}
			if err := app.setup(cmd, true); err != nil {
				return writeErr(cmd, err)
			}

			s, err := app.openSink(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			res, err := submitHeadless(cmd.Context(), app, s, content, headlessTimeout(app))
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.err != nil {
				color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "Not saved: %v\n", res.err)
				return notSavedError{err: res.err}
			}

			label := "saved"
			if res.item.Metadata.Delegated {
				label = "saved (delegated)"
			}
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "%s %s\n", label, res.item.ID)
			hints := []string{}
			if app.cfg.Sink.Driver == "sqlite" {
				hints = append(hints, "companion inbox")
			}
			return writeOut(cmd, app, format.Envelope(res.item, hints...))
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the item text from stdin")
	return cmd
}

// submitHeadless drives a controller on a capture.Loop: the text is fed as if typed
// and submitted with the submit key. The sink call is cancelled when waiting gives up.
func submitHeadless(ctx context.Context, app *App, s capture.ItemSink, content string, timeout time.Duration) (submitResult, error) {
	results := make(chan submitResult, 1)
	host := &headlessHost{log: app.log.Named("host"), visible: true}

	sinkCtx, cancelSink := context.WithCancel(ctx)
	defer cancelSink()

	ctrl, err := capture.New(app.cfg.Controller(), host, s,
		capture.WithLogger(app.log),
		capture.WithBaseContext(sinkCtx),
		capture.WithSubmitHook(func(it model.Item, err error) {
			results <- submitResult{item: it, err: err}
		}),
	)
	if err != nil {
		return submitResult{}, err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	loop := capture.NewLoop(ctrl)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = loop.Run(loopCtx)
	}()
	defer func() {
		cancelSink()
		cancel()
		<-stopped
	}()

	sizing := ctrl.Sizing()
	rows := strings.Count(content, "\n") + 1
	loop.Do(func(c *capture.Controller) capture.Cmd {
		c.TextChanged(content, rows*sizing.LineHeight)
		cmd, _ := c.HandleKey(capture.KeySubmit)
		return cmd
	})

	select {
	case r := <-results:
		return r, nil
	case <-ctx.Done():
		return submitResult{}, ctx.Err()
	case <-time.After(timeout):
		return submitResult{}, errors.New("timed out waiting for the sink")
	}
}

func headlessTimeout(app *App) time.Duration {
	if ms := app.cfg.Sink.TimeoutMs; ms > 0 {
		// The controller applies the sink timeout itself; leave it room to report.
		return time.Duration(ms)*time.Millisecond + 5*time.Second
	}
	return 2 * time.Minute
}
