package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"companion-cli/internal/cli"

	"github.com/spf13/cobra"
)

// subcommandNames lists the first-level commands of root, including the ones cobra
// adds lazily.
func subcommandNames(root *cobra.Command) map[string]bool {
	names := map[string]bool{"help": true, "completion": true}
	for _, c := range root.Commands() {
		names[c.Name()] = true
		for _, a := range c.Aliases {
			names[a] = true
		}
	}
	return names
}

func rewriteFreeTextArgs(argv []string, commands map[string]bool) []string {
	// Convenience: `companion buy milk` works like `companion add buy milk`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	//
	// IMPORTANT: Users often pass persistent flags first (e.g. `companion --sink redis buy milk`),
	// so we must find the first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config-dir": true,
		"--owner":      true,
		"--kind":       true,
		"--sink":       true,
	}
	boolFlags := map[string]bool{
		"--pretty":  true,
		"--verbose": true,
		"-v":        true,
	}

	insertAdd := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "add")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Everything after "--" is text: `companion -- -5 degrees tomorrow`.
			if i+1 < len(argv) {
				return insertAdd(i)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if commands[a] {
			return argv
		}
		return insertAdd(i)
	}

	return argv
}

func main() {
	cmd := cli.NewRootCmd()
	os.Args = rewriteFreeTextArgs(os.Args, subcommandNames(cmd))
	cmd.SetArgs(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
