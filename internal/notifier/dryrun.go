package notifier

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"
)

// DryRunNotifier prints what would be posted without posting it
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Notify prints the messages that would be posted
func (n *DryRunNotifier) Notify(ctx context.Context, messages []string) error {
	for i, msg := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(n.out, "--- Message %d/%d ---\n", i+1, len(messages))
		fmt.Fprintln(n.out, msg)
		fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", utf8.RuneCountInString(msg))
	}
	return nil
}
