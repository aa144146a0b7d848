package notifier

import (
	"context"
	"fmt"
	"io"
)

// DryRunNotifier prints what would be sent without delivering it
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to w
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	return &DryRunNotifier{w: w}
}

// Name returns "dry-run"
func (n *DryRunNotifier) Name() string {
	return "dry-run"
}

// Notify prints the message
func (n *DryRunNotifier) Notify(ctx context.Context, msg Message) error {
	_, err := fmt.Fprintf(n.w, "--- Subject: %s ---\n%s\n\n(Length: %d characters)\n", msg.Subject, msg.Body, len([]rune(msg.Body)))
	return err
}
