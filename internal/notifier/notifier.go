package notifier

import (
	"context"
	"errors"
	"fmt"
)

// Message is one report to deliver
type Message struct {
	ID      string // unique per run, used for Message-ID
	Subject string
	Body    string
}

// Notifier defines the interface for delivering reports
type Notifier interface {
	// Name identifies the channel in logs
	Name() string
	// Notify delivers msg
	Notify(ctx context.Context, msg Message) error
}

// Multi delivers to every notifier in order and joins their errors
type Multi []Notifier

// Name lists the channel names
func (m Multi) Name() string {
	names := ""
	for i, n := range m {
		if i > 0 {
			names += ","
		}
		names += n.Name()
	}
	return names
}

// Notify sends msg through each notifier, continuing past failures
func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
