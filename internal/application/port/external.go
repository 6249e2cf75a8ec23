package port

import "context"

// NotificationSender delivers outbound mail on terminal outcomes. It is
// best-effort: the engine fires it after commit and never lets its failure
// or latency affect the caller-visible result.
type NotificationSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
