package notification

import "context"

// Sender is the boundary to the external notification service. Delivery is
// best-effort: callers log failures and never let them affect the state
// transition that triggered the notification.
type Sender interface {
	Send(ctx context.Context, template, recipient string, params map[string]string) error
}
