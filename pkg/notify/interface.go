package notify

import (
	"context"
)

// Notifier sends emails. Sending is best effort; Send reports whether it worked but
// callers should never fail because of it.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) bool
}
