package queue

import (
	"context"
	"time"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// Queue is an at-least-once message queue with delayed visibility.
//
// A message handed out by Receive is hidden from other receivers for the visibility timeout.
// If it isn't deleted (acknowledged) in that time it becomes visible again & will be handed
// out again, possibly to someone else. Callers must assume they may see a message more than
// once, possibly concurrently.
type Queue interface {
	// Enqueue a message body. It becomes visible to receivers after delay.
	// Returns a unique id for the message.
	Enqueue(ctx context.Context, body []byte, delay time.Duration) (string, error)

	// Receive up to max visible messages, hiding each of them for visibility.
	//
	// Returning fewer messages than asked for (including none) is not an error.
	Receive(ctx context.Context, max int, visibility time.Duration) ([]*structs.Lease, error)

	// Delete (acknowledge) a message via the handle of a lease given to us by Receive.
	//
	// If the message has since been received again (the lease expired & someone else
	// picked it up) ErrLeaseLost is returned & the message is left alone.
	Delete(ctx context.Context, handle string) error

	// ApproximateDepth is the number of currently visible messages. It's a snapshot
	// & may well be out of date by the time it returns.
	ApproximateDepth(ctx context.Context) (int64, error)

	// Name of this queue.
	Name() string
}
