package core

import (
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/notify"
)

// Event in a job's lifecycle that may warrant an email.
type Event int

const (
	Received Event = iota
	Succeeded
	Failed
)

// Gate returns the email (if any) to send for an event on the given attempt.
//
// Users hear when we start, when we finish, the first time something goes wrong and
// when we give up. Retries in between are silent.
func Gate(ev Event, attempt, ceiling int) notify.Kind {
	switch ev {
	case Received:
		if attempt == 1 {
			return notify.Started
		}
	case Succeeded:
		return notify.Complete
	case Failed:
		if attempt >= ceiling {
			return notify.FailedPermanent
		}
		if attempt == 1 {
			return notify.FailedRetrying
		}
	}
	return notify.None
}
