package structs

// Lease is a message handed out by a queue receive, hidden from other receivers
// until it is deleted via Handle or the visibility timeout passes.
type Lease struct {
	// ID of the underlying message, stable across receives.
	ID string

	// Handle acknowledges this particular receive of the message.
	Handle string

	Body []byte

	// Receives is how many times the message has been handed out, including this one.
	Receives int
}
