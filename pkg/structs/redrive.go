package structs

// RedriveRequest asks for (at most) MaxMessages to be moved off the dead letter queue.
type RedriveRequest struct {
	MaxMessages int `json:"max_messages,omitempty"`
}

// Sanitize clamps MaxMessages to (0, limit], using limit if unset.
func (r *RedriveRequest) Sanitize(limit int) {
	if r.MaxMessages <= 0 || r.MaxMessages > limit {
		r.MaxMessages = limit
	}
}

// RedriveSummary reports the outcome of one redrive run.
type RedriveSummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// QueueDepths are approximate counts of visible messages.
type QueueDepths struct {
	Jobs       int64 `json:"jobs"`
	DeadLetter int64 `json:"dead_letter"`
}
