package structs

// Artifact is the metadata recorded for a finished image.
type Artifact struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Location    Location `json:"location"`
	Title       string   `json:"title"`
	Status      Status   `json:"status"`
	ProcessedAt int64    `json:"processed_at"`
}
