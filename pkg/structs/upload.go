package structs

// Upload is an image handed to the pipeline for processing, along with who it's for.
type Upload struct {
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`

	OwnerID       string `json:"owner_id"`
	NotifyAddress string `json:"notify_address"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Title         string `json:"title"`
}

// UploadResponse is returned once an upload is staged & queued.
type UploadResponse struct {
	MessageID string   `json:"message_id"`
	Source    Location `json:"source"`
	Job       *Job     `json:"job"`
}
