package common

const (
	// API_UPLOADS accepts multipart image uploads
	API_UPLOADS = "/api/v1/uploads"

	// API_QUEUES reports queue depths
	API_QUEUES = "/api/v1/queues"

	// API_REDRIVE moves dead lettered jobs back onto the job queue
	API_REDRIVE = "/api/v1/redrive"

	API_HEALTH  = "/healthz"
	API_METRICS = "/metrics"

	// MaxUploadBytes is the largest image we'll accept.
	MaxUploadBytes = 10 << 20

	// Multipart form fields of an upload.
	FieldFile          = "file"
	FieldOwnerID       = "ownerId"
	FieldNotifyAddress = "notifyAddress"
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldTitle         = "title"
)
