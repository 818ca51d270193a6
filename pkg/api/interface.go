package api

import (
	"context"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// API represents the functions pipeline servers should expose.
type API interface {
	// Upload stages an image & queues a job to process it.
	Upload(ctx context.Context, up *structs.Upload) (*structs.UploadResponse, error)

	// Redrive moves dead lettered jobs back onto the job queue.
	Redrive(ctx context.Context, req *structs.RedriveRequest) (*structs.RedriveSummary, error)

	// Depths of the job & dead letter queues.
	Depths(ctx context.Context) (*structs.QueueDepths, error)
}

type Server interface {
	ServeForever(api API) error
	Close() error
}
