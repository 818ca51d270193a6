package database

import (
	"context"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// MetadataStore records finished artifacts.
type MetadataStore interface {
	// Put records a new artifact. Records are never updated by the pipeline.
	Put(ctx context.Context, a *structs.Artifact) error

	// Close shuts down any connections.
	Close() error
}
