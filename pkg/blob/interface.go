package blob

import (
	"context"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// Store is object storage split into containers (buckets).
type Store interface {
	// Exists reports whether there is an object at loc.
	Exists(ctx context.Context, loc structs.Location) (bool, error)

	// Get the full object at loc. Returns ErrNotFound if there isn't one.
	Get(ctx context.Context, loc structs.Location) ([]byte, error)

	// Put writes data to loc. It returns once the write is confirmed.
	Put(ctx context.Context, loc structs.Location, data []byte, contentType string) error

	// Delete the object at loc. Deleting something that isn't there is not an error.
	Delete(ctx context.Context, loc structs.Location) error
}
