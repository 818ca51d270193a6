package transform

import (
	"context"
)

// Params passed to a transform alongside the image.
type Params struct {
	FirstName string
	LastName  string
}

// Transformer turns a staged upload into the finished artifact.
type Transformer interface {
	// Transform the given image. An error, or an empty result, means the transform failed.
	Transform(ctx context.Context, data []byte, p Params) ([]byte, error)

	// ContentType of the images Transform produces.
	ContentType() string
}
