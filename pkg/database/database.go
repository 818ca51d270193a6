package database

import (
	"fmt"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

// New returns the MetadataStore named by opts.Driver.
func New(opts *Options) (MetadataStore, error) {
	opts.SetDefaults()
	switch opts.Driver {
	case DriverPostgres:
		return NewPostgres(opts)
	case DriverPostgrest:
		return NewPostgrest(opts)
	default:
		return nil, fmt.Errorf("%w database driver %q", errors.ErrNotSupported, opts.Driver)
	}
}
