package blob

import (
	"fmt"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

// New returns the Store named by opts.Driver.
func New(opts *Options) (Store, error) {
	opts.SetDefaults()
	switch opts.Driver {
	case DriverSupabase:
		return NewSupabase(opts)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w blob driver %q", errors.ErrNotSupported, opts.Driver)
	}
}
