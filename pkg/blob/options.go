package blob

const (
	DriverSupabase = "supabase"
	DriverMemory   = "memory"

	defaultCacheControl = "3600"
	defaultListPageSize = 100
)

// Options are options for the blob store.
type Options struct {
	// Driver is one of "supabase" or "memory".
	Driver string

	// URL of the supabase project (ie. https://xyz.supabase.co).
	URL string

	// Key is the service key we auth with.
	Key string

	// CacheControl (max-age seconds) set on written objects.
	// Defaults to 3600.
	CacheControl string

	// ListPageSize is how many objects we look at per request when checking existence.
	// Defaults to 100.
	ListPageSize int
}

func (o *Options) SetDefaults() {
	if o.Driver == "" {
		o.Driver = DriverSupabase
	}
	if o.CacheControl == "" {
		o.CacheControl = defaultCacheControl
	}
	if o.ListPageSize <= 0 {
		o.ListPageSize = defaultListPageSize
	}
}
