package notify

const (
	defaultPort = 587
)

// Options are options for sending mail.
type Options struct {
	// Host of the SMTP server. If unset, mail is logged rather than sent.
	Host string

	// Port of the SMTP server.
	// Defaults to 587.
	Port int

	Username string
	Password string

	// From is the sender address.
	From string

	// Insecure permits sending without TLS (ie. to a local relay).
	Insecure bool
}

func (o *Options) SetDefaults() {
	if o.Port == 0 {
		o.Port = defaultPort
	}
}
