package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/blob"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/database"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/notify"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/queue"
)

// Options passed to the pipeline Service on creation.
type Options struct {
	// Config holds pipeline tunables (queue names, retry policy, redrive limits ..)
	Config config.Config

	// Queue is how we reach redis. Name & DeadLetter are filled in from Config.
	Queue *queue.Options

	// Blob is where staged uploads & finished artifacts are kept.
	Blob *blob.Options

	// Database records finished artifacts. Only needed by workers.
	Database *database.Options

	// Mail configures notification emails. Only needed by workers.
	Mail *notify.Options

	// Registerer for metrics. Defaults to the prometheus default registry.
	Registerer prometheus.Registerer
}

func (o *Options) SetDefaults() {
	if o.Queue == nil {
		o.Queue = &queue.Options{}
	}
	if o.Blob == nil {
		o.Blob = &blob.Options{}
	}
	if o.Mail == nil {
		o.Mail = &notify.Options{}
	}
	if o.Mail.From == "" {
		o.Mail.From = o.Config.MailFrom
	}
	if o.Registerer == nil {
		o.Registerer = prometheus.DefaultRegisterer
	}
}
