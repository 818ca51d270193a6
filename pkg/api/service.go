package api

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/core"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/blob"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/database"
	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/notify"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/queue"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/transform"
)

// Service wires the pipeline's components to their collaborators.
type Service struct {
	cfg  config.Config
	log  logrus.FieldLogger
	deps core.Deps
	rdb  redis.UniversalClient

	ingress *core.Enqueuer
	sweeper *core.Sweeper
	worker  *core.Worker
}

// New connects to everything described by opts.
//
// The metadata store is optional; without opts.Database the service can upload,
// redrive & report depths but Worker() must not be run.
func New(opts *Options, log logrus.FieldLogger) (*Service, error) {
	opts.SetDefaults()
	cfg := opts.Config
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	opts.Queue.Name = cfg.JobQueue
	opts.Queue.DeadLetter = cfg.DeadLetterQueue
	opts.Queue.MaxReceives = cfg.QueueMaxReceives
	rdb, err := queue.NewRedisClient(opts.Queue)
	if err != nil {
		return nil, err
	}
	dopts := *opts.Queue
	dopts.Name = cfg.DeadLetterQueue
	dopts.DeadLetter = ""
	dopts.MaxReceives = 0

	blobs, err := blob.New(opts.Blob)
	if err != nil {
		rdb.Close()
		return nil, err
	}

	var meta database.MetadataStore
	if opts.Database != nil {
		meta, err = database.New(opts.Database)
		if err != nil {
			rdb.Close()
			return nil, err
		}
	}

	notifier, err := notify.New(opts.Mail, log)
	if err != nil {
		rdb.Close()
		return nil, err
	}

	svc := NewWithDeps(cfg, core.Deps{
		Blobs:      blobs,
		Jobs:       queue.NewRedisQueueFromClient(rdb, opts.Queue),
		DeadLetter: queue.NewRedisQueueFromClient(rdb, &dopts),
		Meta:       meta,
		Notifier:   notifier,
		Transformer: transform.NewImaging(transform.Options{
			MaxWidth:  cfg.ArtifactMaxWidth,
			MaxHeight: cfg.ArtifactMaxHeight,
			Quality:   cfg.ArtifactQuality,
		}),
		Metrics: core.NewMetrics(opts.Registerer),
	}, log)
	svc.rdb = rdb
	return svc, nil
}

// NewWithDeps builds a service around the given collaborators.
func NewWithDeps(cfg config.Config, deps core.Deps, log logrus.FieldLogger) *Service {
	if deps.Metrics == nil {
		deps.Metrics = core.NewMetrics(nil)
	}
	return &Service{
		cfg:     cfg,
		log:     log,
		deps:    deps,
		ingress: core.NewEnqueuer(cfg, deps, log),
		sweeper: core.NewSweeper(cfg, deps, log),
		worker:  core.NewWorker(cfg, deps, log),
	}
}

func (s *Service) Upload(ctx context.Context, up *structs.Upload) (*structs.UploadResponse, error) {
	return s.ingress.Enqueue(ctx, up)
}

func (s *Service) Redrive(ctx context.Context, req *structs.RedriveRequest) (*structs.RedriveSummary, error) {
	max := 0
	if req != nil {
		max = req.MaxMessages
	}
	return s.sweeper.Run(ctx, max)
}

func (s *Service) Depths(ctx context.Context) (*structs.QueueDepths, error) {
	jobs, err := s.deps.Jobs.ApproximateDepth(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %s depth: %w", s.deps.Jobs.Name(), err)
	}
	dead, err := s.deps.DeadLetter.ApproximateDepth(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %s depth: %w", s.deps.DeadLetter.Name(), err)
	}
	s.deps.Metrics.QueueDepth.WithLabelValues(s.deps.Jobs.Name()).Set(float64(jobs))
	s.deps.Metrics.QueueDepth.WithLabelValues(s.deps.DeadLetter.Name()).Set(float64(dead))
	return &structs.QueueDepths{Jobs: jobs, DeadLetter: dead}, nil
}

// Worker processing the job queue. Only valid if the service has a metadata store.
func (s *Service) Worker() (*core.Worker, error) {
	if s.deps.Meta == nil {
		return nil, fmt.Errorf("%w worker requires a metadata store", ie.ErrNotSupported)
	}
	return s.worker, nil
}

// Scheduler returns a scheduler sharing our redis connection. Only available on
// services built with New.
func (s *Service) Scheduler() (*queue.Scheduler, error) {
	if s.rdb == nil {
		return nil, fmt.Errorf("%w scheduler requires a redis connection", ie.ErrNotSupported)
	}
	return queue.NewScheduler(s.rdb, s.log), nil
}

func (s *Service) Close() error {
	var errs *multierror.Error
	if s.deps.Meta != nil {
		errs = multierror.Append(errs, s.deps.Meta.Close())
	}
	if s.rdb != nil {
		errs = multierror.Append(errs, s.rdb.Close())
	}
	return errs.ErrorOrNil()
}
