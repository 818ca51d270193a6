package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/utils"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/blob"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/database"
	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/notify"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/queue"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/transform"
)

// Deps are the collaborators components are built from.
type Deps struct {
	Blobs       blob.Store
	Jobs        queue.Queue
	DeadLetter  queue.Queue
	Meta        database.MetadataStore
	Notifier    notify.Notifier
	Transformer transform.Transformer
	Metrics     *Metrics
}

// Worker pulls jobs off the job queue & processes them.
//
// Workers share nothing; any number may run against the same queue. Since delivery is
// at least once, the same job can arrive more than once (even at the same time). The
// staged source blob is what makes that safe: it is deleted only after the artifact is
// recorded, and a job whose source is gone is acknowledged without doing anything.
type Worker struct {
	cfg    config.Config
	log    logrus.FieldLogger
	deps   Deps
	policy *Policy

	now func() time.Time
}

func NewWorker(cfg config.Config, deps Deps, log logrus.FieldLogger) *Worker {
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	return &Worker{
		cfg:    cfg,
		log:    log.WithField("component", "worker"),
		deps:   deps,
		policy: NewPolicy(cfg),
		now:    time.Now,
	}
}

// Run receives & handles batches until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.WithFields(logrus.Fields{
		"queue":       w.deps.Jobs.Name(),
		"concurrency": w.cfg.WorkerConcurrency,
		"batch":       w.cfg.ReceiveBatchSize,
	}).Info("worker started")

	for {
		n, err := w.RunOnce(ctx)
		if ctx.Err() != nil {
			w.log.Info("worker stopped")
			return nil
		}
		if err != nil {
			w.log.WithError(err).Error("failed to receive jobs")
		}
		if n > 0 && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return nil
		case <-time.After(w.cfg.PollInterval):
		}
	}
}

// RunOnce receives a single batch & handles it, returning once every message in it has
// been dealt with. Returns the number of messages received.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	leases, err := w.deps.Jobs.Receive(ctx, w.cfg.ReceiveBatchSize, w.cfg.VisibilityTimeout)
	if err != nil {
		return 0, err
	}

	sem := make(chan struct{}, w.cfg.WorkerConcurrency)
	var wg sync.WaitGroup
	for _, lease := range leases {
		wg.Add(1)
		sem <- struct{}{}
		go func(lease *structs.Lease) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					w.deps.Metrics.job(outcomeError)
					w.log.WithField("lease", lease.ID).Errorf("panic handling message: %v", r)
				}
			}()

			err := w.Handle(ctx, lease)
			if err != nil {
				w.log.WithError(err).WithField("lease", lease.ID).Error("message left unresolved")
			}
		}(lease)
	}
	wg.Wait()

	return len(leases), nil
}

// Handle a single message. Failures of the job itself are dealt with here (retried or
// dead lettered); an error is returned only if the lease could not be resolved, in which
// case the message will reappear once the lease expires.
func (w *Worker) Handle(ctx context.Context, lease *structs.Lease) error {
	start := w.now()
	defer func() { w.deps.Metrics.JobDuration.Observe(w.now().Sub(start).Seconds()) }()

	l := w.log.WithFields(logrus.Fields{"lease": lease.ID, "receives": lease.Receives})

	job, err := structs.DecodeJob(lease.Body)
	if err != nil {
		l.WithError(err).Warn("dropping malformed message")
		w.deps.Metrics.job(outcomeMalformed)
		return w.ack(ctx, l, lease)
	}
	l = l.WithFields(logrus.Fields{
		"source":  job.Source().String(),
		"owner":   job.OwnerID,
		"attempt": job.AttemptCount,
	})

	jctx, cancel := context.WithTimeout(ctx, w.cfg.VisibilityTimeout)
	defer cancel()

	exists, err := w.deps.Blobs.Exists(jctx, job.Source())
	if err != nil {
		return w.fail(ctx, l, lease, job, fmt.Errorf("checking source: %w", err))
	}
	if !exists {
		l.Info("source already gone, nothing to do")
		w.deps.Metrics.job(outcomeStale)
		return w.ack(ctx, l, lease)
	}

	w.notify(ctx, l, job, Received)

	artifact, err := w.safeProcess(jctx, job)
	if err != nil {
		return w.fail(ctx, l, lease, job, err)
	}

	l.WithField("artifact", artifact.Location.String()).Info("job complete")
	w.deps.Metrics.job(outcomeSucceeded)
	w.notify(ctx, l, job, Succeeded)
	return w.ack(ctx, l, lease)
}

// safeProcess runs process, turning a panic into an ordinary (retryable) failure.
func (w *Worker) safeProcess(ctx context.Context, job *structs.Job) (a *structs.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("panic processing job: %v", r)
		}
	}()
	return w.process(ctx, job)
}

// process does the actual work. Ordering matters here: metadata is written only once
// the artifact is stored, and the source is removed only once both are done.
func (w *Worker) process(ctx context.Context, job *structs.Job) (*structs.Artifact, error) {
	data, err := w.deps.Blobs.Get(ctx, job.Source())
	if err != nil {
		return nil, fmt.Errorf("fetching source: %w", err)
	}

	out, err := w.deps.Transformer.Transform(ctx, data, transform.Params{
		FirstName: job.FirstName,
		LastName:  job.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("transforming: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("transforming: %w", ie.ErrEmptyResult)
	}

	contentType := w.deps.Transformer.ContentType()
	dst := structs.Location{
		Container: w.cfg.DurableContainer,
		Key:       utils.NewKey(job.OwnerID, "", contentType),
	}
	err = w.deps.Blobs.Put(ctx, dst, out, contentType)
	if err != nil {
		return nil, fmt.Errorf("storing artifact: %w", err)
	}

	artifact := &structs.Artifact{
		ID:          utils.NewID(),
		OwnerID:     job.OwnerID,
		Location:    dst,
		Title:       job.Title,
		Status:      structs.ACTIVE,
		ProcessedAt: w.now().Unix(),
	}
	err = w.deps.Meta.Put(ctx, artifact)
	if err != nil {
		// the artifact blob is orphaned; a retry writes a new one
		return nil, fmt.Errorf("recording artifact %s: %w", dst, err)
	}

	err = w.deps.Blobs.Delete(ctx, job.Source())
	if err != nil {
		return nil, fmt.Errorf("removing source: %w", err)
	}
	return artifact, nil
}

// fail applies the retry policy to a failed job, then acknowledges the lease.
//
// If the decision can't be enacted (the enqueue fails) the lease is left alone, so the
// message reappears after the visibility timeout & the same attempt runs again.
func (w *Worker) fail(ctx context.Context, l logrus.FieldLogger, lease *structs.Lease, job *structs.Job, cause error) error {
	l = l.WithField("cause", cause.Error())
	d := w.policy.Decide(job, cause)

	switch d.Action {
	case Requeue:
		body, err := d.Job.Encode()
		if err != nil {
			return err
		}
		_, err = w.deps.Jobs.Enqueue(ctx, body, d.Delay)
		if err != nil {
			w.deps.Metrics.job(outcomeError)
			return fmt.Errorf("requeueing job: %w", err)
		}
		l.WithField("delay", d.Delay.String()).Warn("job failed, requeued")
		w.deps.Metrics.job(outcomeRequeued)
	case DeadLetter:
		body, err := d.Job.Encode()
		if err != nil {
			return err
		}
		_, err = w.deps.DeadLetter.Enqueue(ctx, body, 0)
		if err != nil {
			w.deps.Metrics.job(outcomeError)
			return fmt.Errorf("dead lettering job: %w", err)
		}
		l.WithField("queue", w.deps.DeadLetter.Name()).Error("job failed on final attempt, dead lettered")
		w.deps.Metrics.job(outcomeDeadLettered)
	}

	w.notify(ctx, l, job, Failed)
	return w.ack(ctx, l, lease)
}

// ack deletes the lease. A lost lease means someone else now holds the message;
// they'll see the same source state we left behind, so it isn't an error for us.
func (w *Worker) ack(ctx context.Context, l logrus.FieldLogger, lease *structs.Lease) error {
	err := w.deps.Jobs.Delete(ctx, lease.Handle)
	if errors.Is(err, ie.ErrLeaseLost) {
		l.WithError(err).Warn("lease expired before ack")
		return nil
	}
	return err
}

// notify sends whatever email the event warrants. Never fails.
func (w *Worker) notify(ctx context.Context, l logrus.FieldLogger, job *structs.Job, ev Event) {
	kind := Gate(ev, job.AttemptCount, w.policy.MaxAttempts)
	if kind == notify.None || job.NotifyAddress == "" {
		return
	}

	subject, body, err := notify.Render(kind, &notify.Data{
		Name:    job.DisplayName(),
		Title:   job.Title,
		Attempt: job.AttemptCount,
	})
	if err != nil {
		l.WithError(err).Warn("failed to render email")
		return
	}

	sent := w.deps.Notifier.Send(ctx, job.NotifyAddress, subject, body)
	w.deps.Metrics.notification(kind, sent)
	if !sent {
		l.WithField("email", string(kind)).Warn("failed to send email")
	}
}
