package core

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

// Sweeper moves messages off the dead letter queue back onto the job queue.
type Sweeper struct {
	cfg  config.Config
	log  logrus.FieldLogger
	deps Deps
}

func NewSweeper(cfg config.Config, deps Deps, log logrus.FieldLogger) *Sweeper {
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	return &Sweeper{cfg: cfg, log: log.WithField("component", "sweeper"), deps: deps}
}

// Run moves up to max messages (capped by REDRIVE_MAX_PER_RUN) off the dead letter queue.
// Each message is enqueued with the cooldown delay & then deleted from the dead letter queue.
//
// Depth is only approximate, so we stop as soon as a receive comes back empty. Failing to
// move a message is counted & does not stop the run; an error is returned only when we
// can't talk to the dead letter queue at all.
func (s *Sweeper) Run(ctx context.Context, max int) (*structs.RedriveSummary, error) {
	req := &structs.RedriveRequest{MaxMessages: max}
	req.Sanitize(s.cfg.RedriveMaxPerRun)

	summary := &structs.RedriveSummary{}

	depth, err := s.deps.DeadLetter.ApproximateDepth(ctx)
	if err != nil {
		return summary, fmt.Errorf("reading dead letter depth: %w", err)
	}
	s.deps.Metrics.depth(s.deps.DeadLetter.Name(), depth)

	toProcess := int(depth)
	if toProcess > req.MaxMessages {
		toProcess = req.MaxMessages
	}

	l := s.log.WithFields(logrus.Fields{"depth": depth, "to_process": toProcess})
	if toProcess == 0 {
		l.Debug("nothing to redrive")
		return summary, nil
	}

	var errs *multierror.Error
	for summary.Attempted < toProcess {
		batch := s.cfg.RedriveBatchSize
		if remaining := toProcess - summary.Attempted; remaining < batch {
			batch = remaining
		}

		leases, err := s.deps.DeadLetter.Receive(ctx, batch, s.cfg.VisibilityTimeout)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("receiving: %w", err))
			break
		}
		if len(leases) == 0 {
			break
		}

		for _, lease := range leases {
			summary.Attempted++
			err := s.move(ctx, lease)
			s.deps.Metrics.redriven(err == nil)
			if err != nil {
				summary.Failed++
				errs = multierror.Append(errs, err)
				continue
			}
			summary.Succeeded++
		}
	}

	l = l.WithFields(logrus.Fields{
		"attempted": summary.Attempted,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	})
	if err := errs.ErrorOrNil(); err != nil {
		l.WithError(err).Warn("redrive finished with errors")
	} else {
		l.Info("redrive finished")
	}

	if summary.Attempted == 0 && errs.ErrorOrNil() != nil {
		return summary, errs.ErrorOrNil()
	}
	return summary, nil
}

// move re-enqueues a message as is, then removes it from the dead letter queue. If the
// delete fails the message stays dead lettered as well, & will be redriven again later.
func (s *Sweeper) move(ctx context.Context, lease *structs.Lease) error {
	_, err := s.deps.Jobs.Enqueue(ctx, lease.Body, s.cfg.RedriveCooldown)
	if err != nil {
		return fmt.Errorf("enqueueing %s: %w", lease.ID, err)
	}
	err = s.deps.DeadLetter.Delete(ctx, lease.Handle)
	if err != nil {
		return fmt.Errorf("deleting %s from dead letter queue: %w", lease.ID, err)
	}
	return nil
}
