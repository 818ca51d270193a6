package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	asynqQueue       = "pipeline:periodic"
	asynqUniqueTTL   = 10 * time.Minute
	asynqConcurrency = 1
)

// Scheduler runs periodic tasks (ie. the redrive sweep) via asynq.
//
// Any number of processes may run a Scheduler against the same redis; tasks are enqueued
// as unique so at most one copy of a given task is pending at any time.
type Scheduler struct {
	log logrus.FieldLogger

	lock sync.Mutex
	sch  *asynq.Scheduler
	srv  *asynq.Server
	mux  *asynq.ServeMux
}

// NewScheduler returns a scheduler sharing the given redis client.
func NewScheduler(rdb redis.UniversalClient, log logrus.FieldLogger) *Scheduler {
	s := &Scheduler{log: log, mux: asynq.NewServeMux()}
	s.sch = asynq.NewSchedulerFromRedisClient(rdb, &asynq.SchedulerOpts{
		Logger: log,
		EnqueueErrorHandler: func(task *asynq.Task, opts []asynq.Option, err error) {
			log.WithError(err).WithField("task", task.Type()).Debug("periodic task not enqueued")
		},
	})
	s.srv = asynq.NewServerFromRedisClient(rdb, asynq.Config{
		Concurrency: asynqConcurrency,
		Queues:      map[string]int{asynqQueue: 1},
		Logger:      log,
	})
	return s
}

// Register a handler to be called on the given cron schedule.
func (s *Scheduler) Register(cronspec, task string, handler func(ctx context.Context) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, err := s.sch.Register(
		cronspec,
		asynq.NewTask(task, nil),
		asynq.Queue(asynqQueue),
		asynq.MaxRetry(0),
		asynq.Unique(asynqUniqueTTL),
	)
	if err != nil {
		return err
	}
	s.mux.HandleFunc(task, periodicHandler(handler))
	return nil
}

// Run the scheduler & task server until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	err := s.sch.Start()
	if err != nil {
		return err
	}
	defer s.sch.Shutdown()

	err = s.srv.Start(s.mux)
	if err != nil {
		return err
	}
	defer s.srv.Shutdown()

	<-ctx.Done()
	return nil
}

// periodicHandler adapts a handler to asynq. Periodic tasks are never retried, the
// next tick is the retry.
func periodicHandler(handler func(ctx context.Context) error) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		err := handler(ctx)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", asynq.SkipRetry, t.Type(), err)
		}
		return nil
	}
}
