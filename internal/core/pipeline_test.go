package core

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/blob"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/notify"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/queue"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/transform"
)

type memoryMeta struct {
	lock      sync.Mutex
	artifacts []*structs.Artifact
}

func (m *memoryMeta) Put(ctx context.Context, a *structs.Artifact) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.artifacts = append(m.artifacts, a)
	return nil
}

func (m *memoryMeta) Close() error { return nil }

type recordingNotifier struct {
	lock     sync.Mutex
	subjects []string
}

func (r *recordingNotifier) Send(ctx context.Context, to, subject, html string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.subjects = append(r.subjects, subject)
	return true
}

// failingTransformer fails the first n calls, then echoes its input.
type failingTransformer struct {
	lock  sync.Mutex
	fails int
}

func (f *failingTransformer) Transform(ctx context.Context, data []byte, p transform.Params) ([]byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.fails > 0 {
		f.fails--
		return nil, fmt.Errorf("transform failed")
	}
	return data, nil
}

func (f *failingTransformer) ContentType() string { return "image/jpeg" }

type pipeline struct {
	cfg     config.Config
	blobs   *blob.Memory
	jobs    *queue.Redis
	dead    *queue.Redis
	meta    *memoryMeta
	mail    *recordingNotifier
	worker  *Worker
	sweeper *Sweeper
	ingress *Enqueuer
}

func newPipeline(t *testing.T, cfg config.Config, fails int) *pipeline {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })

	p := &pipeline{
		cfg:   cfg,
		blobs: blob.NewMemory(),
		jobs: queue.NewRedisQueueFromClient(rdb, &queue.Options{
			Name:        cfg.JobQueue,
			DeadLetter:  cfg.DeadLetterQueue,
			MaxReceives: cfg.QueueMaxReceives,
		}),
		dead: queue.NewRedisQueueFromClient(rdb, &queue.Options{Name: cfg.DeadLetterQueue}),
		meta: &memoryMeta{},
		mail: &recordingNotifier{},
	}
	deps := Deps{
		Blobs:       p.blobs,
		Jobs:        p.jobs,
		DeadLetter:  p.dead,
		Meta:        p.meta,
		Notifier:    p.mail,
		Transformer: &failingTransformer{fails: fails},
	}
	log, _ := test.NewNullLogger()
	p.worker = NewWorker(cfg, deps, log)
	p.sweeper = NewSweeper(cfg, deps, log)
	p.ingress = NewEnqueuer(cfg, deps, log)
	return p
}

func (p *pipeline) drain(t *testing.T, rounds int) {
	for i := 0; i < rounds; i++ {
		_, err := p.worker.RunOnce(context.Background())
		require.Nil(t, err)
	}
}

func (p *pipeline) depths(t *testing.T) (int64, int64) {
	jobs, err := p.jobs.ApproximateDepth(context.Background())
	require.Nil(t, err)
	dead, err := p.dead.ApproximateDepth(context.Background())
	require.Nil(t, err)
	return jobs, dead
}

func immediateRetries() config.Config {
	cfg := config.Default()
	cfg.RetryDelay = 0
	cfg.RedriveCooldown = 0
	return cfg
}

func TestPipelineRetryThenSuccess(t *testing.T) {
	p := newPipeline(t, immediateRetries(), 1)
	ctx := context.Background()

	resp, err := p.ingress.Enqueue(ctx, testUpload())
	require.Nil(t, err)
	assert.Len(t, p.blobs.Keys(p.cfg.StagingContainer), 1)

	p.drain(t, 2)

	jobs, dead := p.depths(t)
	assert.Equal(t, int64(0), jobs)
	assert.Equal(t, int64(0), dead)

	exists, err := p.blobs.Exists(ctx, resp.Source)
	assert.Nil(t, err)
	assert.False(t, exists)
	assert.Len(t, p.blobs.Keys(p.cfg.DurableContainer), 1)
	assert.Len(t, p.meta.artifacts, 1)
	assert.Equal(t, "Engine", p.meta.artifacts[0].Title)

	assert.Equal(t, []string{
		subject(notify.Started),
		subject(notify.FailedRetrying),
		subject(notify.Complete),
	}, p.mail.subjects)
}

func TestPipelineDuplicateDelivery(t *testing.T) {
	cfg := immediateRetries()
	cfg.WorkerConcurrency = 1
	p := newPipeline(t, cfg, 0)
	ctx := context.Background()

	resp, err := p.ingress.Enqueue(ctx, testUpload())
	require.Nil(t, err)

	// the same job delivered a second time
	body, err := resp.Job.Encode()
	require.Nil(t, err)
	_, err = p.jobs.Enqueue(ctx, body, 0)
	require.Nil(t, err)

	p.drain(t, 2)

	assert.Len(t, p.meta.artifacts, 1)
	assert.Len(t, p.blobs.Keys(p.cfg.DurableContainer), 1)
	jobs, _ := p.depths(t)
	assert.Equal(t, int64(0), jobs)
}

func TestPipelineExhaustionAndRedrive(t *testing.T) {
	cfg := immediateRetries()
	p := newPipeline(t, cfg, 100)
	ctx := context.Background()

	resp, err := p.ingress.Enqueue(ctx, testUpload())
	require.Nil(t, err)

	p.drain(t, cfg.MaxAttempts)

	jobs, dead := p.depths(t)
	assert.Equal(t, int64(0), jobs)
	assert.Equal(t, int64(1), dead)
	assert.Len(t, p.meta.artifacts, 0)

	exists, err := p.blobs.Exists(ctx, resp.Source)
	assert.Nil(t, err)
	assert.True(t, exists)

	assert.Equal(t, []string{
		subject(notify.Started),
		subject(notify.FailedRetrying),
		subject(notify.FailedPermanent),
	}, p.mail.subjects)

	summary, err := p.sweeper.Run(ctx, 0)
	assert.Nil(t, err)
	assert.Equal(t, structs.RedriveSummary{Attempted: 1, Succeeded: 1}, *summary)

	jobs, dead = p.depths(t)
	assert.Equal(t, int64(1), jobs)
	assert.Equal(t, int64(0), dead)

	leases, err := p.jobs.Receive(ctx, 10, cfg.VisibilityTimeout)
	require.Nil(t, err)
	require.Len(t, leases, 1)
	job, err := structs.DecodeJob(leases[0].Body)
	require.Nil(t, err)
	assert.Equal(t, cfg.MaxAttempts, job.AttemptCount)
}
