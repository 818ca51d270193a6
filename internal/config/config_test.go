package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})

	assert.Nil(t, err)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 300*time.Second, cfg.RetryDelay)
	assert.Equal(t, 100, cfg.RedriveMaxPerRun)
	assert.Equal(t, 10, cfg.RedriveBatchSize)
	assert.Equal(t, 300*time.Second, cfg.RedriveCooldown)
	assert.Equal(t, "staging", cfg.StagingContainer)
	assert.Equal(t, "images", cfg.DurableContainer)
	assert.Equal(t, "image-jobs", cfg.JobQueue)
	assert.Equal(t, "image-jobs-dlq", cfg.DeadLetterQueue)
	assert.Equal(t, BackoffFixed, cfg.RetryBackoff)
	assert.Equal(t, cfg, Default())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"MAX_ATTEMPTS":        "3",
		"RETRY_DELAY":         "1m",
		"REDRIVE_MAX_PER_RUN": "25",
		"REDRIVE_SCHEDULE":    "*/5 * * * *",
		"RETRY_BACKOFF":       "exponential",
	})

	assert.Nil(t, err)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 25, cfg.RedriveMaxPerRun)
	assert.Equal(t, BackoffExponential, cfg.RetryBackoff)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		Name   string
		Vars   map[string]string
		Expect error
	}{
		{"ZeroAttempts", map[string]string{"MAX_ATTEMPTS": "0"}, ie.ErrInvalidArg},
		{"ZeroBatch", map[string]string{"REDRIVE_BATCH_SIZE": "0"}, ie.ErrInvalidArg},
		{"NegativeReceives", map[string]string{"QUEUE_MAX_RECEIVES": "-1"}, ie.ErrInvalidArg},
		{"SameQueues", map[string]string{"JOB_QUEUE": "q", "DEAD_LETTER_QUEUE": "q"}, ie.ErrInvalidArg},
		{"BadQuality", map[string]string{"ARTIFACT_QUALITY": "101"}, ie.ErrInvalidArg},
		{"BadBackoff", map[string]string{"RETRY_BACKOFF": "fibonacci"}, ie.ErrNotSupported},
		{"BadSchedule", map[string]string{"REDRIVE_SCHEDULE": "whenever"}, ie.ErrInvalidArg},
		{"ZeroVisibility", map[string]string{"VISIBILITY_TIMEOUT": "0s"}, ie.ErrInvalidArg},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := LoadFrom(c.Vars)
			assert.True(t, errors.Is(err, c.Expect), "got %v", err)
		})
	}
}
