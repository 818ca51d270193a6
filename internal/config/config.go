package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// Config holds the pipeline's tunables. It's loaded once at start up & handed to
// components by value, nothing should be writing to it after Load.
type Config struct {
	StagingContainer string `env:"STAGING_CONTAINER" envDefault:"staging"`
	DurableContainer string `env:"DURABLE_CONTAINER" envDefault:"images"`

	JobQueue        string `env:"JOB_QUEUE" envDefault:"image-jobs"`
	DeadLetterQueue string `env:"DEAD_LETTER_QUEUE" envDefault:"image-jobs-dlq"`

	// MaxAttempts is the attempt ceiling; a failure on this attempt (or later) is dead lettered.
	MaxAttempts   int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" envDefault:"300s"`
	RetryBackoff  string        `env:"RETRY_BACKOFF" envDefault:"fixed"`
	RetryMaxDelay time.Duration `env:"RETRY_MAX_DELAY" envDefault:"1h"`

	RedriveMaxPerRun int           `env:"REDRIVE_MAX_PER_RUN" envDefault:"100"`
	RedriveBatchSize int           `env:"REDRIVE_BATCH_SIZE" envDefault:"10"`
	RedriveCooldown  time.Duration `env:"REDRIVE_COOLDOWN" envDefault:"300s"`
	RedriveSchedule  string        `env:"REDRIVE_SCHEDULE" envDefault:"@every 15m"`

	WorkerConcurrency int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	ReceiveBatchSize  int           `env:"RECEIVE_BATCH_SIZE" envDefault:"10"`
	VisibilityTimeout time.Duration `env:"VISIBILITY_TIMEOUT" envDefault:"5m"`
	PollInterval      time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`

	// QueueMaxReceives is the queue's own redelivery limit, after which a message is
	// moved to the dead letter queue without a worker deciding anything. Zero disables it.
	QueueMaxReceives int `env:"QUEUE_MAX_RECEIVES" envDefault:"8"`

	ArtifactMaxWidth  int `env:"ARTIFACT_MAX_WIDTH" envDefault:"1920"`
	ArtifactMaxHeight int `env:"ARTIFACT_MAX_HEIGHT" envDefault:"1080"`
	ArtifactQuality   int `env:"ARTIFACT_QUALITY" envDefault:"85"`

	MailFrom string `env:"MAIL_FROM" envDefault:"no-reply@localhost"`
}

// Load reads config from the environment & validates it.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom reads config from the given map rather than the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Default returns config with every default applied.
func Default() Config {
	cfg, _ := LoadFrom(map[string]string{})
	return cfg
}

// Validate checks config values make sense together.
func (c Config) Validate() error {
	positive := map[string]int{
		"MAX_ATTEMPTS":        c.MaxAttempts,
		"REDRIVE_MAX_PER_RUN": c.RedriveMaxPerRun,
		"REDRIVE_BATCH_SIZE":  c.RedriveBatchSize,
		"WORKER_CONCURRENCY":  c.WorkerConcurrency,
		"RECEIVE_BATCH_SIZE":  c.ReceiveBatchSize,
		"ARTIFACT_MAX_WIDTH":  c.ArtifactMaxWidth,
		"ARTIFACT_MAX_HEIGHT": c.ArtifactMaxHeight,
	}
	for name, v := range positive {
		if v < 1 {
			return fmt.Errorf("%w %s must be positive, got %d", errors.ErrInvalidArg, name, v)
		}
	}
	if c.QueueMaxReceives < 0 {
		return fmt.Errorf("%w QUEUE_MAX_RECEIVES must not be negative", errors.ErrInvalidArg)
	}
	if c.ArtifactQuality < 1 || c.ArtifactQuality > 100 {
		return fmt.Errorf("%w ARTIFACT_QUALITY must be within 1-100", errors.ErrInvalidArg)
	}
	if c.RetryDelay < 0 || c.RedriveCooldown < 0 {
		return fmt.Errorf("%w delays must not be negative", errors.ErrInvalidArg)
	}
	if c.VisibilityTimeout <= 0 {
		return fmt.Errorf("%w VISIBILITY_TIMEOUT must be positive", errors.ErrInvalidArg)
	}
	if c.StagingContainer == "" || c.DurableContainer == "" {
		return fmt.Errorf("%w containers must be named", errors.ErrInvalidArg)
	}
	if c.JobQueue == "" || c.DeadLetterQueue == "" || c.JobQueue == c.DeadLetterQueue {
		return fmt.Errorf("%w job & dead letter queues must be named & distinct", errors.ErrInvalidArg)
	}
	switch c.RetryBackoff {
	case BackoffFixed, BackoffExponential:
	default:
		return fmt.Errorf("%w RETRY_BACKOFF %q", errors.ErrNotSupported, c.RetryBackoff)
	}
	if _, err := c.Schedule(); err != nil {
		return fmt.Errorf("%w REDRIVE_SCHEDULE: %v", errors.ErrInvalidArg, err)
	}
	return nil
}

// Schedule parses RedriveSchedule (standard cron or @every / @hourly descriptors).
func (c Config) Schedule() (cron.Schedule, error) {
	return cron.ParseStandard(c.RedriveSchedule)
}
