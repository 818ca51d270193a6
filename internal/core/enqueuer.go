package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/utils"
	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

const (
	maxTitleLength = 500
	maxNameLength  = 200
	maxOwnerLength = 255
)

// Enqueuer stages uploads & queues the first attempt of their job.
type Enqueuer struct {
	cfg  config.Config
	log  logrus.FieldLogger
	deps Deps
}

func NewEnqueuer(cfg config.Config, deps Deps, log logrus.FieldLogger) *Enqueuer {
	return &Enqueuer{cfg: cfg, log: log.WithField("component", "enqueuer"), deps: deps}
}

// Enqueue writes the upload to staging, then queues a job for it.
//
// If the enqueue fails the staged blob is left where it is; there's no way to undo the
// write atomically, so we log it for someone to tidy up.
func (e *Enqueuer) Enqueue(ctx context.Context, up *structs.Upload) (*structs.UploadResponse, error) {
	err := validUpload(up)
	if err != nil {
		return nil, err
	}

	src := structs.Location{
		Container: e.cfg.StagingContainer,
		Key:       utils.NewKey(up.OwnerID, up.Filename, up.ContentType),
	}
	l := e.log.WithFields(logrus.Fields{"owner": up.OwnerID, "source": src.String()})

	err = e.deps.Blobs.Put(ctx, src, up.Data, up.ContentType)
	if err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}

	job := structs.NewJob(src, up)
	body, err := job.Encode()
	if err != nil {
		return nil, err
	}

	id, err := e.deps.Jobs.Enqueue(ctx, body, 0)
	if err != nil {
		l.WithError(err).Error("failed to enqueue job, staged upload is orphaned")
		return nil, fmt.Errorf("enqueueing job: %w", err)
	}

	l.WithField("message", id).Info("upload queued")
	return &structs.UploadResponse{MessageID: id, Source: src, Job: job}, nil
}

func validUpload(up *structs.Upload) error {
	if up == nil || len(up.Data) == 0 {
		return fmt.Errorf("%w no image data", ie.ErrInvalidArg)
	}
	if !strings.HasPrefix(strings.ToLower(up.ContentType), "image/") {
		return fmt.Errorf("%w content type %q is not an image", ie.ErrInvalidArg, up.ContentType)
	}
	if strings.TrimSpace(up.OwnerID) == "" {
		return fmt.Errorf("%w owner id is required", ie.ErrInvalidArg)
	}
	if len(up.OwnerID) > maxOwnerLength {
		return fmt.Errorf("%w owner id %d chars, max %d", ie.ErrMaxExceeded, len(up.OwnerID), maxOwnerLength)
	}
	if len(up.Title) > maxTitleLength {
		return fmt.Errorf("%w title %d chars, max %d", ie.ErrMaxExceeded, len(up.Title), maxTitleLength)
	}
	if len(up.FirstName) > maxNameLength || len(up.LastName) > maxNameLength {
		return fmt.Errorf("%w name, max %d chars", ie.ErrMaxExceeded, maxNameLength)
	}
	return nil
}
