package structs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

// Job is the unit of work passing through the pipeline.
//
// A Job is never modified once enqueued; retries are expressed by enqueuing the copy
// returned from Next().
type Job struct {
	SourceContainer string `json:"sourceContainer"`
	SourceKey       string `json:"sourceKey"`
	OwnerID         string `json:"ownerId"`
	NotifyAddress   string `json:"notifyAddress"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Title           string `json:"title"`
	AttemptCount    int    `json:"attemptCount"`
}

// NewJob returns the first attempt of a job for a staged source blob.
func NewJob(src Location, up *Upload) *Job {
	return &Job{
		SourceContainer: src.Container,
		SourceKey:       src.Key,
		OwnerID:         up.OwnerID,
		NotifyAddress:   up.NotifyAddress,
		FirstName:       up.FirstName,
		LastName:        up.LastName,
		Title:           up.Title,
		AttemptCount:    1,
	}
}

// Source is where the staged blob for this job lives.
func (j *Job) Source() Location {
	return Location{Container: j.SourceContainer, Key: j.SourceKey}
}

// DisplayName is the owner's name as it should appear on artifacts & in emails.
func (j *Job) DisplayName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", j.FirstName, j.LastName))
}

// Next returns a copy of the job for the following attempt.
func (j *Job) Next() *Job {
	next := *j
	next.AttemptCount = j.AttemptCount + 1
	return &next
}

// Encode returns the wire form of the job.
func (j *Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}

// DecodeJob parses a queue message body. Anything that can't be parsed, or that
// can't possibly be processed, is reported as ErrMalformedJob.
func DecodeJob(body []byte) (*Job, error) {
	j := &Job{}
	err := json.Unmarshal(body, j)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedJob, err)
	}
	if j.SourceContainer == "" || j.SourceKey == "" {
		return nil, fmt.Errorf("%w: source location required", errors.ErrMalformedJob)
	}
	if j.AttemptCount < 1 {
		return nil, fmt.Errorf("%w: attempt count %d", errors.ErrMalformedJob, j.AttemptCount)
	}
	return j, nil
}
