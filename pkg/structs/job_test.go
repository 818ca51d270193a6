package structs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

func TestNewJob(t *testing.T) {
	up := &Upload{OwnerID: "o1", NotifyAddress: "a@b.c", FirstName: "Ada", LastName: "Lovelace", Title: "t"}

	j := NewJob(Location{Container: "staging", Key: "o1/x.jpg"}, up)

	assert.Equal(t, &Job{
		SourceContainer: "staging",
		SourceKey:       "o1/x.jpg",
		OwnerID:         "o1",
		NotifyAddress:   "a@b.c",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Title:           "t",
		AttemptCount:    1,
	}, j)
	assert.Equal(t, "Ada Lovelace", j.DisplayName())
	assert.Equal(t, "staging/o1/x.jpg", j.Source().String())
}

func TestNext(t *testing.T) {
	j := &Job{SourceContainer: "c", SourceKey: "k", AttemptCount: 1}

	prev := j
	for i := 2; i < 10; i++ {
		n := prev.Next()
		assert.Equal(t, i, n.AttemptCount)
		assert.Equal(t, i-1, prev.AttemptCount) // original untouched
		assert.NotSame(t, prev, n)
		prev = n
	}
}

func TestEncodeWireFormat(t *testing.T) {
	j := &Job{
		SourceContainer: "c",
		SourceKey:       "k",
		OwnerID:         "o",
		NotifyAddress:   "n",
		FirstName:       "f",
		LastName:        "l",
		Title:           "t",
		AttemptCount:    3,
	}

	data, err := j.Encode()

	assert.Nil(t, err)
	assert.JSONEq(t, `{
		"sourceContainer": "c", "sourceKey": "k", "ownerId": "o",
		"notifyAddress": "n", "firstName": "f", "lastName": "l",
		"title": "t", "attemptCount": 3
	}`, string(data))
}

func TestDecodeJob(t *testing.T) {
	cases := []struct {
		Name      string
		Body      string
		Expect    *Job
		Malformed bool
	}{
		{
			Name:   "Valid",
			Body:   `{"sourceContainer":"c","sourceKey":"k","ownerId":"o","attemptCount":2}`,
			Expect: &Job{SourceContainer: "c", SourceKey: "k", OwnerID: "o", AttemptCount: 2},
		},
		{
			Name:      "NotJSON",
			Body:      `c,k,o,1`,
			Malformed: true,
		},
		{
			Name:      "MissingKey",
			Body:      `{"sourceContainer":"c","attemptCount":1}`,
			Malformed: true,
		},
		{
			Name:      "ZeroAttempt",
			Body:      `{"sourceContainer":"c","sourceKey":"k","attemptCount":0}`,
			Malformed: true,
		},
		{
			Name:      "WrongType",
			Body:      `{"sourceContainer":"c","sourceKey":"k","attemptCount":"1"}`,
			Malformed: true,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			j, err := DecodeJob([]byte(c.Body))
			if c.Malformed {
				assert.True(t, errors.Is(err, ie.ErrMalformedJob))
				assert.Nil(t, j)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, c.Expect, j)
			}
		})
	}
}
