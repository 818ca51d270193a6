package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestPeriodicHandler(t *testing.T) {
	cases := []struct {
		Name      string
		Given     error
		SkipRetry bool
	}{
		{"Success", nil, false},
		{"Failure", fmt.Errorf("dlq unreachable"), true},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			called := 0
			hnd := periodicHandler(func(ctx context.Context) error {
				called++
				return c.Given
			})

			err := hnd(context.Background(), asynq.NewTask("pipeline:redrive", nil))

			assert.Equal(t, 1, called)
			if c.SkipRetry {
				assert.True(t, errors.Is(err, asynq.SkipRetry))
				assert.Contains(t, err.Error(), "dlq unreachable")
			} else {
				assert.Nil(t, err)
			}
		})
	}
}
