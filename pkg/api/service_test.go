package api

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/config"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/core"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/mocks/pkg/blob_mock"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/mocks/pkg/database_mock"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/internal/mocks/pkg/queue_mock"
	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

func newTestService(t *testing.T) (*Service, *blob_mock.MockStore, *queue_mock.MockQueue, *queue_mock.MockQueue, *database_mock.MockMetadataStore) {
	ctrl := gomock.NewController(t)
	blobs := blob_mock.NewMockStore(ctrl)
	jobs := queue_mock.NewMockQueue(ctrl)
	dead := queue_mock.NewMockQueue(ctrl)
	meta := database_mock.NewMockMetadataStore(ctrl)
	jobs.EXPECT().Name().Return("jobs").AnyTimes()
	dead.EXPECT().Name().Return("dlq").AnyTimes()

	log, _ := test.NewNullLogger()
	svc := NewWithDeps(config.Default(), core.Deps{
		Blobs:      blobs,
		Jobs:       jobs,
		DeadLetter: dead,
		Meta:       meta,
	}, log)
	return svc, blobs, jobs, dead, meta
}

func TestUpload(t *testing.T) {
	svc, blobs, jobs, _, _ := newTestService(t)

	blobs.EXPECT().Put(gomock.Any(), gomock.Any(), []byte("gif"), "image/gif").Return(nil)
	jobs.EXPECT().Enqueue(gomock.Any(), gomock.Any(), time.Duration(0)).Return("msg-1", nil)

	resp, err := svc.Upload(context.Background(), &structs.Upload{
		Data:        []byte("gif"),
		ContentType: "image/gif",
		OwnerID:     "owner-1",
	})

	assert.Nil(t, err)
	assert.Equal(t, "msg-1", resp.MessageID)
	assert.Equal(t, "staging", resp.Source.Container)
}

func TestRedrive(t *testing.T) {
	cases := []struct {
		Name   string
		Req    *structs.RedriveRequest
		Expect int
	}{
		{Name: "nil request", Req: nil, Expect: 100},
		{Name: "default", Req: &structs.RedriveRequest{}, Expect: 100},
		{Name: "limited", Req: &structs.RedriveRequest{MaxMessages: 2}, Expect: 2},
		{Name: "over limit", Req: &structs.RedriveRequest{MaxMessages: 5000}, Expect: 100},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			svc, _, jobs, dead, _ := newTestService(t)

			dead.EXPECT().ApproximateDepth(gomock.Any()).Return(int64(1000), nil)
			dead.EXPECT().Receive(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, max int, _ time.Duration) ([]*structs.Lease, error) {
					out := []*structs.Lease{}
					for i := 0; i < max; i++ {
						out = append(out, &structs.Lease{ID: "x", Handle: "x:y", Body: []byte("{}")})
					}
					return out, nil
				},
			).AnyTimes()
			jobs.EXPECT().Enqueue(gomock.Any(), gomock.Any(), gomock.Any()).Return("new", nil).Times(c.Expect)
			dead.EXPECT().Delete(gomock.Any(), "x:y").Return(nil).Times(c.Expect)

			summary, err := svc.Redrive(context.Background(), c.Req)

			assert.Nil(t, err)
			assert.Equal(t, c.Expect, summary.Attempted)
			assert.Equal(t, c.Expect, summary.Succeeded)
		})
	}
}

func TestDepths(t *testing.T) {
	svc, _, jobs, dead, _ := newTestService(t)

	jobs.EXPECT().ApproximateDepth(gomock.Any()).Return(int64(7), nil)
	dead.EXPECT().ApproximateDepth(gomock.Any()).Return(int64(2), nil)

	d, err := svc.Depths(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, &structs.QueueDepths{Jobs: 7, DeadLetter: 2}, d)
}

func TestDepthsError(t *testing.T) {
	svc, _, jobs, _, _ := newTestService(t)

	jobs.EXPECT().ApproximateDepth(gomock.Any()).Return(int64(0), fmt.Errorf("redis down"))

	d, err := svc.Depths(context.Background())

	assert.Nil(t, d)
	assert.NotNil(t, err)
}

func TestWorkerRequiresMetadata(t *testing.T) {
	log, _ := test.NewNullLogger()
	svc := NewWithDeps(config.Default(), core.Deps{}, log)

	_, err := svc.Worker()
	assert.True(t, errors.Is(err, ie.ErrNotSupported))

	_, err = svc.Scheduler()
	assert.True(t, errors.Is(err, ie.ErrNotSupported))
}

func TestClose(t *testing.T) {
	svc, _, _, _, meta := newTestService(t)

	meta.EXPECT().Close().Return(nil)

	err := svc.Close()

	assert.Nil(t, err)
}

func TestCloseError(t *testing.T) {
	svc, _, _, _, meta := newTestService(t)

	meta.EXPECT().Close().Return(fmt.Errorf("already closed"))

	err := svc.Close()

	assert.NotNil(t, err)
}
