package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	ie "github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
)

func TestRender(t *testing.T) {
	cases := []struct {
		Name     string
		Kind     Kind
		Data     *Data
		Subject  string
		Contains []string
	}{
		{
			Name:     "Started",
			Kind:     Started,
			Data:     &Data{Name: "Ada Lovelace", Title: "Engine"},
			Subject:  "Your image is being processed",
			Contains: []string{"Hi Ada Lovelace", "<b>Engine</b>"},
		},
		{
			Name:     "CompleteNoName",
			Kind:     Complete,
			Data:     &Data{},
			Subject:  "Your image is ready",
			Contains: []string{"Hi there"},
		},
		{
			Name:     "Retrying",
			Kind:     FailedRetrying,
			Data:     &Data{Name: "A"},
			Subject:  "We hit a problem processing your image",
			Contains: []string{"retry automatically"},
		},
		{
			Name:     "Permanent",
			Kind:     FailedPermanent,
			Data:     &Data{Name: "A", Attempt: 5},
			Subject:  "We couldn't process your image",
			Contains: []string{"after 5 attempts"},
		},
		{
			Name:     "EscapesInput",
			Kind:     Complete,
			Data:     &Data{Name: "<script>", Title: "a&b"},
			Subject:  "Your image is ready",
			Contains: []string{"&lt;script&gt;", "a&amp;b"},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			subject, body, err := Render(c.Kind, c.Data)

			assert.Nil(t, err)
			assert.Equal(t, c.Subject, subject)
			for _, s := range c.Contains {
				assert.Contains(t, body, s)
			}
		})
	}
}

func TestRenderUnknown(t *testing.T) {
	_, _, err := Render(None, &Data{})

	assert.True(t, errors.Is(err, ie.ErrNotSupported))
}

func TestLogNotifier(t *testing.T) {
	log, hook := test.NewNullLogger()
	n := NewLog(log)

	assert.False(t, n.Send(context.Background(), "", "s", "b"))
	assert.Len(t, hook.AllEntries(), 0)

	assert.True(t, n.Send(context.Background(), "a@b.c", "s", "b"))
	assert.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "a@b.c", hook.LastEntry().Data["to"])
}

func TestNewWithoutHost(t *testing.T) {
	log, _ := test.NewNullLogger()

	n, err := New(&Options{}, log)

	assert.Nil(t, err)
	assert.IsType(t, &Log{}, n)
}

func TestSMTPMessage(t *testing.T) {
	log, _ := test.NewNullLogger()
	s, err := NewSMTP(&Options{Host: "localhost", From: "noreply@example.com"}, log)
	assert.Nil(t, err)

	msg, err := s.message("a@example.com", "subject", "<p>hi</p>")
	assert.Nil(t, err)
	assert.Len(t, msg.GetTo(), 1)
	assert.Equal(t, "a@example.com", msg.GetTo()[0].Address)

	_, err = s.message("not an address", "subject", "<p>hi</p>")
	assert.NotNil(t, err)

	assert.False(t, s.Send(context.Background(), "", "s", "b"))
}
