package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"alertsmis/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliverer struct {
	got []*types.Notification
	err error
}

func (r *recordingDeliverer) Notify(_ context.Context, n *types.Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestNewConsumerDefaults(t *testing.T) {
	c := NewConsumer("amqp://localhost", "", 0, &recordingDeliverer{}, quietLogger())
	assert.Equal(t, DefaultQueue, c.queue)
	assert.Equal(t, 10, c.prefetch)

	p := NewPublisher("amqp://localhost", "", quietLogger())
	assert.Equal(t, DefaultQueue, p.queue)
}

func TestConsumerHandle(t *testing.T) {
	d := &recordingDeliverer{}
	c := NewConsumer("amqp://localhost", "", 1, d, quietLogger())

	body, err := json.Marshal(&types.Notification{ID: "n1", AlertID: 42, To: "ems@example.org", Subject: "s", Body: "b"})
	require.NoError(t, err)

	require.NoError(t, c.Handle(context.Background(), body))
	require.Len(t, d.got, 1)
	assert.Equal(t, int64(42), d.got[0].AlertID)
	assert.Equal(t, "ems@example.org", d.got[0].To)
}

func TestConsumerHandleRejects(t *testing.T) {
	t.Run("malformed payload", func(t *testing.T) {
		d := &recordingDeliverer{}
		c := NewConsumer("amqp://localhost", "", 1, d, quietLogger())

		require.Error(t, c.Handle(context.Background(), []byte("{not json")))
		assert.Empty(t, d.got)
	})

	t.Run("no recipient", func(t *testing.T) {
		d := &recordingDeliverer{}
		c := NewConsumer("amqp://localhost", "", 1, d, quietLogger())

		require.Error(t, c.Handle(context.Background(), []byte(`{"id":"n1","alert_id":1}`)))
		assert.Empty(t, d.got)
	})

	t.Run("delivery failure", func(t *testing.T) {
		sendErr := errors.New("smtp: 554 rejected")
		c := NewConsumer("amqp://localhost", "", 1, &recordingDeliverer{err: sendErr}, quietLogger())

		err := c.Handle(context.Background(), []byte(`{"id":"n1","alert_id":1,"to":"a@example.org"}`))
		require.ErrorIs(t, err, sendErr)
	})
}

func TestConsumerRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsumer("amqp://127.0.0.1:1", "", 1, &recordingDeliverer{}, quietLogger())
	require.NoError(t, c.Run(ctx))
}
