package fs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newQueue(t *testing.T, keep bool) *Queue[payload] {
	cfg := DefaultConfig(t.TempDir())
	cfg.MaxRetries = 1
	cfg.PollInterval = 5 * time.Millisecond
	cfg.KeepCompleted = keep
	q, err := NewQueue[payload](context.Background(), afs.New(), cfg)
	require.NoError(t, err)
	return q
}

func size(t *testing.T, q *Queue[payload], state State) int {
	ret, err := q.Size(context.Background(), state)
	require.NoError(t, err)
	return ret
}

func TestQueue_PublishConsumeInOrder(t *testing.T) {
	q := newQueue(t, true)
	ctx := context.Background()
	for i, name := range []string{"boot", "tick", "shutdown"} {
		require.NoError(t, q.Publish(ctx, &payload{Name: name, Count: i}))
	}
	assert.Equal(t, 3, size(t, q, StatePending))

	var got []string
	for i := 0; i < 3; i++ {
		msg, err := q.Consume(ctx)
		require.NoError(t, err)
		require.NotNil(t, msg)
		got = append(got, msg.T().Name)
		assert.Equal(t, 1, size(t, q, StateProcessing))
		require.NoError(t, msg.Ack())
		assert.Error(t, msg.Ack(), "double ack")
	}
	assert.Equal(t, []string{"boot", "tick", "shutdown"}, got)
	assert.Equal(t, 3, size(t, q, StateCompleted))
	assert.Equal(t, 0, size(t, q, StateProcessing))

	msg, err := q.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestQueue_NackRetriesThenDeadLetters(t *testing.T) {
	q := newQueue(t, false)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, &payload{Name: "flaky"}))

	var testCases = []struct {
		description   string
		expectPending int
		expectDead    int
	}{
		{description: "failure within retry budget is requeued", expectPending: 1},
		{description: "exhausted retries dead letter", expectDead: 1},
	}
	for _, testCase := range testCases {
		msg, err := q.Consume(ctx)
		require.NoError(t, err, testCase.description)
		require.NotNil(t, msg, testCase.description)
		require.NoError(t, msg.Nack(errors.New("handler failed")), testCase.description)
		assert.Equal(t, testCase.expectPending, size(t, q, StatePending), testCase.description)
		assert.Equal(t, testCase.expectDead, size(t, q, StateDead), testCase.description)
	}
	assert.Equal(t, 0, size(t, q, StateProcessing))
}

func TestQueue_ConsumeHonoursContext(t *testing.T) {
	q := newQueue(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msg, err := q.Consume(ctx)
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewQueue[payload](context.Background(), afs.New(), Config{})
	assert.Error(t, err)
}
