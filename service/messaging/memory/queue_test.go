package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/vkernel/service/messaging"
)

type tickPayload struct {
	Tick uint64
	Name string
}

func TestQueue(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[tickPayload](config)
	ctx := context.Background()

	payload := tickPayload{Tick: 1, Name: "KERNEL_TICK"}
	require.NoError(t, queue.Publish(ctx, &payload))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, payload, *message.T())
	assert.NotEmpty(t, message.(*Message[tickPayload]).ID())

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
}

func TestQueue_Retries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 5 * time.Millisecond
	queue := NewQueue[tickPayload](config)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, queue.Publish(ctx, &tickPayload{Tick: 7}))
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err, "attempt %v", attempt)
		assert.EqualValues(t, 7, message.T().Tick)
		require.NoError(t, message.Nack(errors.New("handler failed")))
	}
	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_DropWhenFull(t *testing.T) {
	queue := NewQueue[tickPayload](Config{QueueBuffer: 2, DropWhenFull: true})
	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &tickPayload{Tick: 1}))
	require.NoError(t, queue.Publish(ctx, &tickPayload{Tick: 2}))
	err := queue.Publish(ctx, &tickPayload{Tick: 3})
	assert.True(t, errors.Is(err, messaging.ErrQueueFull))
	assert.Equal(t, 2, queue.Size())
}

func TestQueue_Concurrency(t *testing.T) {
	queue := NewQueue[tickPayload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	producers, perProducer := 8, 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	consumed := 0
	for i := 0; i < producers; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				payload := tickPayload{Tick: uint64(j), Name: fmt.Sprintf("p%d", id)}
				if err := queue.Publish(ctx, &payload); err != nil {
					t.Errorf("publish: %v", err)
				}
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				message, err := queue.Consume(ctx)
				if err != nil {
					t.Errorf("consume: %v", err)
					return
				}
				assert.NoError(t, message.Ack())
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, producers*perProducer, consumed)
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_ContextCancellation(t *testing.T) {
	queue := NewQueue[tickPayload](DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, queue.Publish(ctx, &tickPayload{}))

	timeout, cancelTimeout := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(timeout)
	assert.Error(t, err)

	require.NoError(t, queue.Publish(context.Background(), &tickPayload{Tick: 1}))
	message, err := queue.Consume(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, message)
}
