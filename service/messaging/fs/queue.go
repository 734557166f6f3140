// Package fs provides a durable messaging.Queue persisting every message as a
// JSON document under an afs base URL.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/vkernel/internal/clock"
	"github.com/viant/vkernel/internal/idgen"
	"github.com/viant/vkernel/service/messaging"
)

// State is the lifecycle directory a message lives in
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateDead       State = "dlq"
)

// Config controls the queue layout and retry policy
type Config struct {
	BasePath   string
	MaxRetries int
	// PollInterval is how long Consume waits when nothing is pending
	PollInterval time.Duration
	// KeepCompleted retains acknowledged messages in the completed directory
	KeepCompleted bool
}

// DefaultConfig returns the default queue configuration rooted at basePath
func DefaultConfig(basePath string) Config {
	return Config{BasePath: basePath, MaxRetries: 3, PollInterval: 50 * time.Millisecond}
}

// Message is a persisted queue message
type Message[T any] struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	Data      T         `json:"data"`
	Error     string    `json:"error,omitempty"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"createdAt"`

	queue     *Queue[T]
	mu        sync.Mutex
	processed bool
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack completes the message
func (m *Message[T]) Ack() error {
	if err := m.settle(); err != nil {
		return err
	}
	return m.queue.complete(context.Background(), m)
}

// Nack returns the message to pending, or to the dead letter directory once
// retries are exhausted
func (m *Message[T]) Nack(err error) error {
	if settleErr := m.settle(); settleErr != nil {
		return settleErr
	}
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	return m.queue.fail(context.Background(), m)
}

func (m *Message[T]) settle() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.ID)
	}
	m.processed = true
	return nil
}

func (m *Message[T]) filename() string {
	return fmt.Sprintf("%020d-%s.json", m.Seq, m.ID)
}

// Queue is a filesystem backed queue
type Queue[T any] struct {
	fs     afs.Service
	config Config
	mu     sync.Mutex
	seq    int64
}

// NewQueue creates a queue, creating its state directories when missing
func NewQueue[T any](ctx context.Context, fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig("").PollInterval
	}
	config.BasePath = url.Normalize(config.BasePath, file.Scheme)
	q := &Queue[T]{fs: fs, config: config}
	for _, state := range []State{StatePending, StateProcessing, StateCompleted, StateDead} {
		dir := q.dir(state)
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return q, nil
}

func (q *Queue[T]) dir(state State) string {
	return url.Join(q.config.BasePath, string(state))
}

// Publish persists t as a pending message
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := clock.Now()
	q.mu.Lock()
	seq := now.UnixNano()
	if seq <= q.seq {
		seq = q.seq + 1
	}
	q.seq = seq
	q.mu.Unlock()
	msg := &Message[T]{ID: idgen.New(), Seq: seq, Data: *t, CreatedAt: now}
	return q.write(ctx, StatePending, msg)
}

// Consume claims the oldest pending message. When nothing is pending it waits
// one poll interval and returns nil.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	msg, err := q.claim(ctx)
	if err != nil || msg != nil {
		return msg, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(q.config.PollInterval):
		return nil, nil
	}
}

func (q *Queue[T]) claim(ctx context.Context) (*Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	names, err := q.list(ctx, StatePending)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	name := names[0]
	source := url.Join(q.dir(StatePending), name)
	data, err := q.fs.DownloadWithURL(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", source, err)
	}
	msg := &Message[T]{}
	if err = json.Unmarshal(data, msg); err != nil {
		_ = q.fs.Move(ctx, source, url.Join(q.dir(StateDead), "invalid-"+name))
		return nil, fmt.Errorf("failed to decode message %s: %w", source, err)
	}
	if err = q.fs.Move(ctx, source, url.Join(q.dir(StateProcessing), name)); err != nil {
		return nil, fmt.Errorf("failed to claim message %s: %w", source, err)
	}
	msg.queue = q
	return msg, nil
}

// Size returns the number of messages in state
func (q *Queue[T]) Size(ctx context.Context, state State) (int, error) {
	names, err := q.list(ctx, state)
	return len(names), err
}

func (q *Queue[T]) list(ctx context.Context, state State) ([]string, error) {
	objects, err := q.fs.List(ctx, q.dir(state))
	if err != nil {
		return nil, fmt.Errorf("failed to list %v messages: %w", state, err)
	}
	var ret []string
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			ret = append(ret, object.Name())
		}
	}
	sort.Strings(ret)
	return ret, nil
}

func (q *Queue[T]) complete(ctx context.Context, msg *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	processing := url.Join(q.dir(StateProcessing), msg.filename())
	if q.config.KeepCompleted {
		return q.fs.Move(ctx, processing, url.Join(q.dir(StateCompleted), msg.filename()))
	}
	return q.fs.Delete(ctx, processing)
}

func (q *Queue[T]) fail(ctx context.Context, msg *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	target := StatePending
	if msg.Retries > q.config.MaxRetries {
		target = StateDead
	}
	if err := q.write(ctx, target, msg); err != nil {
		return err
	}
	return q.fs.Delete(ctx, url.Join(q.dir(StateProcessing), msg.filename()))
}

func (q *Queue[T]) write(ctx context.Context, state State, msg *Message[T]) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	location := url.Join(q.dir(state), msg.filename())
	if err = q.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write message %s: %w", path.Base(location), err)
	}
	return nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
