package event

import (
	"time"

	"github.com/viant/vkernel/internal/clock"
	"github.com/viant/vkernel/internal/idgen"
)

// Event is a typed kernel notification
type Event[T any] struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event of the given type
func NewEvent[T any](eventType string, data T) *Event[T] {
	return &Event[T]{
		ID:        idgen.New(),
		Type:      eventType,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
