package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier. Kernel boot sessions and
// queue messages use it; tests may stub it.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }
