package process

import (
	"encoding/json"
	"fmt"
	"strings"
)

// State represents the lifecycle state of a process
type State int

const (
	StateReady State = iota
	StateRunning
	StateBlocked
	StateSleeping
	// StateZombie is terminal; no transition leaves it.
	StateZombie
)

var stateNames = [...]string{
	StateReady:    "READY",
	StateRunning:  "RUNNING",
	StateBlocked:  "BLOCKED",
	StateSleeping: "SLEEPING",
	StateZombie:   "ZOMBIE",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// IsTerminal returns true for the zombie state
func (s State) IsTerminal() bool {
	return s == StateZombie
}

// ParseState converts a state name (case-insensitive) into a State
func ParseState(name string) (State, error) {
	for i, candidate := range stateNames {
		if strings.EqualFold(candidate, name) {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown process state: %q", name)
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
