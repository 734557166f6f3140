package process

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Run(t *testing.T) {
	var testCases = []struct {
		description string
		work        Work
		initial     State
		expectState State
		expectCPU   int
		expectErr   bool
	}{
		{description: "no work returns to ready", initial: StateReady, expectState: StateReady, expectCPU: 100},
		{
			description: "work blocks process",
			initial:     StateReady,
			work: func(ctx context.Context, p *Process, quantum int) error {
				p.Block("disk")
				return nil
			},
			expectState: StateBlocked,
			expectCPU:   100,
		},
		{
			description: "work sleeps process",
			initial:     StateReady,
			work: func(ctx context.Context, p *Process, quantum int) error {
				p.Sleep(time.Second)
				return nil
			},
			expectState: StateSleeping,
			expectCPU:   100,
		},
		{
			description: "failing work forces zombie",
			initial:     StateReady,
			work: func(ctx context.Context, p *Process, quantum int) error {
				return errors.New("segfault")
			},
			expectState: StateZombie,
			expectCPU:   100,
			expectErr:   true,
		},
		{
			description: "panicking work forces zombie",
			initial:     StateReady,
			work: func(ctx context.Context, p *Process, quantum int) error {
				panic("boom")
			},
			expectState: StateZombie,
			expectCPU:   100,
			expectErr:   true,
		},
		{description: "zombie is not run", initial: StateZombie, expectState: StateZombie, expectCPU: 0},
		{description: "sleeping process is dispatched", initial: StateSleeping, expectState: StateReady, expectCPU: 100},
	}

	for _, testCase := range testCases {
		p := New(1, 0, "test", "root", WithWork(testCase.work), WithState(testCase.initial))
		outcome := p.Run(context.Background(), 100)
		assert.Equal(t, testCase.expectState, outcome.State, testCase.description)
		assert.Equal(t, testCase.expectState, p.GetState(), testCase.description)
		assert.Equal(t, testCase.expectCPU, p.CPUTime(), testCase.description)
		if testCase.expectErr {
			assert.Error(t, outcome.Err, testCase.description)
			assert.NotEmpty(t, p.ExitReason(), testCase.description)
		} else {
			assert.NoError(t, outcome.Err, testCase.description)
		}
	}
}

func TestProcess_RunPassesQuantum(t *testing.T) {
	var got []int
	p := New(7, 1, "worker", "alice", WithWork(func(ctx context.Context, p *Process, quantum int) error {
		got = append(got, quantum)
		return nil
	}))
	p.Run(context.Background(), 50)
	p.Run(context.Background(), 50)
	assert.Equal(t, []int{50, 50}, got)
	assert.Equal(t, 100, p.CPUTime())
}

func TestProcess_Transitions(t *testing.T) {
	p := New(1, 0, "init", "root")
	assert.Equal(t, StateReady, p.GetState())
	assert.Equal(t, DefaultPriority, p.Priority())

	p.Unblock()
	assert.Equal(t, StateReady, p.GetState(), "unblock on ready is a no-op")

	p.Block("")
	assert.Equal(t, StateBlocked, p.GetState())
	assert.Equal(t, "I/O", p.Info().Reason)

	p.Unblock()
	assert.Equal(t, StateReady, p.GetState())

	p.Sleep(250 * time.Millisecond)
	assert.Equal(t, StateSleeping, p.GetState())
	assert.Equal(t, 250*time.Millisecond, p.SleepDuration())
	p.Unblock()
	assert.Equal(t, StateSleeping, p.GetState(), "unblock does not wake a sleeper")
	p.Wake()
	assert.Equal(t, StateReady, p.GetState())

	p.Kill("")
	assert.Equal(t, StateZombie, p.GetState())
	assert.Equal(t, "SIGTERM", p.ExitReason())
}

func TestProcess_ZombieIsTerminal(t *testing.T) {
	p := New(1, 0, "init", "root")
	p.Kill("SIGKILL")
	p.Block("io")
	p.Sleep(time.Second)
	p.Unblock()
	p.Wake()
	p.Kill("SIGTERM")
	assert.Equal(t, StateZombie, p.GetState())
	assert.Equal(t, "SIGKILL", p.ExitReason())
	assert.Equal(t, StateZombie, p.Run(context.Background(), 10).State)
}

func TestProcess_Fork(t *testing.T) {
	parent := New(10, 1, "shell", "bob", WithPriority(2))
	child := parent.Fork(11)
	assert.Equal(t, 11, child.PID)
	assert.Equal(t, 10, child.PPID)
	assert.Equal(t, "bob", child.Owner)
	assert.Equal(t, 2, child.Priority())
	assert.Equal(t, "shell_child", child.Name)
	assert.Equal(t, StateReady, child.GetState())
	assert.Equal(t, 0, child.CPUTime())
}

func TestProcess_Info(t *testing.T) {
	p := New(3, 1, "editor", "carol", WithPriority(1))
	p.SetMemoryUsed(8192)
	p.Run(context.Background(), 100)

	data, err := json.Marshal(p.Info())
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 3, decoded["pid"])
	assert.EqualValues(t, "READY", decoded["state"])
	assert.EqualValues(t, 100, decoded["cpuTime"])
	assert.EqualValues(t, 8192, decoded["memoryUsed"])

	var info Info
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, StateReady, info.State)
}

func TestParseState(t *testing.T) {
	for _, state := range []State{StateReady, StateRunning, StateBlocked, StateSleeping, StateZombie} {
		parsed, err := ParseState(state.String())
		assert.NoError(t, err)
		assert.Equal(t, state, parsed)
	}
	_, err := ParseState("DEFUNCT")
	assert.Error(t, err)
	assert.Equal(t, "State(42)", State(42).String())
}
