package swap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	table := NewTable(2)
	a, b, c := Key{PID: 1, VPN: 0}, Key{PID: 1, VPN: 1}, Key{PID: 2, VPN: 0}

	slot, err := table.Reserve(a)
	require.NoError(t, err)
	assert.Equal(t, 0, slot)
	again, err := table.Reserve(a)
	require.NoError(t, err)
	assert.Equal(t, slot, again, "reserve is idempotent per key")

	slot, err = table.Reserve(b)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	_, err = table.Reserve(c)
	assert.True(t, errors.Is(err, ErrFull))
	assert.Equal(t, 2, table.Used())
	assert.Equal(t, 0, table.Free())

	assert.True(t, table.Release(a))
	assert.False(t, table.Release(a))
	slot, err = table.Reserve(c)
	require.NoError(t, err)
	assert.Equal(t, 0, slot)

	assert.Equal(t, 1, table.ReleaseProcess(1))
	_, ok := table.Lookup(b)
	assert.False(t, ok)
	got, ok := table.Lookup(c)
	assert.True(t, ok)
	assert.Equal(t, 0, got)
	assert.Equal(t, 2, table.Size())
	assert.Equal(t, 1, table.Free())
}

func TestStores(t *testing.T) {
	fileStore, err := NewFileStore(context.Background(), filepath.Join(t.TempDir(), "nested", "swap.bin"), 64, 16)
	require.NoError(t, err)
	memoryStore, err := NewMemoryStore(64, 16)
	require.NoError(t, err)

	var testCases = []struct {
		description string
		store       Store
	}{
		{description: "memory", store: memoryStore},
		{description: "file", store: fileStore},
	}
	for _, testCase := range testCases {
		store := testCase.store
		assert.Equal(t, 4, store.Slots(), testCase.description)
		assert.Equal(t, 16, store.SlotSize(), testCase.description)

		buf := make([]byte, 16)
		require.NoError(t, store.ReadSlot(1, buf), testCase.description)
		assert.Equal(t, make([]byte, 16), buf, "store starts zeroed: "+testCase.description)

		payload := bytes.Repeat([]byte{0xAB}, 16)
		require.NoError(t, store.WriteSlot(2, payload), testCase.description)
		require.NoError(t, store.ReadSlot(2, buf), testCase.description)
		assert.Equal(t, payload, buf, testCase.description)
		require.NoError(t, store.ReadSlot(3, buf), testCase.description)
		assert.Equal(t, make([]byte, 16), buf, "neighbour slot untouched: "+testCase.description)

		assert.True(t, errors.Is(store.WriteSlot(4, payload), ErrOutOfRange), testCase.description)
		assert.True(t, errors.Is(store.WriteSlot(0, make([]byte, 17)), ErrOutOfRange), testCase.description)

		require.NoError(t, store.Close(), testCase.description)
		assert.True(t, errors.Is(store.ReadSlot(0, buf), ErrClosed), testCase.description)
	}

	info, err := os.Stat(fileStore.Path())
	require.NoError(t, err)
	assert.EqualValues(t, 64, info.Size())
}

func TestNewStore_InvalidLayout(t *testing.T) {
	_, err := NewMemoryStore(64, 0)
	assert.Error(t, err)
	_, err = NewFileStore(context.Background(), "", 64, 16)
	assert.Error(t, err)
}
