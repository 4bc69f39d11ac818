package player

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalance(t *testing.T) {
	p := New(context.Background(), "alice", command.LevelUser)
	require.NoError(t, p.Credit(100))
	assert.True(t, errors.Is(p.Credit(0), ErrInvalidAmount))
	assert.True(t, errors.Is(p.Debit(150), ErrInsufficientFunds))
	assert.Equal(t, int64(100), p.Balance())
	require.NoError(t, p.Debit(40))
	assert.Equal(t, int64(60), p.Balance())

	bob := New(context.Background(), "bob", command.LevelUser)
	require.NoError(t, p.Transfer(bob, 60))
	assert.Equal(t, int64(0), p.Balance())
	assert.Equal(t, int64(60), bob.Balance())
	assert.Error(t, p.Transfer(bob, 1))
}

func TestCreditOverflow(t *testing.T) {
	p := New(context.Background(), "rich", command.LevelUser)
	p.SetBalance(10)
	err := p.Credit(math.MaxInt64)
	assert.True(t, errors.Is(err, ErrBalanceOverflow))
	assert.Equal(t, int64(10), p.Balance())

	p.SetBalance(math.MaxInt64 - 5)
	require.NoError(t, p.Credit(5))
	assert.Equal(t, int64(math.MaxInt64), p.Balance())

	payer := New(context.Background(), "payer", command.LevelUser)
	payer.SetBalance(100)
	err = payer.Transfer(p, 1)
	assert.True(t, errors.Is(err, ErrBalanceOverflow))
	assert.Equal(t, int64(100), payer.Balance())
}

func TestConcurrentDebit(t *testing.T) {
	p := New(context.Background(), "alice", command.LevelUser)
	p.SetBalance(100)
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.Debit(3) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 33, succeeded)
	assert.Equal(t, int64(1), p.Balance())
}

func TestCommandRate(t *testing.T) {
	p := New(context.Background(), "spammer", command.LevelUser)
	assert.True(t, p.Allow())

	p.SetCommandRate(0.001, 2)
	assert.True(t, p.Allow())
	assert.True(t, p.Allow())
	assert.False(t, p.Allow())
	r, b := p.GetCommandRate()
	assert.Equal(t, 0.001, r)
	assert.Equal(t, 2, b)

	p.SetCommandRate(0, 0)
	assert.True(t, p.Allow())
}

func TestTell(t *testing.T) {
	var buf bytes.Buffer
	p := New(context.Background(), "alice", command.LevelUser)
	p.Tell("dropped")
	p.SetOutput(&buf)
	p.Tell("balance: %d", 5)
	assert.Equal(t, "balance: 5\n", buf.String())
}

func TestContext(t *testing.T) {
	p := New(context.Background(), "alice", command.LevelAdmin)
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	got, ok := FromContext(NewContext(context.Background(), p))
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestBroadcast(t *testing.T) {
	var shared, own bytes.Buffer
	m := NewManager(context.Background(), WithOutput(&shared))
	_, err := m.Add("alice", command.LevelUser)
	require.NoError(t, err)
	_, err = m.Add("bob", command.LevelUser)
	require.NoError(t, err)
	carol, err := m.Add("carol", command.LevelUser)
	require.NoError(t, err)
	carol.SetOutput(&own)
	dave, err := m.Add("dave", command.LevelUser)
	require.NoError(t, err)
	dave.SetOutput(nil)

	m.Broadcast("<%s> %s", "alice", "hello")
	assert.Equal(t, "<alice> hello\n", shared.String())
	assert.Equal(t, "<alice> hello\n", own.String())
}

func TestManager(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(context.Background(), WithCommandRate(5, 10), WithOutput(&buf))

	alice, err := m.Add("Alice", command.LevelAdmin)
	require.NoError(t, err)
	_, err = m.Add("alice", command.LevelUser)
	assert.Error(t, err)
	_, err = m.Add("  ", command.LevelUser)
	assert.Error(t, err)

	_, err = m.Add("bob", command.LevelUser)
	require.NoError(t, err)

	found, ok := m.Find("ALICE")
	require.True(t, ok)
	assert.Same(t, alice, found)
	assert.Equal(t, "Alice", found.Name())
	assert.True(t, m.Exists("bob"))
	assert.False(t, m.Exists("carol"))

	r, b := alice.GetCommandRate()
	assert.Equal(t, 5.0, r)
	assert.Equal(t, 10, b)
	alice.Tell("hi")
	assert.Equal(t, "hi\n", buf.String())

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name())

	require.NoError(t, m.Del("alice"))
	assert.Error(t, m.Del("alice"))
	assert.Error(t, alice.Context().Err())
	assert.False(t, m.Exists("alice"))
}
