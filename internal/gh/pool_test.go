package gh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolAnonymousFallback(t *testing.T) {
	p := NewPool(nil)
	assert.Equal(t, 1, p.Size())
	assert.Equal(t, anonymousBudget, p.Remaining())

	tok, err := p.Acquire(time.Now())
	require.NoError(t, err)
	assert.Empty(t, tok.Value())
}

func TestPoolAcquirePrefersMostBudget(t *testing.T) {
	p := NewPool([]string{"a", "b"})
	now := time.Now()

	tok, err := p.Acquire(now)
	require.NoError(t, err)
	p.Update(tok, 10, now.Add(time.Hour))

	// The untouched credential has the full seed budget and must win.
	next, err := p.Acquire(now)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Value(), next.Value())
}

func TestPoolExhaustion(t *testing.T) {
	p := NewPool([]string{"a"})
	now := time.Now()

	tok, err := p.Acquire(now)
	require.NoError(t, err)
	p.Update(tok, 0, now.Add(time.Hour))

	_, err = p.Acquire(now)
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, now.Add(time.Hour).Unix(), p.NextReset().Unix())
}

func TestPoolResetRestoresBudget(t *testing.T) {
	p := NewPool([]string{"a"})
	now := time.Now()

	tok, err := p.Acquire(now)
	require.NoError(t, err)
	p.Update(tok, 0, now.Add(time.Hour))

	_, err = p.Acquire(now)
	require.ErrorIs(t, err, ErrBudgetExhausted)

	// Once the window passes, the hourly seed comes back.
	tok, err = p.Acquire(now.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Value())
	assert.Equal(t, authenticatedBudget-1, p.Remaining())
}

func TestPoolInvalidate(t *testing.T) {
	p := NewPool([]string{"bad", "good"})
	now := time.Now()

	tok, err := p.Acquire(now)
	require.NoError(t, err)
	p.Invalidate(tok)
	assert.Equal(t, 1, p.Size())

	// Only the surviving credential is ever handed out again.
	for i := 0; i < 3; i++ {
		next, err := p.Acquire(now)
		require.NoError(t, err)
		assert.NotEqual(t, tok.Value(), next.Value())
	}
}

func TestPoolInvalidateAllCredentials(t *testing.T) {
	p := NewPool([]string{"a"})
	tok, err := p.Acquire(time.Now())
	require.NoError(t, err)
	p.Invalidate(tok)

	_, err = p.Acquire(time.Now())
	assert.ErrorIs(t, err, ErrBudgetExhausted)
}

func TestPoolRefund(t *testing.T) {
	p := NewPool([]string{"a"})
	before := p.Remaining()

	tok, err := p.Acquire(time.Now())
	require.NoError(t, err)
	assert.Equal(t, before-1, p.Remaining())

	p.Refund(tok)
	assert.Equal(t, before, p.Remaining())
}
