package gh

import (
	"sync"
	"time"
)

// Budget seeds advertised by the platform per hourly window.
const (
	authenticatedBudget = 5000
	anonymousBudget     = 60
)

// Token is one credential with its tracked remaining budget. Budget numbers
// are advisory until the first response updates them from rate-limit headers.
type Token struct {
	value     string
	remaining int
	resetAt   time.Time
	invalid   bool // 401/403 credential failure, never retried
}

// Value returns the bearer token string, empty for anonymous access.
func (t *Token) Value() string { return t.value }

// Pool is the set of credentials shared across concurrent scans. The
// select-and-reserve step is serialized: two scans can never race to spend
// the same near-exhausted credential's headroom.
type Pool struct {
	mu     sync.Mutex
	tokens []*Token
}

// NewPool builds a credential pool. With no tokens, a single anonymous
// credential with the unauthenticated budget is used.
func NewPool(values []string) *Pool {
	p := &Pool{}
	for _, v := range values {
		if v == "" {
			continue
		}
		p.tokens = append(p.tokens, &Token{value: v, remaining: authenticatedBudget})
	}
	if len(p.tokens) == 0 {
		p.tokens = append(p.tokens, &Token{remaining: anonymousBudget})
	}
	return p
}

// Acquire atomically selects the credential with the most remaining budget
// and reserves one unit of it. Returns ErrBudgetExhausted when no credential
// has headroom.
func (p *Pool) Acquire(now time.Time) (*Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var best *Token
	for _, t := range p.tokens {
		if t.invalid {
			continue
		}
		// A passed reset restores the hourly window.
		if !t.resetAt.IsZero() && now.After(t.resetAt) {
			t.remaining = seedBudget(t)
			t.resetAt = time.Time{}
		}
		if t.remaining <= 0 {
			continue
		}
		if best == nil || t.remaining > best.remaining {
			best = t
		}
	}
	if best == nil {
		return nil, ErrBudgetExhausted
	}
	best.remaining--
	return best, nil
}

// Update records server-reported budget state for a credential.
func (p *Pool) Update(t *Token, remaining int, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t.remaining = remaining
	t.resetAt = resetAt
}

// Invalidate marks a credential unusable after a 401/403 credential failure.
// The caller falls back to the next credential rather than failing the scan.
func (p *Pool) Invalidate(t *Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t.invalid = true
}

// Refund returns one reserved unit, used when a request never reached the
// server (e.g. the pacer was cancelled).
func (p *Pool) Refund(t *Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !t.invalid {
		t.remaining++
	}
}

// Remaining reports the total usable budget across the pool.
func (p *Pool) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, t := range p.tokens {
		if !t.invalid && t.remaining > 0 {
			total += t.remaining
		}
	}
	return total
}

// Size reports how many usable credentials remain in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.tokens {
		if !t.invalid {
			n++
		}
	}
	return n
}

// NextReset returns the earliest reset time among exhausted credentials, or
// the zero time when no credential is waiting on a reset.
func (p *Pool) NextReset() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	var earliest time.Time
	for _, t := range p.tokens {
		if t.invalid || t.remaining > 0 || t.resetAt.IsZero() {
			continue
		}
		if earliest.IsZero() || t.resetAt.Before(earliest) {
			earliest = t.resetAt
		}
	}
	return earliest
}

func seedBudget(t *Token) int {
	if t.value == "" {
		return anonymousBudget
	}
	return authenticatedBudget
}
