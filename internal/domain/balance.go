package domain

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Balance is one user's cash account. The core never checks solvency
// itself (funds are pre-checked at admission, see OrderPlacementService);
// VerifyInvariant exists for operational tooling and tests, not the
// matching hot path.
type Balance struct {
	UserID  string
	Amount  decimal.Decimal
	LastSeq uint64
}

// Credit adds funds to the balance.
func (b *Balance) Credit(amount decimal.Decimal, seq uint64) {
	b.Amount = b.Amount.Add(amount)
	b.LastSeq = seq
}

// Debit removes funds from the balance without checking solvency; the
// core relies on admission-time checks (spec §6, §9 open question 4) to
// keep this from going negative in the common case.
func (b *Balance) Debit(amount decimal.Decimal, seq uint64) {
	b.Amount = b.Amount.Sub(amount)
	b.LastSeq = seq
}

// VerifyInvariant panics if the balance is negative. Intended for
// diagnostics and tests, never called from the matching loop itself.
func (b *Balance) VerifyInvariant() {
	if b.Amount.IsNegative() {
		panic(fmt.Sprintf("BALANCE_INVARIANT_NEGATIVE_AMOUNT: %s = %s", b.UserID, b.Amount.String()))
	}
}

// BalanceBook is an in-memory, thread-safe ledger of user balances. It
// implements BalanceStore directly and is suitable both for tests and as
// a standalone balance port when no durable storage is wired.
type BalanceBook struct {
	mu       sync.Mutex
	balances map[string]*Balance
	nextSeq  uint64
}

// NewBalanceBook creates a new, empty balance book.
func NewBalanceBook() *BalanceBook {
	return &BalanceBook{
		balances: make(map[string]*Balance),
	}
}

// Get returns the balance for a user, creating a zero balance if absent.
func (bb *BalanceBook) Get(userID string) *Balance {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	return bb.getLocked(userID)
}

func (bb *BalanceBook) getLocked(userID string) *Balance {
	b, ok := bb.balances[userID]
	if !ok {
		b = &Balance{UserID: userID}
		bb.balances[userID] = b
	}
	return b
}

// Adjust implements BalancePort: a positive delta credits, a negative
// delta debits.
func (bb *BalanceBook) Adjust(_ context.Context, userID string, delta decimal.Decimal) error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.nextSeq++
	b := bb.getLocked(userID)
	if delta.IsNegative() {
		b.Debit(delta.Neg(), bb.nextSeq)
	} else {
		b.Credit(delta, bb.nextSeq)
	}
	return nil
}

// Balance implements BalanceReader.
func (bb *BalanceBook) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	return bb.getLocked(userID).Amount, nil
}

// VerifyAll checks the non-negative invariant on every balance.
func (bb *BalanceBook) VerifyAll() {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	for _, b := range bb.balances {
		b.VerifyInvariant()
	}
}

// Snapshot returns a copy of all balances, for diagnostics or tests.
func (bb *BalanceBook) Snapshot() map[string]Balance {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	result := make(map[string]Balance, len(bb.balances))
	for k, v := range bb.balances {
		result[k] = *v
	}
	return result
}
