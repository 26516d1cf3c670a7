package memory

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/vault/storage"
)

// FungibleLedger is an in-memory claim-token ledger.
type FungibleLedger struct {
	mu       sync.Mutex
	balances map[string]*uint256.Int
	supply   *uint256.Int
}

// Mint credits amount to the holder and grows total supply.
func (l *FungibleLedger) Mint(_ context.Context, to string, amount *uint256.Int) error {
	if to == "" {
		return storage.ErrInvalidAmount
	}
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[to]
	if !ok {
		balance = new(uint256.Int)
		l.balances[to] = balance
	}
	balance.Add(balance, amount)
	l.supply.Add(l.supply, amount)
	return nil
}

// Burn debits amount from the holder and shrinks total supply.
func (l *FungibleLedger) Burn(_ context.Context, from string, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[from]
	if !ok || balance.Lt(amount) {
		return storage.ErrInsufficientBalance
	}
	balance.Sub(balance, amount)
	l.supply.Sub(l.supply, amount)
	return nil
}

// TotalSupply returns the outstanding fungible supply.
func (l *FungibleLedger) TotalSupply(_ context.Context) (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(uint256.Int).Set(l.supply), nil
}

// BalanceOf returns the holder's balance. Unknown holders read as zero.
func (l *FungibleLedger) BalanceOf(_ context.Context, addr string) (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if balance, ok := l.balances[addr]; ok {
		return new(uint256.Int).Set(balance), nil
	}
	return new(uint256.Int), nil
}
