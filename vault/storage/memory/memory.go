// Package memory provides in-memory implementations of the vault storage
// interfaces. It is the reference backend for tests and embedders that do not
// need durability.
package memory

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/internal/platform/id"
	"github.com/openclaim/vault/vault/asset"
	"github.com/openclaim/vault/vault/event"
	"github.com/openclaim/vault/vault/receipt"
	"github.com/openclaim/vault/vault/storage"
)

var (
	_ storage.FungibleLedger  = (*FungibleLedger)(nil)
	_ storage.ReceiptLedger   = (*ReceiptLedger)(nil)
	_ storage.AssetRegistry   = (*Registry)(nil)
	_ storage.RegistryAdmin   = (*Registry)(nil)
	_ storage.AuditEventStore = (*AuditLog)(nil)
)

// Store bundles the in-memory ledgers behind one constructor.
//
// The fungible ledger, receipt ledger, registry, and audit log are separate
// values because their Mint methods differ in shape; each guards its own state
// and is safe for concurrent use.
type Store struct {
	Fungible *FungibleLedger
	Receipts *ReceiptLedger
	Registry *Registry
	Audit    *AuditLog
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides receipt ID generation. Intended for tests.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		if gen != nil {
			s.Receipts.idgen = gen
		}
	}
}

// WithClock overrides the mint timestamp clock. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.Receipts.clock = clock
		}
	}
}

// NewStore creates an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		Fungible: &FungibleLedger{
			balances: make(map[string]*uint256.Int),
			supply:   new(uint256.Int),
		},
		Receipts: &ReceiptLedger{
			receipts: make(map[string]receipt.Receipt),
			idgen:    id.NewID,
			clock:    time.Now,
		},
		Registry: &Registry{
			assets: make(map[string]asset.Definition),
			totals: make(map[string]*uint256.Int),
			limits: make(map[string]*uint256.Int),
		},
		Audit: &AuditLog{
			events: make(map[string][]event.Event),
			seqs:   make(map[string]uint64),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
