// Package sqlite provides SQLite-backed persistence for the vault ledgers.
//
// The store mirrors the memory backend's shape: the fungible ledger, receipt
// ledger, registry, and audit log are separate views over one shared database.
// Amounts are persisted as decimal strings so 256-bit values round-trip
// without loss.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/internal/platform/id"
	sqlitemigrate "github.com/openclaim/vault/internal/platform/storage/sqlitemigrate"
	"github.com/openclaim/vault/vault/storage"
	"github.com/openclaim/vault/vault/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

var (
	_ storage.FungibleLedger  = (*FungibleLedger)(nil)
	_ storage.ReceiptLedger   = (*ReceiptLedger)(nil)
	_ storage.AssetRegistry   = (*Registry)(nil)
	_ storage.RegistryAdmin   = (*Registry)(nil)
	_ storage.AuditEventStore = (*AuditLog)(nil)
)

// Store provides SQLite-backed persistence for vault records.
type Store struct {
	sqlDB *sql.DB

	Fungible *FungibleLedger
	Receipts *ReceiptLedger
	Registry *Registry
	Audit    *AuditLog
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides receipt and event ID generation. Intended for tests.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		if gen != nil {
			s.Receipts.idgen = gen
			s.Audit.idgen = gen
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

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{
		sqlDB:    sqlDB,
		Fungible: &FungibleLedger{sqlDB: sqlDB},
		Receipts: &ReceiptLedger{sqlDB: sqlDB, idgen: id.NewID, clock: time.Now},
		Registry: &Registry{sqlDB: sqlDB},
		Audit:    &AuditLog{sqlDB: sqlDB, idgen: id.NewID},
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// DB returns the underlying sql.DB instance.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func encodeAmount(amount *uint256.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.Dec()
}

func decodeAmount(value string) (*uint256.Int, error) {
	amount := new(uint256.Int)
	if err := amount.SetFromDecimal(strings.TrimSpace(value)); err != nil {
		return nil, fmt.Errorf("decode amount %q: %w", value, err)
	}
	return amount, nil
}

func decodeNullAmount(value sql.NullString) (*uint256.Int, error) {
	if !value.Valid {
		return nil, nil
	}
	return decodeAmount(value.String)
}

func encodeNullAmount(amount *uint256.Int) sql.NullString {
	if amount == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: amount.Dec(), Valid: true}
}
