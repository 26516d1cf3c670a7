// Package app assembles a ready-to-use vault from environment configuration.
//
// Embedders that want control over the wiring can construct the pieces
// directly; this package covers the common case of one vault over one
// backend with tracing and audit attached.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openclaim/vault/internal/platform/config"
	platformotel "github.com/openclaim/vault/internal/platform/otel"
	"github.com/openclaim/vault/vault"
	"github.com/openclaim/vault/vault/event"
	"github.com/openclaim/vault/vault/storage"
	"github.com/openclaim/vault/vault/storage/memory"
	"github.com/openclaim/vault/vault/storage/sqlite"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the environment-driven vault configuration.
type Config struct {
	// Backend selects the storage backend, "sqlite" or "memory".
	Backend string `env:"OPENCLAIM_VAULT_BACKEND" envDefault:"sqlite"`
	// StoragePath is the SQLite database path. Ignored by the memory backend.
	StoragePath string `env:"OPENCLAIM_VAULT_DB" envDefault:"vault.db"`
	// ServiceName labels traces emitted by this process.
	ServiceName string `env:"OPENCLAIM_VAULT_SERVICE_NAME" envDefault:"openclaim-vault"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Stack is an assembled vault plus the surfaces embedders manage it through.
type Stack struct {
	// Vault is the accounting engine.
	Vault *vault.Vault
	// Admin is the configuration-time registry surface.
	Admin storage.RegistryAdmin
	// Audit lists the persisted audit trail.
	Audit storage.AuditEventStore

	closers []func(context.Context) error
}

// Close releases the stack's resources, flushing traces and closing storage.
func (s *Stack) Close(ctx context.Context) error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open assembles a vault stack from the configuration.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}

	shutdown, err := platformotel.Setup(ctx, cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	stack := &Stack{}
	stack.closers = append(stack.closers, shutdown)

	var (
		fungible storage.FungibleLedger
		receipts storage.ReceiptLedger
		registry storage.AssetRegistry
		sink     storage.AuditEventStore
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendMemory:
		store := memory.NewStore()
		fungible = store.Fungible
		receipts = store.Receipts
		registry = store.Registry
		stack.Admin = store.Registry
		sink = store.Audit
	case BackendSQLite, "":
		store, err := sqlite.Open(cfg.StoragePath)
		if err != nil {
			_ = stack.Close(ctx)
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		stack.closers = append(stack.closers, func(context.Context) error {
			return store.Close()
		})
		fungible = store.Fungible
		receipts = store.Receipts
		registry = store.Registry
		stack.Admin = store.Registry
		sink = store.Audit
	default:
		_ = stack.Close(ctx)
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	stack.Audit = sink

	v, err := vault.New(fungible, receipts, registry,
		vault.WithEmitter(event.NewEmitter(sink)),
		vault.WithLogger(logger),
	)
	if err != nil {
		_ = stack.Close(ctx)
		return nil, err
	}
	stack.Vault = v

	logger.InfoContext(ctx, "vault ready",
		"backend", cfg.Backend,
		"service", cfg.ServiceName,
	)
	return stack, nil
}
