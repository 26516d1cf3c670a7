// Package vault implements the collateral accounting engine.
//
// The engine coordinates three ledgers: fungible claim-token balances, deposit
// receipts, and per-asset deposit totals in the registry. Every mutating
// operation is serialized behind the vault mutex and ordered so the
// hardest-to-undo step runs last; earlier steps are compensated in reverse
// when a later one fails.
//
// The conservation invariant ties the ledgers together: for every asset, the
// sum of recorded values of live receipts equals the asset's deposit total,
// and the sum of deposit totals across assets equals the fungible total
// supply. Redemption burn amounts are always derived from the receipt's
// recorded value, never taken from the caller, so a receipt can only be
// destroyed by burning exactly the claim tokens it backs.
package vault

import (
	"context"
	"log/slog"
	"sync"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/openclaim/vault/internal/platform/errors"
	"github.com/openclaim/vault/vault/event"
	"github.com/openclaim/vault/vault/storage"
)

const tracerName = "github.com/openclaim/vault/vault"

// Vault is the collateral accounting engine.
type Vault struct {
	fungible storage.FungibleLedger
	receipts storage.ReceiptLedger
	registry storage.AssetRegistry
	emitter  *event.Emitter
	logger   *slog.Logger
	tracer   trace.Tracer

	// mu serializes mutating operations. The ledgers are individually safe
	// for concurrent use; the mutex keeps multi-ledger sequences from
	// interleaving.
	mu sync.Mutex
}

// Option configures a Vault.
type Option func(*Vault)

// WithEmitter attaches an audit event emitter. Emit failures are logged,
// never returned; audit is observability, not control flow.
func WithEmitter(emitter *event.Emitter) Option {
	return func(v *Vault) {
		v.emitter = emitter
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a vault over the given ledgers.
func New(fungible storage.FungibleLedger, receipts storage.ReceiptLedger, registry storage.AssetRegistry, opts ...Option) (*Vault, error) {
	if fungible == nil {
		return nil, apperrors.New(apperrors.CodeUnknown, "fungible ledger is required")
	}
	if receipts == nil {
		return nil, apperrors.New(apperrors.CodeUnknown, "receipt ledger is required")
	}
	if registry == nil {
		return nil, apperrors.New(apperrors.CodeUnknown, "asset registry is required")
	}

	v := &Vault{
		fungible: fungible,
		receipts: receipts,
		registry: registry,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// FungibleLedger returns the vault's claim-token ledger.
func (v *Vault) FungibleLedger() storage.FungibleLedger {
	return v.fungible
}

// ReceiptLedger returns the vault's deposit receipt ledger.
func (v *Vault) ReceiptLedger() storage.ReceiptLedger {
	return v.receipts
}

// Registry returns the vault's asset registry.
func (v *Vault) Registry() storage.AssetRegistry {
	return v.registry
}

// ErrConservationViolation indicates the ledgers have diverged.
var ErrConservationViolation = apperrors.New(apperrors.CodeConservationViolation, "ledger conservation violated")

// CheckConservation verifies the conservation invariant over the given assets.
//
// For each asset it compares the sum of recorded values of live receipts with
// the registry's deposit total, then compares the sum of all deposit totals
// with the fungible total supply. The asset list must cover every asset that
// ever held deposits for the supply comparison to hold.
func (v *Vault) CheckConservation(ctx context.Context, assetIDs []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	grand := new(uint256.Int)
	for _, assetID := range assetIDs {
		total, err := v.registry.DepositTotal(ctx, assetID)
		if err != nil {
			return err
		}

		receipts, err := v.receipts.ListByAsset(ctx, assetID)
		if err != nil {
			return err
		}
		recorded := new(uint256.Int)
		for _, rec := range receipts {
			if rec.RecordedValue == nil {
				continue
			}
			if _, overflow := recorded.AddOverflow(recorded, rec.RecordedValue); overflow {
				return apperrors.WithMetadata(apperrors.CodeConservationViolation, "recorded value sum overflows", map[string]string{
					"asset_id": assetID,
				})
			}
		}

		if !recorded.Eq(total) {
			return apperrors.WithMetadata(apperrors.CodeConservationViolation, "receipt values diverge from deposit total", map[string]string{
				"asset_id":      assetID,
				"receipt_sum":   recorded.Dec(),
				"deposit_total": total.Dec(),
			})
		}

		if _, overflow := grand.AddOverflow(grand, total); overflow {
			return apperrors.New(apperrors.CodeConservationViolation, "deposit total sum overflows")
		}
	}

	supply, err := v.fungible.TotalSupply(ctx)
	if err != nil {
		return err
	}
	if !grand.Eq(supply) {
		return apperrors.WithMetadata(apperrors.CodeConservationViolation, "deposit totals diverge from fungible supply", map[string]string{
			"deposit_sum":  grand.Dec(),
			"total_supply": supply.Dec(),
		})
	}
	return nil
}

// emit records an audit event, logging instead of failing the operation.
func (v *Vault) emit(ctx context.Context, evt event.Event) {
	if err := v.emitter.Emit(ctx, evt); err != nil {
		v.logger.WarnContext(ctx, "audit event emit failed",
			"event_type", string(evt.Type),
			"asset_id", evt.AssetID,
			"error", err,
		)
	}
}
