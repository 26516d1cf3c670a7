// Package event contains durable audit records for vault operations.
//
// Audit events exist for observability and incident analysis, never for
// control flow: a failed append must not fail the operation that produced it.
package event

import (
	"time"

	"github.com/holiman/uint256"
)

// Type identifies the operation an audit event records.
type Type string

const (
	// TypeIssuance records a successful put.
	TypeIssuance Type = "ISSUANCE"
	// TypeRedemption records a successful full exit.
	TypeRedemption Type = "REDEMPTION"
	// TypePartialRedemption records a successful partial exit.
	TypePartialRedemption Type = "PARTIAL_REDEMPTION"
)

// Event is one audit record.
type Event struct {
	// ID is assigned by the emitter.
	ID string
	// Seq is the per-asset sequence number assigned by the store on append.
	Seq uint64
	// Type identifies the recorded operation.
	Type Type
	// AssetID identifies the asset the operation touched.
	AssetID string
	// Actor is the issuer that performed the operation.
	Actor string
	// Holder is the account credited (issuance) or debited (redemption).
	Holder string
	// Value is the fungible amount minted or burned.
	Value *uint256.Int
	// ReceiptID identifies the receipt minted, destroyed, or reduced.
	ReceiptID string
	// Timestamp is assigned by the emitter when zero.
	Timestamp time.Time
}
