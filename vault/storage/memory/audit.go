package memory

import (
	"context"
	"sync"

	"github.com/openclaim/vault/vault/event"
)

// AuditLog is an in-memory append-only audit event store.
type AuditLog struct {
	mu     sync.Mutex
	events map[string][]event.Event
	seqs   map[string]uint64
}

// AppendAuditEvent stores the event and assigns its per-asset sequence number.
func (a *AuditLog) AppendAuditEvent(_ context.Context, evt event.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seqs[evt.AssetID]++
	evt.Seq = a.seqs[evt.AssetID]
	a.events[evt.AssetID] = append(a.events[evt.AssetID], evt)
	return nil
}

// ListAuditEvents returns up to limit events for the asset in append order.
// A non-positive limit returns all events.
func (a *AuditLog) ListAuditEvents(_ context.Context, assetID string, limit int) ([]event.Event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stored := a.events[assetID]
	if limit <= 0 || limit > len(stored) {
		limit = len(stored)
	}
	out := make([]event.Event, limit)
	copy(out, stored[:limit])
	return out, nil
}
