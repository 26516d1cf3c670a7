package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openclaim/vault/vault/event"
)

// AuditLog is the append-only audit event view of the store.
type AuditLog struct {
	sqlDB *sql.DB
	idgen func() (string, error)
}

// AppendAuditEvent stores the event and assigns its per-asset sequence number.
// Events appended without an ID get one here.
func (a *AuditLog) AppendAuditEvent(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if evt.ID == "" {
		generated, err := a.idgen()
		if err != nil {
			return fmt.Errorf("generate event id: %w", err)
		}
		evt.ID = generated
	}

	tx, err := a.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq uint64
	err = tx.QueryRow("SELECT seq FROM audit_event_seqs WHERE asset_id = ?", evt.AssetID).Scan(&seq)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read event seq: %w", err)
	}
	seq++

	if _, err := tx.Exec(`
INSERT INTO audit_event_seqs (asset_id, seq) VALUES (?, ?)
ON CONFLICT (asset_id) DO UPDATE SET seq = excluded.seq
`, evt.AssetID, seq); err != nil {
		return fmt.Errorf("write event seq: %w", err)
	}

	if _, err := tx.Exec(`
INSERT INTO audit_events (id, seq, event_type, asset_id, actor, holder, value, receipt_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		evt.ID,
		seq,
		string(evt.Type),
		evt.AssetID,
		evt.Actor,
		evt.Holder,
		encodeNullAmount(evt.Value),
		evt.ReceiptID,
		toMillis(evt.Timestamp),
	); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// ListAuditEvents returns up to limit events for the asset in append order.
// A non-positive limit returns all events.
func (a *AuditLog) ListAuditEvents(ctx context.Context, assetID string, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `
SELECT id, seq, event_type, asset_id, actor, holder, value, receipt_id, created_at
FROM audit_events WHERE asset_id = ?
ORDER BY seq
`
	args := []any{assetID}
	if limit > 0 {
		query += "LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var (
			evt          event.Event
			eventType    string
			valueRaw     sql.NullString
			createdAtRaw int64
		)
		if err := rows.Scan(
			&evt.ID,
			&evt.Seq,
			&eventType,
			&evt.AssetID,
			&evt.Actor,
			&evt.Holder,
			&valueRaw,
			&evt.ReceiptID,
			&createdAtRaw,
		); err != nil {
			return nil, fmt.Errorf("scan audit event row: %w", err)
		}
		evt.Type = event.Type(eventType)
		if evt.Value, err = decodeNullAmount(valueRaw); err != nil {
			return nil, err
		}
		evt.Timestamp = fromMillis(createdAtRaw)
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit event rows: %w", err)
	}
	return out, nil
}
