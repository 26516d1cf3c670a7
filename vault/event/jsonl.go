package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/holiman/uint256"
)

// jsonlRecord is the stable on-disk shape for exported audit events.
// Amounts are canonical decimal strings so consumers need no 256-bit support.
type jsonlRecord struct {
	ID        string `json:"id"`
	Seq       uint64 `json:"seq"`
	Type      string `json:"type"`
	AssetID   string `json:"asset_id"`
	Actor     string `json:"actor"`
	Holder    string `json:"holder"`
	Value     string `json:"value"`
	ReceiptID string `json:"receipt_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// WriteJSONL exports events one JSON object per line.
func WriteJSONL(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for _, evt := range events {
		value := "0"
		if evt.Value != nil {
			value = evt.Value.Dec()
		}
		rec := jsonlRecord{
			ID:        evt.ID,
			Seq:       evt.Seq,
			Type:      string(evt.Type),
			AssetID:   evt.AssetID,
			Actor:     evt.Actor,
			Holder:    evt.Holder,
			Value:     value,
			ReceiptID: evt.ReceiptID,
			Timestamp: evt.Timestamp.UTC().Format(time.RFC3339Nano),
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode event %s: %w", evt.ID, err)
		}
	}
	return nil
}

// ReadJSONL parses events exported by WriteJSONL.
func ReadJSONL(r io.Reader) ([]Event, error) {
	var out []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", line, err)
		}
		value := new(uint256.Int)
		if err := value.SetFromDecimal(rec.Value); err != nil {
			return nil, fmt.Errorf("decode line %d value: %w", line, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("decode line %d timestamp: %w", line, err)
		}
		out = append(out, Event{
			ID:        rec.ID,
			Seq:       rec.Seq,
			Type:      Type(rec.Type),
			AssetID:   rec.AssetID,
			Actor:     rec.Actor,
			Holder:    rec.Holder,
			Value:     value,
			ReceiptID: rec.ReceiptID,
			Timestamp: ts,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return out, nil
}
