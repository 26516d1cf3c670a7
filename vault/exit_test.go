package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/vault/storage"
)

// TestExitBurnsRecordedValue pins the core redemption property: destroying a
// receipt burns exactly the claim tokens it backs. The burn amount comes from
// the receipt's recorded value; the API offers no way for a caller to destroy
// a 10000-value receipt while giving up less than 10000 tokens.
func TestExitBurnsRecordedValue(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	exitRes, err := v.Exit(ctx, ExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
	})
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if !exitRes.Burned.Eq(uint256.NewInt(10000)) {
		t.Fatalf("expected burn of 10000, got %s", exitRes.Burned.Dec())
	}

	supply, err := store.Fungible.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if !supply.IsZero() {
		t.Fatalf("expected zero supply, got %s", supply.Dec())
	}
	if _, err := store.Receipts.DataOf(ctx, res.ReceiptID); !errors.Is(err, storage.ErrReceiptNotFound) {
		t.Fatalf("expected receipt destroyed, got %v", err)
	}
	total, err := store.Registry.DepositTotal(ctx, "gold")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("expected zero deposit total, got %s", total.Dec())
	}
}

// TestExitRequiresFullBacking covers the drained-holder case: a holder who
// kept the receipt but no longer holds the full claim-token amount cannot
// redeem, and nothing is destroyed in the attempt.
func TestExitRequiresFullBacking(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	// Simulate the holder transferring away all but one token.
	if err := store.Fungible.Burn(ctx, testHolder, uint256.NewInt(9999)); err != nil {
		t.Fatalf("burn: %v", err)
	}

	_, err = v.Exit(ctx, ExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
	})
	if !errors.Is(err, ErrInsufficientFungibleBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	// The receipt and deposit total must be untouched.
	rec, err := store.Receipts.DataOf(ctx, res.ReceiptID)
	if err != nil {
		t.Fatalf("expected receipt to survive: %v", err)
	}
	if !rec.RecordedValue.Eq(uint256.NewInt(10000)) {
		t.Fatalf("expected recorded value 10000, got %s", rec.RecordedValue.Dec())
	}
	total, err := store.Registry.DepositTotal(ctx, "gold")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Eq(uint256.NewInt(10000)) {
		t.Fatalf("expected deposit total 10000, got %s", total.Dec())
	}
}

func TestExitRepeatFails(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(100),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := v.Exit(ctx, ExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
	}); err != nil {
		t.Fatalf("exit: %v", err)
	}

	_, err = v.Exit(ctx, ExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
	})
	if !errors.Is(err, storage.ErrReceiptNotFound) {
		t.Fatalf("expected receipt not found on repeat exit, got %v", err)
	}

	supply, err := store.Fungible.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if !supply.IsZero() {
		t.Fatalf("expected zero supply after repeat exit, got %s", supply.Dec())
	}
}

func TestExitGuards(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t)
	registerAsset(t, store, enabledAsset("gold"))
	registerAsset(t, store, enabledAsset("silver"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(100),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	cases := []struct {
		name string
		req  ExitRequest
		want error
	}{
		{
			name: "wrong issuer",
			req:  ExitRequest{AssetID: "gold", Actor: "mallory", From: testHolder, ReceiptID: res.ReceiptID},
			want: ErrUnauthorizedIssuer,
		},
		{
			name: "asset mismatch",
			req:  ExitRequest{AssetID: "silver", Actor: testIssuer, From: testHolder, ReceiptID: res.ReceiptID},
			want: ErrReceiptAssetMismatch,
		},
		{
			name: "wrong holder",
			req:  ExitRequest{AssetID: "gold", Actor: testIssuer, From: "bob", ReceiptID: res.ReceiptID},
			want: storage.ErrReceiptNotOwned,
		},
		{
			name: "unknown receipt",
			req:  ExitRequest{AssetID: "gold", Actor: testIssuer, From: testHolder, ReceiptID: "missing"},
			want: storage.ErrReceiptNotFound,
		},
		{
			name: "empty holder",
			req:  ExitRequest{AssetID: "gold", Actor: testIssuer, ReceiptID: res.ReceiptID},
			want: ErrEmptyHolder,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Exit(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// Every rejected exit must leave the ledgers untouched.
	supply, err := store.Fungible.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if !supply.Eq(uint256.NewInt(100)) {
		t.Fatalf("expected supply 100, got %s", supply.Dec())
	}
}

func TestPartialExitReducesReceipt(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	partial, err := v.PartialExit(ctx, PartialExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
		Amount:    uint256.NewInt(4000),
	})
	if err != nil {
		t.Fatalf("partial exit: %v", err)
	}
	if !partial.Burned.Eq(uint256.NewInt(4000)) || !partial.Remaining.Eq(uint256.NewInt(6000)) {
		t.Fatalf("expected 4000 burned / 6000 remaining, got %s/%s", partial.Burned.Dec(), partial.Remaining.Dec())
	}

	rec, err := store.Receipts.DataOf(ctx, res.ReceiptID)
	if err != nil {
		t.Fatalf("data of: %v", err)
	}
	if !rec.RecordedValue.Eq(uint256.NewInt(6000)) {
		t.Fatalf("expected recorded value 6000, got %s", rec.RecordedValue.Dec())
	}

	// The remainder is still redeemable in full.
	exitRes, err := v.Exit(ctx, ExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
	})
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if !exitRes.Burned.Eq(uint256.NewInt(6000)) {
		t.Fatalf("expected burn of 6000, got %s", exitRes.Burned.Dec())
	}
}

func TestPartialExitRejectsFullValue(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	cases := []struct {
		name   string
		amount *uint256.Int
	}{
		{name: "nil amount", amount: nil},
		{name: "zero amount", amount: uint256.NewInt(0)},
		{name: "full value", amount: uint256.NewInt(10000)},
		{name: "above value", amount: uint256.NewInt(10001)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.PartialExit(ctx, PartialExitRequest{
				AssetID:   "gold",
				Actor:     testIssuer,
				From:      testHolder,
				ReceiptID: res.ReceiptID,
				Amount:    tc.amount,
			})
			if !errors.Is(err, ErrInvalidPartialAmount) {
				t.Fatalf("expected invalid partial amount, got %v", err)
			}
		})
	}
}
