package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/WinKyaw/InventSight-sub004/pkg/apperror"
)

func newRecord(current, reserved int) *InventoryRecord {
	return &InventoryRecord{
		LocationType:     LocationWarehouse,
		LocationID:       uuid.New(),
		ProductID:        uuid.New(),
		CurrentQuantity:  current,
		ReservedQuantity: reserved,
	}
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected apperror, got %v", err)
	}
	return appErr.Code
}

func TestReserve(t *testing.T) {
	r := newRecord(100, 0)

	if err := r.Reserve(40); err != nil {
		t.Fatalf("reserve 40 of 100: %v", err)
	}
	if r.ReservedQuantity != 40 || r.CurrentQuantity != 100 {
		t.Fatalf("got current=%d reserved=%d", r.CurrentQuantity, r.ReservedQuantity)
	}
	if r.AvailableQuantity() != 60 {
		t.Fatalf("available = %d, want 60", r.AvailableQuantity())
	}

	// Only availability counts, not the physical total.
	if err := r.Reserve(61); err == nil {
		t.Fatal("reserve beyond availability should fail")
	} else if appCode(t, err) != "INSUFFICIENT_STOCK" {
		t.Fatalf("unexpected code %s", appCode(t, err))
	}

	if err := r.Reserve(0); err == nil {
		t.Fatal("zero reserve should fail")
	}
	if err := r.Reserve(-5); err == nil {
		t.Fatal("negative reserve should fail")
	}
}

func TestReleaseRejectsOverRelease(t *testing.T) {
	r := newRecord(100, 30)

	if err := r.Release(31); err == nil {
		t.Fatal("over-release should be rejected, not clamped")
	}
	if r.ReservedQuantity != 30 {
		t.Fatalf("failed release must not change state, reserved=%d", r.ReservedQuantity)
	}

	if err := r.Release(30); err != nil {
		t.Fatalf("release full reservation: %v", err)
	}
	if r.ReservedQuantity != 0 || r.CurrentQuantity != 100 {
		t.Fatalf("got current=%d reserved=%d", r.CurrentQuantity, r.ReservedQuantity)
	}
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	r := newRecord(80, 0)
	before := *r

	if err := r.Reserve(25); err != nil {
		t.Fatal(err)
	}
	if err := r.Release(25); err != nil {
		t.Fatal(err)
	}

	if r.CurrentQuantity != before.CurrentQuantity || r.ReservedQuantity != before.ReservedQuantity {
		t.Fatalf("round trip changed counters: current=%d reserved=%d", r.CurrentQuantity, r.ReservedQuantity)
	}
}

func TestRemoveStockProtectsReservedUnits(t *testing.T) {
	r := newRecord(100, 40)

	// 60 available; the 40 reserved units cannot leave through RemoveStock.
	if err := r.RemoveStock(61); err == nil {
		t.Fatal("removing reserved units should fail")
	}
	if err := r.RemoveStock(60); err != nil {
		t.Fatalf("remove 60 available: %v", err)
	}
	if r.CurrentQuantity != 40 || r.ReservedQuantity != 40 {
		t.Fatalf("got current=%d reserved=%d", r.CurrentQuantity, r.ReservedQuantity)
	}
	if r.AvailableQuantity() != 0 {
		t.Fatalf("available = %d, want 0", r.AvailableQuantity())
	}
}

func TestAddStock(t *testing.T) {
	r := newRecord(0, 0)

	if err := r.AddStock(10); err != nil {
		t.Fatal(err)
	}
	if r.CurrentQuantity != 10 {
		t.Fatalf("current = %d, want 10", r.CurrentQuantity)
	}
	if err := r.AddStock(0); err == nil {
		t.Fatal("zero add should fail")
	}
	if err := r.AddStock(-1); err == nil {
		t.Fatal("negative add should fail")
	}
}

func TestBelowReorderPoint(t *testing.T) {
	r := newRecord(5, 0)
	r.ReorderPoint = 10
	if !r.BelowReorderPoint() {
		t.Fatal("5 <= 10 should flag reorder")
	}

	r.CurrentQuantity = 11
	if r.BelowReorderPoint() {
		t.Fatal("11 > 10 should not flag reorder")
	}

	// Zero reorder point disables the flag entirely.
	r.ReorderPoint = 0
	r.CurrentQuantity = 0
	if r.BelowReorderPoint() {
		t.Fatal("disabled reorder point should never flag")
	}
}
