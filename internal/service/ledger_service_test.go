package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestRecordRestockCreatesRecordLazily(t *testing.T) {
	env := newTestEnv(t)

	record, err := env.ledger.RecordRestock(StockAdjustmentInput{
		CompanyID: env.companyID,
		Location:  env.warehouse,
		ProductID: env.productID,
		Quantity:  25,
		Reason:    "supplier delivery",
	}, env.approver)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if record.CurrentQuantity != 25 || record.ReservedQuantity != 0 {
		t.Fatalf("current=%d reserved=%d", record.CurrentQuantity, record.ReservedQuantity)
	}

	// A second restock reuses the same record.
	record, err = env.ledger.RecordRestock(StockAdjustmentInput{
		CompanyID: env.companyID,
		Location:  env.warehouse,
		ProductID: env.productID,
		Quantity:  5,
	}, env.approver)
	if err != nil {
		t.Fatalf("second restock: %v", err)
	}
	if record.CurrentQuantity != 30 {
		t.Fatalf("current=%d, want 30", record.CurrentQuantity)
	}

	if env.hub.count("stock_update") != 2 {
		t.Fatalf("stock_update broadcasts = %d", env.hub.count("stock_update"))
	}

	// Both adjustments are on the audit chain.
	report, err := env.audit.Verify(env.companyID, 1, 0)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.EventsChecked != 2 {
		t.Fatalf("audit events = %d", report.EventsChecked)
	}
}

func TestRecordWithdrawalRespectsReservations(t *testing.T) {
	env := newTestEnv(t)
	rec := env.inventory.seed(env.warehouse, env.productID, 50)
	rec.ReservedQuantity = 20

	_, err := env.ledger.RecordWithdrawal(StockAdjustmentInput{
		CompanyID: env.companyID,
		Location:  env.warehouse,
		ProductID: env.productID,
		Quantity:  31,
	}, env.approver)
	if errCode(t, err) != "INSUFFICIENT_STOCK" {
		t.Fatalf("want INSUFFICIENT_STOCK, got %v", err)
	}

	record, err := env.ledger.RecordWithdrawal(StockAdjustmentInput{
		CompanyID: env.companyID,
		Location:  env.warehouse,
		ProductID: env.productID,
		Quantity:  30,
		Reason:    "damaged in storage",
	}, env.approver)
	if err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if record.CurrentQuantity != 20 || record.ReservedQuantity != 20 {
		t.Fatalf("current=%d reserved=%d", record.CurrentQuantity, record.ReservedQuantity)
	}
}

func TestRecordWithdrawalFromUnknownRecord(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.RecordWithdrawal(StockAdjustmentInput{
		CompanyID: env.companyID,
		Location:  env.store,
		ProductID: uuid.New(),
		Quantity:  1,
	}, env.approver)
	if errCode(t, err) != "INSUFFICIENT_STOCK" {
		t.Fatalf("want INSUFFICIENT_STOCK, got %v", err)
	}
}

func TestGetAvailability(t *testing.T) {
	env := newTestEnv(t)
	rec := env.inventory.seed(env.warehouse, env.productID, 80)
	rec.ReservedQuantity = 30
	rec.ReorderPoint = 100

	availability, err := env.ledger.GetAvailability(env.warehouse, env.productID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if availability.CurrentQuantity != 80 || availability.ReservedQuantity != 30 || availability.AvailableQuantity != 50 {
		t.Fatalf("availability: %+v", availability)
	}
	if !availability.BelowReorderPoint {
		t.Fatal("80 <= 100 should flag reorder")
	}

	// A key with no record reads as zero stock, not as an error.
	empty, err := env.ledger.GetAvailability(env.store, uuid.New())
	if err != nil {
		t.Fatalf("empty availability: %v", err)
	}
	if empty.CurrentQuantity != 0 || empty.AvailableQuantity != 0 {
		t.Fatalf("empty availability: %+v", empty)
	}
}

func TestListLocationStock(t *testing.T) {
	env := newTestEnv(t)
	env.inventory.seed(env.warehouse, env.productID, 10)
	env.inventory.seed(env.warehouse, uuid.New(), 20)
	env.inventory.seed(env.store, uuid.New(), 30)

	records, err := env.ledger.ListLocationStock(env.warehouse)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.Location() != env.warehouse {
			t.Fatalf("record from wrong location: %+v", r.Location())
		}
	}
}

func TestRestockRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)

	for _, qty := range []int{0, -5} {
		_, err := env.ledger.RecordRestock(StockAdjustmentInput{
			CompanyID: env.companyID,
			Location:  env.warehouse,
			ProductID: env.productID,
			Quantity:  qty,
		}, env.approver)
		if errCode(t, err) != "INVALID_QUANTITY" {
			t.Fatalf("qty %d: want INVALID_QUANTITY, got %v", qty, err)
		}
	}
}

