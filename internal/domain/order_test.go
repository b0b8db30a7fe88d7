package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// helper для создания базового черновика заказа.
func makeDraft() domain.Order {
	return domain.Order{
		ServerID:      10,
		CustomerID:    7,
		InvoiceNo:     domain.InvoicePrefix + "42",
		Sequence:      42,
		Status:        domain.OrderStatusDraft,
		BusinessDate:  "2026-09-01",
		SalesmanID:    3,
		StorekeeperID: domain.UnassignedStaff,
		BillerID:      domain.UnassignedStaff,
		CheckerID:     domain.UnassignedStaff,
	}
}

func TestOrderIsDraft(t *testing.T) {
	order := makeDraft()
	if !order.IsDraft() {
		t.Fatal("expected draft order to report IsDraft")
	}

	order.Status = domain.OrderStatusSubmitted
	if order.IsDraft() {
		t.Fatal("submitted order must not report IsDraft")
	}
}

func TestOrderUnassignedStaffDefaults(t *testing.T) {
	order := makeDraft()

	for name, id := range map[string]int64{
		"storekeeper": order.StorekeeperID,
		"biller":      order.BillerID,
		"checker":     order.CheckerID,
	} {
		if id != domain.UnassignedStaff {
			t.Errorf("expected %s to be unassigned, got %d", name, id)
		}
	}

	if domain.Synced(order.StorekeeperID) {
		t.Error("unassigned staff id must not count as synced")
	}
}

func TestSynced(t *testing.T) {
	if domain.Synced(0) {
		t.Error("zero server id must not be synced")
	}
	if domain.Synced(-1) {
		t.Error("negative server id must not be synced")
	}
	if !domain.Synced(1) {
		t.Error("positive server id must be synced")
	}
}
