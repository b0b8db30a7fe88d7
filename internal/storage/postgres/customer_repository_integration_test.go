package postgres

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

func TestCustomerRepository_PostgresFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCustomerRepository(store)

	created, err := repo.Create(domain.Customer{
		Code:       "CUST-001",
		Name:       "Harbor Traders",
		Address:    "12 Quay St",
		Phone:      "555-0101",
		RouteID:    7,
		SalesmanID: 3,
		Active:     true,
		CreatedAt:  "2026-09-01 10:00:00",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if created.ServerID == 0 {
		t.Fatal("expected server id after create")
	}

	got, err := repo.GetByID(created.ServerID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Code != "CUST-001" || got.RouteID != 7 {
		t.Fatalf("unexpected customer: %+v", got)
	}

	// Поиск нечувствителен к регистру и уважает область маршрута.
	found, err := repo.Search("harbor", domain.Scope{RouteID: 7})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 match, got %d", len(found))
	}
	none, err := repo.Search("harbor", domain.Scope{RouteID: 99})
	if err != nil {
		t.Fatalf("search other route: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches outside route, got %d", len(none))
	}

	// Ключ уникальности: тот же код в другом регистре конфликтует,
	// собственная запись исключается через ExcludeID.
	dups, err := repo.GetByUniqueKey(domain.UniqueKey{Code: "cust-001"})
	if err != nil {
		t.Fatalf("unique key query: %v", err)
	}
	if len(dups) != 1 {
		t.Fatalf("expected 1 conflicting record, got %d", len(dups))
	}
	self, err := repo.GetByUniqueKey(domain.UniqueKey{Code: "CUST-001", ExcludeID: created.ServerID})
	if err != nil {
		t.Fatalf("unique key query with exclude: %v", err)
	}
	if len(self) != 0 {
		t.Fatalf("expected no conflicts when excluding self, got %d", len(self))
	}

	// Дубликат кода отклоняется уникальным индексом.
	if _, err := repo.Create(domain.Customer{
		Code:      "cust-001",
		Name:      "Duplicate",
		Active:    true,
		CreatedAt: "2026-09-01 10:01:00",
	}); !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	created.Name = "Harbor Traders Ltd"
	updated, err := repo.Update(created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Harbor Traders Ltd" {
		t.Fatalf("unexpected updated name: %q", updated.Name)
	}

	if err := repo.UpdateFlag(created.ServerID, false); err != nil {
		t.Fatalf("update flag: %v", err)
	}
	got, err = repo.GetByID(created.ServerID)
	if err != nil {
		t.Fatalf("get after flag: %v", err)
	}
	if got.Active {
		t.Fatal("expected customer to be inactive")
	}

	if _, err := repo.GetByID(999999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
	if err := repo.UpdateFlag(999999, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing flag update, got %v", err)
	}
}

func TestOrderRepository_PostgresDraftFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	if _, err := repo.LastOrder(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty orders, got %v", err)
	}

	draft, err := repo.Create(domain.Order{
		CustomerID:    11,
		InvoiceNo:     "ORDER1",
		Sequence:      1,
		Status:        domain.OrderStatusDraft,
		BusinessDate:  "2026-09-01",
		SalesmanID:    3,
		StorekeeperID: domain.UnassignedStaff,
		BillerID:      domain.UnassignedStaff,
		CheckerID:     domain.UnassignedStaff,
		CreatedAt:     "2026-09-01 10:00:00",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if draft.ServerID == 0 {
		t.Fatal("expected server id for draft")
	}

	// Повторная вставка черновика для того же клиента и даты
	// возвращает существующий черновик, а не создаёт второй.
	again, err := repo.Create(domain.Order{
		CustomerID:    11,
		InvoiceNo:     "ORDER2",
		Sequence:      2,
		Status:        domain.OrderStatusDraft,
		BusinessDate:  "2026-09-01",
		SalesmanID:    3,
		StorekeeperID: domain.UnassignedStaff,
		BillerID:      domain.UnassignedStaff,
		CheckerID:     domain.UnassignedStaff,
		CreatedAt:     "2026-09-01 10:05:00",
	})
	if err != nil {
		t.Fatalf("create duplicate draft: %v", err)
	}
	if again.ServerID != draft.ServerID {
		t.Fatalf("expected existing draft %d, got %d", draft.ServerID, again.ServerID)
	}

	last, err := repo.LastOrder()
	if err != nil {
		t.Fatalf("last order: %v", err)
	}
	if last.ServerID != draft.ServerID {
		t.Fatalf("unexpected last order: %+v", last)
	}

	byInvoice, err := repo.FindByInvoice(11, "ORDER1")
	if err != nil {
		t.Fatalf("find by invoice: %v", err)
	}
	if byInvoice.ServerID != draft.ServerID {
		t.Fatalf("unexpected order by invoice: %+v", byInvoice)
	}

	listed, err := repo.ListForCustomer(11, "2026-09-01")
	if err != nil {
		t.Fatalf("list for customer: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 order, got %d", len(listed))
	}

	deleted, err := repo.DeleteStaleDrafts("2026-09-02", 10)
	if err != nil {
		t.Fatalf("delete stale drafts: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted draft, got %d", deleted)
	}
}
