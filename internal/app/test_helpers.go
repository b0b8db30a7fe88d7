package app

import (
	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// newTestCustomer создаёт тестового клиента для использования в тестах.
func newTestCustomer() domain.Customer {
	return domain.Customer{
		Code:       "CUST-001",
		Name:       "ООО Ромашка",
		Address:    "ул. Полевая, 1",
		Phone:      "+7 900 000-00-01",
		RouteID:    3,
		SalesmanID: 2,
		Active:     true,
	}
}

// newTestUnit создаёт тестовую единицу измерения.
func newTestUnit() domain.Unit {
	return domain.Unit{
		Code:   "PCS",
		Name:   "штука",
		Active: true,
	}
}
