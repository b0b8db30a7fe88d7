package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository для
// локальной разработки и тестов.
type orderRepositoryInMemory struct {
	mu        sync.RWMutex
	byLocal   map[int64]domain.Order
	nextLocal int64
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		byLocal:   make(map[int64]domain.Order),
		nextLocal: 1,
	}
}

// ListForCustomer возвращает заказы клиента за бизнес-дату, новые
// первыми.
func (r *orderRepositoryInMemory) ListForCustomer(customerID int64, businessDate string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, 4)
	for _, o := range r.byLocal {
		if o.CustomerID == customerID && o.BusinessDate == businessDate {
			result = append(result, o)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LocalID > result[j].LocalID
	})

	return result, nil
}

// LastOrder возвращает последний созданный заказ во всей системе.
func (r *orderRepositoryInMemory) LastOrder() (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last domain.Order
	found := false
	for _, o := range r.byLocal {
		if !found || o.LocalID > last.LocalID {
			last = o
			found = true
		}
	}
	if !found {
		return domain.Order{}, domain.ErrNotFound
	}
	return last, nil
}

// Create сохраняет заказ, назначая идентификаторы. In-memory режим
// сам выступает источником истины, поэтому серверный идентификатор
// совпадает с локальным.
func (r *orderRepositoryInMemory) Create(o domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.LocalID = r.nextLocal
	o.ServerID = r.nextLocal
	r.nextLocal++
	r.byLocal[o.LocalID] = o
	return o, nil
}

// FindByInvoice ищет заказ клиента по номеру накладной.
func (r *orderRepositoryInMemory) FindByInvoice(customerID int64, invoiceNo string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.byLocal {
		if o.CustomerID == customerID && o.InvoiceNo == invoiceNo {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

// DeleteStaleDrafts удаляет черновики с бизнес-датой раньше before.
func (r *orderRepositoryInMemory) DeleteStaleDrafts(before string, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	deleted := 0
	for id, o := range r.byLocal {
		if !o.IsDraft() || o.BusinessDate >= before {
			continue
		}
		delete(r.byLocal, id)
		deleted++
		if deleted >= limit {
			break
		}
	}
	return deleted, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
