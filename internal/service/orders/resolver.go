package orders

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// Resolver выдаёт заказ клиента на текущую бизнес-дату: существующий
// подтверждённый заказ, существующий черновик или новый черновик.
//
// Последовательность "найти — создать" не атомарна: два конкурентных
// вызова для одной пары (клиент, дата) могут создать два черновика с
// разными порядковыми номерами. Сериализация вынесена на уровень
// хранилища (advisory lock в PostgreSQL-репозитории); сам резолвер
// остаётся советующим, не гарантирующим.
type Resolver struct {
	orders  domain.OrderRepository
	session domain.Session
	clock   domain.Clock
	logger  *log.Entry
}

// NewResolver создаёт резолвер черновиков поверх репозитория заказов.
func NewResolver(
	orders domain.OrderRepository,
	session domain.Session,
	clock domain.Clock,
	logger *log.Entry,
) *Resolver {
	if logger == nil {
		logger = log.WithField("component", "order-resolver")
	}
	return &Resolver{orders: orders, session: session, clock: clock, logger: logger}
}

// ActiveOrder возвращает заказ клиента на текущую бизнес-дату.
// Если существует подтверждённый заказ — возвращается он; иначе
// выполняется идемпотентный get-or-create черновика.
func (r *Resolver) ActiveOrder(c domain.Customer) (domain.Order, error) {
	if !domain.Synced(c.ServerID) {
		return domain.Order{}, domain.ErrNotSynced
	}

	date := r.clock.BusinessDate()
	existing, err := r.orders.ListForCustomer(c.ServerID, date)
	if err != nil {
		// Ошибка выборки трактуется как отсутствие заказов; решение
		// о создании черновика принимает GetOrCreateDraft ниже.
		r.logger.WithError(err).WithField("customer_id", c.ServerID).
			Warn("failed to list orders for customer")
		existing = nil
	}
	for _, o := range existing {
		if o.Status == domain.OrderStatusSubmitted {
			return o, nil
		}
	}

	return r.GetOrCreateDraft(c, date)
}

// GetOrCreateDraft возвращает черновик клиента на дату, создавая его
// при отсутствии. Повторный вызов без конкурентных мутаций
// возвращает тот же черновик.
func (r *Resolver) GetOrCreateDraft(c domain.Customer, businessDate string) (domain.Order, error) {
	if !domain.Synced(c.ServerID) {
		return domain.Order{}, domain.ErrNotSynced
	}
	if businessDate == "" {
		return domain.Order{}, domain.ErrBusinessDateRequired
	}

	// Шаг 1: существующий черновик. Ошибка выборки логируется и
	// трактуется как "черновика нет".
	existing, err := r.orders.ListForCustomer(c.ServerID, businessDate)
	if err != nil {
		r.logger.WithError(err).WithField("customer_id", c.ServerID).
			Warn("draft lookup failed, assuming no existing draft")
	}
	for _, o := range existing {
		if o.IsDraft() {
			return o, nil
		}
	}

	// Шаг 2: следующий порядковый номер от последнего заказа в
	// системе; 1, если заказов ещё нет.
	sequence := int64(1)
	last, err := r.orders.LastOrder()
	switch {
	case err == nil:
		sequence = last.Sequence + 1
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.Order{}, domain.WrapRepository("resolve last order", err)
	}

	draft := domain.Order{
		CustomerID:    c.ServerID,
		InvoiceNo:     fmt.Sprintf("%s%d", domain.InvoicePrefix, sequence),
		Sequence:      sequence,
		Status:        domain.OrderStatusDraft,
		BusinessDate:  businessDate,
		SalesmanID:    r.session.CurrentUserID(),
		StorekeeperID: domain.UnassignedStaff,
		BillerID:      domain.UnassignedStaff,
		CheckerID:     domain.UnassignedStaff,
		CreatedAt:     r.clock.Now(),
	}

	// Шаг 3: сохранение черновика; здесь ошибка фатальна.
	if _, err := r.orders.Create(draft); err != nil {
		return domain.Order{}, domain.WrapRepository("create draft order", err)
	}

	// Шаг 4: перечитываем сохранённый черновик, чтобы вернуть запись
	// с назначенным локальным идентификатором. Если запись не
	// находится, возвращаем черновик из памяти, не ломая вызывающего.
	persisted, err := r.orders.FindByInvoice(c.ServerID, draft.InvoiceNo)
	if err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"customer_id": c.ServerID,
			"invoice_no":  draft.InvoiceNo,
		}).Warn("persisted draft not found, returning in-memory draft")
		return draft, nil
	}

	return persisted, nil
}
