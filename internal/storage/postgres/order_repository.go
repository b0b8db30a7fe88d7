package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

const orderColumns = `id, customer_id, invoice_no, sequence, status, business_date,
		salesman_id, storekeeper_id, biller_id, checker_id,
		gross_minor, discount_minor, net_minor, created_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(
		&o.ServerID, &o.CustomerID, &o.InvoiceNo, &o.Sequence, &status, &o.BusinessDate,
		&o.SalesmanID, &o.StorekeeperID, &o.BillerID, &o.CheckerID,
		&o.GrossMinor, &o.DiscountMinor, &o.NetMinor, &o.CreatedAt,
	)
	o.Status = domain.OrderStatus(status)
	return o, err
}

func (r *orderRepository) ListForCustomer(customerID int64, businessDate string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_id = $1 AND business_date = $2
		ORDER BY id DESC
	`, customerID, businessDate)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) LastOrder() (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY sequence DESC, id DESC
		LIMIT 1
	`))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("select last order: %w", err)
	}
	return o, nil
}

// Create вставляет заказ внутри транзакции, удерживая advisory-блокировку
// по идентификатору клиента. Это не даёт двум параллельным запросам
// создать дубликат черновика для одного клиента.
func (r *orderRepository) Create(order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, order.CustomerID); err != nil {
		return domain.Order{}, fmt.Errorf("acquire order lock: %w", err)
	}

	var existingID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM orders
		WHERE customer_id = $1 AND business_date = $2 AND status = $3
		ORDER BY id DESC
		LIMIT 1
	`, order.CustomerID, order.BusinessDate, string(domain.OrderStatusDraft)).Scan(&existingID)
	if err == nil {
		// Черновик уже появился, пока мы ждали блокировку.
		_ = tx.Rollback()
		return r.GetByID(existingID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("check existing draft: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			customer_id, invoice_no, sequence, status, business_date,
			salesman_id, storekeeper_id, biller_id, checker_id,
			gross_minor, discount_minor, net_minor, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`,
		order.CustomerID, order.InvoiceNo, order.Sequence, string(order.Status), order.BusinessDate,
		order.SalesmanID, order.StorekeeperID, order.BillerID, order.CheckerID,
		order.GrossMinor, order.DiscountMinor, order.NetMinor, order.CreatedAt,
	).Scan(&order.ServerID)
	if err != nil {
		return domain.Order{}, conflictOr(fmt.Errorf("insert order: %w", err), "order", order.InvoiceNo)
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetByID(serverID int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1
	`, serverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	return o, nil
}

func (r *orderRepository) FindByInvoice(customerID int64, invoiceNo string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_id = $1 AND invoice_no = $2
		ORDER BY id DESC
		LIMIT 1
	`, customerID, invoiceNo))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("find order by invoice: %w", err)
	}
	return o, nil
}

func (r *orderRepository) DeleteStaleDrafts(before string, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM orders
		WHERE id IN (
			SELECT id FROM orders
			WHERE status = $1 AND business_date < $2
			ORDER BY id
			LIMIT $3
		)
	`, string(domain.OrderStatusDraft), before, limit)
	if err != nil {
		return 0, fmt.Errorf("delete stale drafts: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
