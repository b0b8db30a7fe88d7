package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// customerRepository — PostgreSQL-реализация репозитория клиентов.
// PostgreSQL выступает источником истины: колонка id таблицы — это
// серверный идентификатор; локальные идентификаторы здесь не живут.
type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию репозитория
// клиентов.
func NewCustomerRepository(store *Store) domain.Repository[domain.Customer] {
	return &customerRepository{db: store.DB()}
}

const customerColumns = `id, code, name, address, phone, route_id, salesman_id, active, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ServerID, &c.Code, &c.Name, &c.Address, &c.Phone,
		&c.RouteID, &c.SalesmanID, &c.Active, &c.CreatedAt,
	)
	return c, err
}

func (r *customerRepository) Search(query string, scope domain.Scope) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE (name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%')
		  AND ($2 = 0 OR route_id = $2)
		ORDER BY id
	`, query, scope.RouteID)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *customerRepository) GetByID(serverID int64) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	c, err := scanCustomer(r.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE id = $1
	`, serverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}

func (r *customerRepository) GetByUniqueKey(key domain.UniqueKey) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE lower(code) = lower($1)
		  AND ($2 = 0 OR id <> $2)
	`, key.Code, key.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("check customer code: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Customer, 0, 1)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *customerRepository) Create(c domain.Customer) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO customers (code, name, address, phone, route_id, salesman_id, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`,
		c.Code, c.Name, c.Address, c.Phone, c.RouteID, c.SalesmanID, c.Active, c.CreatedAt,
	).Scan(&c.ServerID)
	if err != nil {
		return domain.Customer{}, conflictOr(fmt.Errorf("insert customer: %w", err), "customer", c.Code)
	}
	return c, nil
}

func (r *customerRepository) Update(c domain.Customer) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET code = $2, name = $3, address = $4, phone = $5, route_id = $6, salesman_id = $7
		WHERE id = $1
	`, c.ServerID, c.Code, c.Name, c.Address, c.Phone, c.RouteID, c.SalesmanID)
	if err != nil {
		return domain.Customer{}, conflictOr(fmt.Errorf("update customer: %w", err), "customer", c.Code)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.Customer{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *customerRepository) UpdateFlag(serverID int64, active bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE customers SET active = $2 WHERE id = $1
	`, serverID, active)
	if err != nil {
		return fmt.Errorf("update customer flag: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.Repository[domain.Customer] = (*customerRepository)(nil)
