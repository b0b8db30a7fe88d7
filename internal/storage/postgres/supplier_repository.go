package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// supplierRepository — PostgreSQL-реализация репозитория поставщиков.
type supplierRepository struct {
	db *sql.DB
}

// NewSupplierRepository создаёт PostgreSQL-реализацию репозитория
// поставщиков.
func NewSupplierRepository(store *Store) domain.Repository[domain.Supplier] {
	return &supplierRepository{db: store.DB()}
}

const supplierColumns = `id, code, name, phone, address, active, created_at`

func scanSupplier(row interface{ Scan(...any) error }) (domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(&s.ServerID, &s.Code, &s.Name, &s.Phone, &s.Address, &s.Active, &s.CreatedAt)
	return s, err
}

func (r *supplierRepository) Search(query string, _ domain.Scope) ([]domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%'
		ORDER BY id
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search suppliers: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *supplierRepository) GetByID(serverID int64) (domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	s, err := scanSupplier(r.db.QueryRowContext(ctx, `
		SELECT `+supplierColumns+` FROM suppliers WHERE id = $1
	`, serverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Supplier{}, domain.ErrNotFound
		}
		return domain.Supplier{}, fmt.Errorf("select supplier: %w", err)
	}
	return s, nil
}

func (r *supplierRepository) GetByUniqueKey(key domain.UniqueKey) ([]domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE lower(code) = lower($1)
		  AND ($2 = 0 OR id <> $2)
	`, key.Code, key.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("check supplier code: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Supplier, 0, 1)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *supplierRepository) Create(s domain.Supplier) (domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO suppliers (code, name, phone, address, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, s.Code, s.Name, s.Phone, s.Address, s.Active, s.CreatedAt).Scan(&s.ServerID)
	if err != nil {
		return domain.Supplier{}, conflictOr(fmt.Errorf("insert supplier: %w", err), "supplier", s.Code)
	}
	return s, nil
}

func (r *supplierRepository) Update(s domain.Supplier) (domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE suppliers SET code = $2, name = $3, phone = $4, address = $5 WHERE id = $1
	`, s.ServerID, s.Code, s.Name, s.Phone, s.Address)
	if err != nil {
		return domain.Supplier{}, conflictOr(fmt.Errorf("update supplier: %w", err), "supplier", s.Code)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.Supplier{}, domain.ErrNotFound
	}
	return s, nil
}

func (r *supplierRepository) UpdateFlag(serverID int64, active bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE suppliers SET active = $2 WHERE id = $1
	`, serverID, active)
	if err != nil {
		return fmt.Errorf("update supplier flag: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.Repository[domain.Supplier] = (*supplierRepository)(nil)
