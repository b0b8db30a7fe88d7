package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// unitRepository — PostgreSQL-реализация репозитория единиц
// измерения; и код, и имя уникальны глобально.
type unitRepository struct {
	db *sql.DB
}

// NewUnitRepository создаёт PostgreSQL-реализацию репозитория единиц
// измерения.
func NewUnitRepository(store *Store) domain.Repository[domain.Unit] {
	return &unitRepository{db: store.DB()}
}

const unitColumns = `id, code, name, active, created_at`

func scanUnit(row interface{ Scan(...any) error }) (domain.Unit, error) {
	var u domain.Unit
	err := row.Scan(&u.ServerID, &u.Code, &u.Name, &u.Active, &u.CreatedAt)
	return u, err
}

func (r *unitRepository) Search(query string, _ domain.Scope) ([]domain.Unit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%'
		ORDER BY id
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search units: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Unit, 0)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *unitRepository) GetByID(serverID int64) (domain.Unit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	u, err := scanUnit(r.db.QueryRowContext(ctx, `
		SELECT `+unitColumns+` FROM units WHERE id = $1
	`, serverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Unit{}, domain.ErrNotFound
		}
		return domain.Unit{}, fmt.Errorf("select unit: %w", err)
	}
	return u, nil
}

func (r *unitRepository) GetByUniqueKey(key domain.UniqueKey) ([]domain.Unit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Конфликт по коду или по имени; пустая часть ключа не участвует.
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE (($1 <> '' AND lower(code) = lower($1))
		    OR ($2 <> '' AND lower(name) = lower($2)))
		  AND ($3 = 0 OR id <> $3)
	`, key.Code, key.Name, key.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("check unit key: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Unit, 0, 1)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *unitRepository) Create(u domain.Unit) (domain.Unit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO units (code, name, active, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, u.Code, u.Name, u.Active, u.CreatedAt).Scan(&u.ServerID)
	if err != nil {
		return domain.Unit{}, conflictOr(fmt.Errorf("insert unit: %w", err), "unit", u.Code)
	}
	return u, nil
}

func (r *unitRepository) Update(u domain.Unit) (domain.Unit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE units SET code = $2, name = $3 WHERE id = $1
	`, u.ServerID, u.Code, u.Name)
	if err != nil {
		return domain.Unit{}, conflictOr(fmt.Errorf("update unit: %w", err), "unit", u.Code)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.Unit{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *unitRepository) UpdateFlag(serverID int64, active bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE units SET active = $2 WHERE id = $1
	`, serverID, active)
	if err != nil {
		return fmt.Errorf("update unit flag: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.Repository[domain.Unit] = (*unitRepository)(nil)
