package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// subCategoryRepository — PostgreSQL-реализация репозитория
// подкатегорий; имя уникально в рамках родительской категории.
type subCategoryRepository struct {
	db *sql.DB
}

// NewSubCategoryRepository создаёт PostgreSQL-реализацию репозитория
// подкатегорий.
func NewSubCategoryRepository(store *Store) domain.Repository[domain.SubCategory] {
	return &subCategoryRepository{db: store.DB()}
}

const subCategoryColumns = `id, name, category_id, active, created_at`

func scanSubCategory(row interface{ Scan(...any) error }) (domain.SubCategory, error) {
	var s domain.SubCategory
	err := row.Scan(&s.ServerID, &s.Name, &s.CategoryID, &s.Active, &s.CreatedAt)
	return s, err
}

func (r *subCategoryRepository) Search(query string, scope domain.Scope) ([]domain.SubCategory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subCategoryColumns+`
		FROM sub_categories
		WHERE name ILIKE '%' || $1 || '%'
		  AND ($2 = 0 OR category_id = $2)
		ORDER BY id
	`, query, scope.ParentID)
	if err != nil {
		return nil, fmt.Errorf("search sub-categories: %w", err)
	}
	defer rows.Close()

	result := make([]domain.SubCategory, 0)
	for rows.Next() {
		s, err := scanSubCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sub-category: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *subCategoryRepository) GetByID(serverID int64) (domain.SubCategory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	s, err := scanSubCategory(r.db.QueryRowContext(ctx, `
		SELECT `+subCategoryColumns+` FROM sub_categories WHERE id = $1
	`, serverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SubCategory{}, domain.ErrNotFound
		}
		return domain.SubCategory{}, fmt.Errorf("select sub-category: %w", err)
	}
	return s, nil
}

func (r *subCategoryRepository) GetByUniqueKey(key domain.UniqueKey) ([]domain.SubCategory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subCategoryColumns+`
		FROM sub_categories
		WHERE lower(name) = lower($1)
		  AND category_id = $2
		  AND ($3 = 0 OR id <> $3)
	`, key.Name, key.ParentID, key.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("check sub-category name: %w", err)
	}
	defer rows.Close()

	result := make([]domain.SubCategory, 0, 1)
	for rows.Next() {
		s, err := scanSubCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sub-category: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *subCategoryRepository) Create(s domain.SubCategory) (domain.SubCategory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sub_categories (name, category_id, active, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, s.Name, s.CategoryID, s.Active, s.CreatedAt).Scan(&s.ServerID)
	if err != nil {
		return domain.SubCategory{}, conflictOr(fmt.Errorf("insert sub-category: %w", err), "sub-category", s.Name)
	}
	return s, nil
}

func (r *subCategoryRepository) Update(s domain.SubCategory) (domain.SubCategory, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE sub_categories SET name = $2, category_id = $3 WHERE id = $1
	`, s.ServerID, s.Name, s.CategoryID)
	if err != nil {
		return domain.SubCategory{}, conflictOr(fmt.Errorf("update sub-category: %w", err), "sub-category", s.Name)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.SubCategory{}, domain.ErrNotFound
	}
	return s, nil
}

func (r *subCategoryRepository) UpdateFlag(serverID int64, active bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE sub_categories SET active = $2 WHERE id = $1
	`, serverID, active)
	if err != nil {
		return fmt.Errorf("update sub-category flag: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.Repository[domain.SubCategory] = (*subCategoryRepository)(nil)
