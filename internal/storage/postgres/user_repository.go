package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// userRepository — PostgreSQL-реализация репозитория пользователей.
// Дополнительно реализует domain.Directory для построения списка
// получателей уведомлений.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт PostgreSQL-реализацию репозитория
// пользователей.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{userRepository{db: store.DB()}}
}

// UserRepository экспортирует реализацию вместе с domain.Directory.
type UserRepository struct {
	userRepository
}

const userColumns = `id, code, name, phone, address, role, active, created_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ServerID, &u.Code, &u.Name, &u.Phone, &u.Address, &u.Role, &u.Active, &u.CreatedAt)
	return u, err
}

func (r *userRepository) Search(query string, _ domain.Scope) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%'
		ORDER BY id
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	result := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *userRepository) GetByID(serverID int64) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, serverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByUniqueKey(key domain.UniqueKey) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(code) = lower($1)
		  AND ($2 = 0 OR id <> $2)
	`, key.Code, key.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("check user code: %w", err)
	}
	defer rows.Close()

	result := make([]domain.User, 0, 1)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *userRepository) Create(u domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (code, name, phone, address, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, u.Code, u.Name, u.Phone, u.Address, u.Role, u.Active, u.CreatedAt).Scan(&u.ServerID)
	if err != nil {
		return domain.User{}, conflictOr(fmt.Errorf("insert user: %w", err), "user", u.Code)
	}
	return u, nil
}

func (r *userRepository) Update(u domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET code = $2, name = $3, phone = $4, address = $5, role = $6 WHERE id = $1
	`, u.ServerID, u.Code, u.Name, u.Phone, u.Address, u.Role)
	if err != nil {
		return domain.User{}, conflictOr(fmt.Errorf("update user: %w", err), "user", u.Code)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *userRepository) UpdateFlag(serverID int64, active bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET active = $2 WHERE id = $1
	`, serverID, active)
	if err != nil {
		return fmt.Errorf("update user flag: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByRole возвращает активных пользователей с указанной ролью.
func (r *UserRepository) ListByRole(role domain.Role) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE role = $1 AND active ORDER BY id
	`, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

var (
	_ domain.Repository[domain.User] = (*UserRepository)(nil)
	_ domain.Directory               = (*UserRepository)(nil)
)
