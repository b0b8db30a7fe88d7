package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// isUniqueViolation распознаёт нарушение unique-ограничения PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// conflictOr переводит нарушение уникальности в доменный ConflictError,
// остальные ошибки возвращает как есть.
func conflictOr(err error, entity, key string) error {
	if isUniqueViolation(err) {
		return domain.NewConflictError(entity, key)
	}
	return err
}
