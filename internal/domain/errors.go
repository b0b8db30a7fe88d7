package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound возвращается, если запись не найдена в хранилище.
	ErrNotFound = errors.New("record not found")
	// ErrNotSynced возвращается при попытке удалённой операции над
	// записью без серверного идентификатора.
	ErrNotSynced = errors.New("record has no server id")
	// ErrCodeRequired — отсутствующий код записи.
	ErrCodeRequired = errors.New("code is required")
	// ErrNameRequired — отсутствующее имя записи.
	ErrNameRequired = errors.New("name is required")
	// ErrCustomerRequired — отсутствующий клиент у заказа.
	ErrCustomerRequired = errors.New("customer_id is required")
	// ErrBusinessDateRequired — отсутствующая бизнес-дата заказа.
	ErrBusinessDateRequired = errors.New("business date is required")
)

// ConflictError сигнализирует о нарушении уникальности кода или имени
// внутри области видимости.
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
}

// NewConflictError создаёт ConflictError для сущности и ключа.
func NewConflictError(entity, key string) *ConflictError {
	return &ConflictError{Entity: entity, Key: key}
}

// IsConflict проверяет, является ли ошибка конфликтом уникальности.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// RepositoryError оборачивает ошибку транспорта/хранилища, сохраняя
// её текст дословно для отображения пользователю.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// WrapRepository оборачивает ошибку репозитория; nil остаётся nil.
func WrapRepository(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// IsRepositoryFailure проверяет, пришла ли ошибка из хранилища.
func IsRepositoryFailure(err error) bool {
	var re *RepositoryError
	return errors.As(err, &re)
}
