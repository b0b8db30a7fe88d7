// Пакет cached реализует write-through декоратор репозитория:
// мутации идут в удалённый источник истины и зеркалируются в
// локальный кэш, чтение переживает недоступность удалённой стороны
// за счёт кэша.
package cached

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// Repository объединяет удалённый репозиторий и локальный кэш одной
// сущности. Серверные идентификаторы назначает только удалённая
// сторона, локальные — только кэш; ошибка кэша никогда не ломает
// успешную удалённую мутацию.
type Repository[T any] struct {
	remote domain.Repository[T]
	cache  domain.Repository[T]
	logger *log.Entry
}

// New создаёт write-through репозиторий.
func New[T any](remote, cache domain.Repository[T], logger *log.Entry) *Repository[T] {
	if logger == nil {
		logger = log.WithField("component", "cached-repository")
	}
	return &Repository[T]{remote: remote, cache: cache, logger: logger}
}

// Search спрашивает удалённую сторону; при её недоступности отвечает
// из локального кэша (офлайн-чтение полевого клиента).
func (r *Repository[T]) Search(query string, scope domain.Scope) ([]T, error) {
	items, err := r.remote.Search(query, scope)
	if err == nil {
		return items, nil
	}

	r.logger.WithError(err).Warn("remote search failed, serving from local cache")
	cachedItems, cacheErr := r.cache.Search(query, scope)
	if cacheErr != nil {
		// Кэш тоже недоступен: отдаём исходную удалённую ошибку.
		return nil, err
	}
	return cachedItems, nil
}

// GetByID спрашивает удалённую сторону с фолбэком в кэш.
func (r *Repository[T]) GetByID(serverID int64) (T, error) {
	rec, err := r.remote.GetByID(serverID)
	if err == nil || err == domain.ErrNotFound {
		return rec, err
	}

	r.logger.WithError(err).WithField("server_id", serverID).
		Warn("remote lookup failed, serving from local cache")
	return r.cache.GetByID(serverID)
}

// GetByUniqueKey всегда спрашивает удалённую сторону: проверка
// уникальности против устаревшего кэша бессмысленна.
func (r *Repository[T]) GetByUniqueKey(key domain.UniqueKey) ([]T, error) {
	return r.remote.GetByUniqueKey(key)
}

// Create создаёт запись удалённо и зеркалирует результат в кэш.
// Возвращается запись с серверным идентификатором источника истины и,
// если кэш доступен, локальным идентификатором кэша.
func (r *Repository[T]) Create(rec T) (T, error) {
	created, err := r.remote.Create(rec)
	if err != nil {
		var zero T
		return zero, err
	}

	mirrored, cacheErr := r.cache.Create(created)
	if cacheErr != nil {
		r.logger.WithError(cacheErr).Warn("failed to mirror created record into local cache")
		return created, nil
	}
	return mirrored, nil
}

// Update обновляет запись удалённо и зеркалирует изменения в кэш.
func (r *Repository[T]) Update(rec T) (T, error) {
	updated, err := r.remote.Update(rec)
	if err != nil {
		var zero T
		return zero, err
	}

	if _, cacheErr := r.cache.Update(updated); cacheErr != nil {
		r.logger.WithError(cacheErr).Warn("failed to mirror updated record into local cache")
	}
	return updated, nil
}

// UpdateFlag меняет флаг удалённо и зеркалирует его в кэш.
func (r *Repository[T]) UpdateFlag(serverID int64, active bool) error {
	if err := r.remote.UpdateFlag(serverID, active); err != nil {
		return err
	}

	if cacheErr := r.cache.UpdateFlag(serverID, active); cacheErr != nil {
		r.logger.WithError(cacheErr).WithField("server_id", serverID).
			Warn("failed to mirror flag update into local cache")
	}
	return nil
}
