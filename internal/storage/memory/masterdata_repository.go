package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// entitySpec описывает доступ к полям сущности, нужный generic
// in-memory репозиторию.
type entitySpec[T any] struct {
	localID     func(T) int64
	setLocalID  func(T, int64) T
	serverID    func(T) int64
	setServerID func(T, int64) T
	matches     func(T, string, domain.Scope) bool
	conflicts   func(T, domain.UniqueKey) bool
	setActive   func(T, bool) T
}

// repository — in-memory реализация domain.Repository. Служит
// локальным кэшем (локальные идентификаторы назначаются здесь) и
// самостоятельным источником истины в тестах и локальной разработке
// (серверный идентификатор назначается, если записи его ещё не дали).
type repository[T any] struct {
	mu         sync.RWMutex
	spec       entitySpec[T]
	byLocal    map[int64]T
	nextLocal  int64
	nextServer int64
}

func newRepository[T any](spec entitySpec[T]) *repository[T] {
	return &repository[T]{
		spec:       spec,
		byLocal:    make(map[int64]T),
		nextLocal:  1,
		nextServer: 1,
	}
}

// Search возвращает записи, подходящие под строку поиска и область,
// в порядке локальных идентификаторов.
func (r *repository[T]) Search(query string, scope domain.Scope) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.byLocal))
	for _, rec := range r.byLocal {
		if r.spec.matches(rec, strings.ToLower(query), scope) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.spec.localID(out[i]) < r.spec.localID(out[j])
	})
	return out, nil
}

// GetByID возвращает запись по серверному идентификатору.
func (r *repository[T]) GetByID(serverID int64) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.byLocal {
		if r.spec.serverID(rec) == serverID {
			return rec, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

// GetByUniqueKey возвращает записи, конфликтующие с ключом.
func (r *repository[T]) GetByUniqueKey(key domain.UniqueKey) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []T
	for _, rec := range r.byLocal {
		if key.ExcludeID != 0 && r.spec.serverID(rec) == key.ExcludeID {
			continue
		}
		if r.spec.conflicts(rec, key) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Create сохраняет запись, назначая локальный идентификатор и, если
// его ещё нет, серверный.
func (r *repository[T]) Create(rec T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec = r.spec.setLocalID(rec, r.nextLocal)
	r.nextLocal++

	if r.spec.serverID(rec) == 0 {
		rec = r.spec.setServerID(rec, r.nextServer)
		r.nextServer++
	} else if r.spec.serverID(rec) >= r.nextServer {
		r.nextServer = r.spec.serverID(rec) + 1
	}

	r.byLocal[r.spec.localID(rec)] = rec
	return rec, nil
}

// Update перезаписывает запись с тем же серверным идентификатором.
func (r *repository[T]) Update(rec T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	serverID := r.spec.serverID(rec)
	for localID, current := range r.byLocal {
		if r.spec.serverID(current) == serverID {
			rec = r.spec.setLocalID(rec, localID)
			r.byLocal[localID] = rec
			return rec, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

// UpdateFlag меняет флаг активности записи.
func (r *repository[T]) UpdateFlag(serverID int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for localID, current := range r.byLocal {
		if r.spec.serverID(current) == serverID {
			r.byLocal[localID] = r.spec.setActive(current, active)
			return nil
		}
	}
	return domain.ErrNotFound
}

func containsFold(s, loweredQuery string) bool {
	if loweredQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), loweredQuery)
}
