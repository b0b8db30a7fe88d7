package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// changeLogKey группирует записи журнала по изменённой записи.
type changeLogKey struct {
	table    string
	recordID int64
}

// changeLogInMemory хранит журнал мутаций в памяти.
type changeLogInMemory struct {
	mu      sync.RWMutex
	entries map[changeLogKey][]domain.ChangeLogEntry
}

// NewChangeLog создаёт in-memory реализацию ChangeLog.
func NewChangeLog() domain.ChangeLog {
	return &changeLogInMemory{entries: make(map[changeLogKey][]domain.ChangeLogEntry)}
}

// Append добавляет запись аудита.
func (r *changeLogInMemory) Append(e domain.ChangeLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := changeLogKey{table: e.Table, recordID: e.RecordID}
	r.entries[key] = append(r.entries[key], e)

	sort.Slice(r.entries[key], func(i, j int) bool {
		return r.entries[key][i].At.Before(r.entries[key][j].At)
	})

	return nil
}

// List возвращает записи аудита по таблице и записи в
// хронологическом порядке.
func (r *changeLogInMemory) List(table string, recordID int64) ([]domain.ChangeLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[changeLogKey{table: table, recordID: recordID}]
	result := make([]domain.ChangeLogEntry, len(entries))
	copy(result, entries)
	return result, nil
}

var _ domain.ChangeLog = (*changeLogInMemory)(nil)
