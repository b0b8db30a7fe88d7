package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

type changeLogRepository struct {
	db *sql.DB
}

// NewChangeLogRepository создаёт PostgreSQL-реализацию ChangeLog.
func NewChangeLogRepository(store *Store) domain.ChangeLog {
	return &changeLogRepository{db: store.DB()}
}

func (r *changeLogRepository) Append(e domain.ChangeLogEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO changelog_entries (id, table_name, record_id, action, actor_id, message, occurred)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.ID, e.Table, e.RecordID, string(e.Action), e.ActorID, e.Message, e.At); err != nil {
		return fmt.Errorf("append changelog entry: %w", err)
	}

	return nil
}

func (r *changeLogRepository) List(table string, recordID int64) ([]domain.ChangeLogEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, table_name, record_id, action, actor_id, message, occurred
		FROM changelog_entries
		WHERE table_name = $1 AND record_id = $2
		ORDER BY occurred ASC, id ASC
	`, table, recordID)
	if err != nil {
		return nil, fmt.Errorf("list changelog entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ChangeLogEntry, 0)
	for rows.Next() {
		var (
			e      domain.ChangeLogEntry
			action string
		)
		if err := rows.Scan(&e.ID, &e.Table, &e.RecordID, &action, &e.ActorID, &e.Message, &e.At); err != nil {
			return nil, fmt.Errorf("scan changelog entry: %w", err)
		}
		e.Action = domain.ChangeAction(action)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changelog entries: %w", err)
	}

	return entries, nil
}

var _ domain.ChangeLog = (*changeLogRepository)(nil)
