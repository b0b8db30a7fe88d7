package domain

import "time"

// Scope ограничивает поиск по справочнику. Нулевые значения означают
// отсутствие фильтра.
type Scope struct {
	// RouteID фильтрует клиентов по маршруту.
	RouteID int64
	// ParentID фильтрует записи по родительской сущности
	// (например, подкатегории по категории).
	ParentID int64
}

// UniqueKey описывает кандидата для проверки уникальности.
type UniqueKey struct {
	// Code — кандидат кода; пустая строка, если код не проверяется.
	Code string
	// Name — кандидат имени; пустая строка, если имя не проверяется.
	Name string
	// ParentID сужает проверку до области родителя (0 — глобально).
	ParentID int64
	// ExcludeID исключает собственную запись при update (0 — ничего
	// не исключать).
	ExcludeID int64
}

// Display возвращает непустую часть ключа для сообщений об ошибках.
func (k UniqueKey) Display() string {
	if k.Code != "" {
		return k.Code
	}
	return k.Name
}

// ChangeRef указывает на изменённую запись в уведомлении.
// RecordID всегда серверный идентификатор, никогда локальный.
type ChangeRef struct {
	Table    string `json:"table"`
	RecordID int64  `json:"record_id"`
}

// Notification — полезная нагрузка одного уведомления об изменении.
type Notification struct {
	ID         string      `json:"id"`
	Recipients []int64     `json:"recipients"`
	Refs       []ChangeRef `json:"refs"`
	Message    string      `json:"message"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Notifier отправляет уведомление получателям. Доставка асинхронная и
// best-effort: вызывающий не ждёт подтверждения, ошибка не фатальна.
type Notifier interface {
	Send(recipients []int64, refs []ChangeRef, message string) error
}

// Session предоставляет идентичность текущего пользователя.
type Session interface {
	CurrentUserID() int64
	CurrentRole() Role
}

// Clock выдаёт текущие метки времени в каноническом текстовом формате
// хранилища.
type Clock interface {
	// Now возвращает момент времени в формате "2006-01-02 15:04:05".
	Now() string
	// BusinessDate возвращает бизнес-дату в формате "2006-01-02".
	BusinessDate() string
}

// Directory отвечает на вопросы о пользователях системы
// (нужен построителю аудитории для административной рассылки).
type Directory interface {
	ListByRole(role Role) ([]User, error)
}

// ChangeAction описывает вид мутации для журнала изменений.
type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "create"
	ChangeActionUpdate ChangeAction = "update"
	ChangeActionFlag   ChangeAction = "flag"
)

// ChangeLogEntry — запись аудита об одной мутации справочника.
type ChangeLogEntry struct {
	ID       string       `json:"id"`
	Table    string       `json:"table"`
	RecordID int64        `json:"record_id"`
	Action   ChangeAction `json:"action"`
	ActorID  int64        `json:"actor_id"`
	Message  string       `json:"message"`
	At       time.Time    `json:"at"`
}

// ChangeLog хранит журнал мутаций справочников.
type ChangeLog interface {
	Append(e ChangeLogEntry) error
	List(table string, recordID int64) ([]ChangeLogEntry, error)
}

// OutboxMessage хранит событие для последующей публикации наружу.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxPublisher публикует события из outbox; должен быть идемпотентным.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}

// OutboxRepository сохраняет события до публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}
