package masterdata

import "github.com/vladislavdragonenkov/mdm/internal/domain"

// Descriptor описывает переменную часть сущности справочника:
// имя таблицы для ссылок в уведомлениях, человекочитаемую метку для
// сообщений об ошибках, извлечение серверного идентификатора, ключа
// уникальности и владельца, а также правило административной
// видимости. Один generic-оркестратор инстанцируется с дескриптором
// на каждую сущность.
type Descriptor[T any] struct {
	// Table — имя таблицы в ChangeRef уведомления.
	Table string
	// Label используется в сообщениях об ошибках ("customer code ...").
	Label string
	// ServerID извлекает серверный идентификатор записи (0 — нет).
	ServerID func(rec T) int64
	// Key строит ключ уникальности кандидата (без ExcludeID; его
	// подставляет оркестратор при update).
	Key func(rec T) domain.UniqueKey
	// Validate проверяет обязательные поля кандидата до проверки
	// уникальности (nil — без проверки).
	Validate func(rec T) error
	// Owner извлекает владеющего агента (0 — сущность без владельца).
	Owner func(rec T) int64
	// IncludeAdmins включает администраторов в аудиторию уведомлений.
	IncludeAdmins bool
}
