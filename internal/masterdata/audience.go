package masterdata

import (
	"sort"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// AudienceInput — вход построителя аудитории уведомления.
type AudienceInput struct {
	// ActorID и ActorRole — снимок сессии на момент начала workflow.
	ActorID   int64
	ActorRole domain.Role
	// NewOwner — владеющий агент записи после мутации (0 — записи
	// без владельца).
	NewOwner int64
	// OldOwner — прежний владелец при передаче записи (0 — нет).
	OldOwner int64
	// Admins — серверные идентификаторы администраторов; учитываются
	// только при IncludeAdmins.
	Admins []int64
	// IncludeAdmins включает администраторов в аудиторию (правило
	// сущности, например клиенты).
	IncludeAdmins bool
}

// BuildAudience вычисляет множество получателей уведомления о мутации.
// Функция чистая и детерминированная: без I/O, одинаковый вход даёт
// одинаковый отсортированный результат без дубликатов. Действующий
// пользователь не исключается из аудитории.
func BuildAudience(in AudienceInput) []int64 {
	seen := make(map[int64]struct{})

	if in.NewOwner > 0 {
		seen[in.NewOwner] = struct{}{}
	}
	// Прежний владелец узнаёт, что запись ушла из его зоны.
	if in.OldOwner > 0 && in.OldOwner != in.NewOwner {
		seen[in.OldOwner] = struct{}{}
	}
	if in.IncludeAdmins {
		for _, id := range in.Admins {
			if id > 0 {
				seen[id] = struct{}{}
			}
		}
	}

	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
