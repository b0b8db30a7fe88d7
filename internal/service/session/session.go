package session

import (
	"sync"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// Static — простая реализация domain.Session с фиксированной
// идентичностью, устанавливаемой при входе пользователя на
// устройстве. Потокобезопасна: фоновые задачи оркестратора могут
// читать сессию конкурентно со сменой пользователя.
type Static struct {
	mu     sync.RWMutex
	userID int64
	role   domain.Role
}

// NewStatic создаёт сессию с заданной идентичностью.
func NewStatic(userID int64, role domain.Role) *Static {
	return &Static{userID: userID, role: role}
}

// CurrentUserID возвращает серверный идентификатор текущего
// пользователя.
func (s *Static) CurrentUserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// CurrentRole возвращает роль текущего пользователя.
func (s *Static) CurrentRole() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// SetIdentity заменяет текущую идентичность (повторный вход).
func (s *Static) SetIdentity(userID int64, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.role = role
}

var _ domain.Session = (*Static)(nil)
