package session

import (
	"time"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// Канонические текстовые форматы хранилища.
const (
	TimestampLayout    = "2006-01-02 15:04:05"
	BusinessDateLayout = "2006-01-02"
)

// SystemClock реализует domain.Clock поверх системного времени (UTC).
type SystemClock struct{}

// NewSystemClock возвращает часы на системном времени.
func NewSystemClock() SystemClock { return SystemClock{} }

// Now возвращает текущий момент в каноническом текстовом формате.
func (SystemClock) Now() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// BusinessDate возвращает текущую бизнес-дату.
func (SystemClock) BusinessDate() string {
	return time.Now().UTC().Format(BusinessDateLayout)
}

var _ domain.Clock = SystemClock{}
