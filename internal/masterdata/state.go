package masterdata

import "sync"

// Snapshot — неизменяемый срез наблюдаемого состояния оркестратора:
// индикатор загрузки, сообщение об ошибке и текущий список записей.
type Snapshot[T any] struct {
	Loading      bool
	ErrorMessage string
	Items        []T
}

// State — контейнер наблюдаемого состояния с подпиской на изменения.
// Мутируется только владеющим оркестратором; каждое изменение
// рассылается подписчикам как копия снапшота.
type State[T any] struct {
	mu     sync.Mutex
	snap   Snapshot[T]
	nextID int
	subs   map[int]func(Snapshot[T])
}

// NewState создаёт пустое состояние без подписчиков.
func NewState[T any]() *State[T] {
	return &State[T]{subs: make(map[int]func(Snapshot[T]))}
}

// Subscribe регистрирует обработчик изменений и возвращает функцию
// отписки. Обработчик вызывается синхронно при каждой рассылке.
func (s *State[T]) Subscribe(fn func(Snapshot[T])) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot возвращает копию текущего состояния.
func (s *State[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySnapshotLocked()
}

// begin помечает начало workflow: поднимает loading, сбрасывает
// прошлую ошибку и рассылает изменение.
func (s *State[T]) begin() {
	s.mu.Lock()
	s.snap.Loading = true
	s.snap.ErrorMessage = ""
	s.broadcastLocked()
}

// finish завершает workflow: снимает loading, фиксирует ошибку (или
// её отсутствие) и рассылает изменение.
func (s *State[T]) finish(errMessage string) {
	s.mu.Lock()
	s.snap.Loading = false
	s.snap.ErrorMessage = errMessage
	s.broadcastLocked()
}

// setItems заменяет список записей и рассылает изменение.
func (s *State[T]) setItems(items []T) {
	s.mu.Lock()
	s.snap.Items = items
	s.broadcastLocked()
}

// broadcastLocked копирует снапшот и доставляет его подписчикам вне
// критической секции. Вызывается с удерживаемым s.mu и освобождает его.
func (s *State[T]) broadcastLocked() {
	snap := s.copySnapshotLocked()
	subs := make([]func(Snapshot[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *State[T]) copySnapshotLocked() Snapshot[T] {
	out := s.snap
	out.Items = make([]T, len(s.snap.Items))
	copy(out.Items, s.snap.Items)
	return out
}
