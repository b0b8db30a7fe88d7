package domain

// Repository описывает требования к хранилищу одной сущности
// справочника. Реализации: удалённый источник истины (PostgreSQL),
// локальный кэш (in-memory) и write-through декоратор поверх обоих.
type Repository[T any] interface {
	// Search возвращает записи по поисковой строке и области.
	Search(query string, scope Scope) ([]T, error)
	// GetByID возвращает запись по серверному идентификатору или
	// ErrNotFound.
	GetByID(serverID int64) (T, error)
	// GetByUniqueKey возвращает записи, конфликтующие с ключом
	// (с учётом ParentID и ExcludeID).
	GetByUniqueKey(key UniqueKey) ([]T, error)
	// Create сохраняет новую запись; результат несёт серверный
	// идентификатор, назначенный источником истины.
	Create(rec T) (T, error)
	// Update применяет изменения и возвращает актуальную запись.
	Update(rec T) (T, error)
	// UpdateFlag меняет только флаг активности записи.
	UpdateFlag(serverID int64, active bool) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// ListForCustomer возвращает заказы клиента за бизнес-дату,
	// новые первыми.
	ListForCustomer(customerID int64, businessDate string) ([]Order, error)
	// LastOrder возвращает последний созданный заказ во всей системе
	// или ErrNotFound, если заказов ещё нет.
	LastOrder() (Order, error)
	// Create сохраняет заказ и возвращает запись с назначенным
	// локальным идентификатором.
	Create(o Order) (Order, error)
	// FindByInvoice ищет заказ клиента по номеру накладной.
	FindByInvoice(customerID int64, invoiceNo string) (Order, error)
	// DeleteStaleDrafts удаляет черновики с бизнес-датой раньше
	// before, не более limit за вызов; возвращает число удалённых.
	DeleteStaleDrafts(before string, limit int) (int, error)
}
