package domain

// Role определяет роль пользователя в полевой команде.
type Role string

const (
	// RoleAdministrator — администратор с полной видимостью справочников.
	RoleAdministrator Role = "administrator"
	// RoleSalesman — полевой агент, владеющий своими клиентами.
	RoleSalesman Role = "salesman"
)

// Customer — клиент (торговая точка) в справочнике.
// LocalID назначается локальным кэшем и никогда не уходит на сервер;
// ServerID назначается удалённой системой и используется во всех
// внешних ссылках. ServerID == 0 означает "ещё не синхронизирован".
type Customer struct {
	LocalID    int64  `json:"local_id"`
	ServerID   int64  `json:"server_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	RouteID    int64  `json:"route_id"`
	SalesmanID int64  `json:"salesman_id"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at"`
}

// SubCategory — подкатегория товаров; имя уникально в рамках категории.
type SubCategory struct {
	LocalID    int64  `json:"local_id"`
	ServerID   int64  `json:"server_id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at"`
}

// Unit — единица измерения; код и имя уникальны глобально.
type Unit struct {
	LocalID   int64  `json:"local_id"`
	ServerID  int64  `json:"server_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// Supplier — поставщик; код уникален глобально.
type Supplier struct {
	LocalID   int64  `json:"local_id"`
	ServerID  int64  `json:"server_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// User — пользователь системы (администратор или агент).
type User struct {
	LocalID   int64  `json:"local_id"`
	ServerID  int64  `json:"server_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// Synced возвращает true, если запись была синхронизирована с сервером.
func Synced(serverID int64) bool { return serverID > 0 }
