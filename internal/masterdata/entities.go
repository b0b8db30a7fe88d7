package masterdata

import "github.com/vladislavdragonenkov/mdm/internal/domain"

// Имена таблиц в ссылках уведомлений; совпадают с таблицами
// удалённого хранилища.
const (
	TableCustomers     = "customers"
	TableSubCategories = "sub_categories"
	TableUnits         = "units"
	TableSuppliers     = "suppliers"
	TableUsers         = "users"
)

// Customers — дескриптор клиентов: код уникален глобально, запись
// принадлежит агенту, администраторы получают все уведомления.
func Customers() Descriptor[domain.Customer] {
	return Descriptor[domain.Customer]{
		Table:    TableCustomers,
		Label:    "customer",
		ServerID: func(c domain.Customer) int64 { return c.ServerID },
		Key: func(c domain.Customer) domain.UniqueKey {
			return domain.UniqueKey{Code: c.Code}
		},
		Validate: func(c domain.Customer) error {
			if c.Code == "" {
				return domain.ErrCodeRequired
			}
			return nil
		},
		Owner:         func(c domain.Customer) int64 { return c.SalesmanID },
		IncludeAdmins: true,
	}
}

// SubCategories — дескриптор подкатегорий: имя уникально в рамках
// родительской категории, владельца нет.
func SubCategories() Descriptor[domain.SubCategory] {
	return Descriptor[domain.SubCategory]{
		Table:    TableSubCategories,
		Label:    "sub-category",
		ServerID: func(s domain.SubCategory) int64 { return s.ServerID },
		Key: func(s domain.SubCategory) domain.UniqueKey {
			return domain.UniqueKey{Name: s.Name, ParentID: s.CategoryID}
		},
		Validate: func(s domain.SubCategory) error {
			if s.Name == "" {
				return domain.ErrNameRequired
			}
			return nil
		},
		Owner: func(domain.SubCategory) int64 { return 0 },
	}
}

// Units — дескриптор единиц измерения: и код, и имя уникальны
// глобально.
func Units() Descriptor[domain.Unit] {
	return Descriptor[domain.Unit]{
		Table:    TableUnits,
		Label:    "unit",
		ServerID: func(u domain.Unit) int64 { return u.ServerID },
		Key: func(u domain.Unit) domain.UniqueKey {
			return domain.UniqueKey{Code: u.Code, Name: u.Name}
		},
		Validate: func(u domain.Unit) error {
			if u.Code == "" {
				return domain.ErrCodeRequired
			}
			if u.Name == "" {
				return domain.ErrNameRequired
			}
			return nil
		},
		Owner: func(domain.Unit) int64 { return 0 },
	}
}

// Suppliers — дескриптор поставщиков: код уникален глобально.
func Suppliers() Descriptor[domain.Supplier] {
	return Descriptor[domain.Supplier]{
		Table:    TableSuppliers,
		Label:    "supplier",
		ServerID: func(s domain.Supplier) int64 { return s.ServerID },
		Key: func(s domain.Supplier) domain.UniqueKey {
			return domain.UniqueKey{Code: s.Code}
		},
		Validate: func(s domain.Supplier) error {
			if s.Code == "" {
				return domain.ErrCodeRequired
			}
			return nil
		},
		Owner: func(domain.Supplier) int64 { return 0 },
	}
}

// Users — дескриптор пользователей: код уникален глобально.
func Users() Descriptor[domain.User] {
	return Descriptor[domain.User]{
		Table:    TableUsers,
		Label:    "user",
		ServerID: func(u domain.User) int64 { return u.ServerID },
		Key: func(u domain.User) domain.UniqueKey {
			return domain.UniqueKey{Code: u.Code}
		},
		Validate: func(u domain.User) error {
			if u.Code == "" {
				return domain.ErrCodeRequired
			}
			return nil
		},
		Owner: func(domain.User) int64 { return 0 },
	}
}
