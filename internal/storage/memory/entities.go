package memory

import (
	"strings"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

// CustomerRepository — in-memory хранилище клиентов.
type CustomerRepository struct{ *repository[domain.Customer] }

// NewCustomerRepository создаёт in-memory репозиторий клиентов.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{newRepository(entitySpec[domain.Customer]{
		localID:  func(c domain.Customer) int64 { return c.LocalID },
		serverID: func(c domain.Customer) int64 { return c.ServerID },
		setLocalID: func(c domain.Customer, id int64) domain.Customer {
			c.LocalID = id
			return c
		},
		setServerID: func(c domain.Customer, id int64) domain.Customer {
			c.ServerID = id
			return c
		},
		matches: func(c domain.Customer, q string, scope domain.Scope) bool {
			if scope.RouteID != 0 && c.RouteID != scope.RouteID {
				return false
			}
			return containsFold(c.Name, q) || containsFold(c.Code, q)
		},
		conflicts: func(c domain.Customer, key domain.UniqueKey) bool {
			return key.Code != "" && strings.EqualFold(c.Code, key.Code)
		},
		setActive: func(c domain.Customer, active bool) domain.Customer {
			c.Active = active
			return c
		},
	})}
}

// SubCategoryRepository — in-memory хранилище подкатегорий.
type SubCategoryRepository struct {
	*repository[domain.SubCategory]
}

// NewSubCategoryRepository создаёт in-memory репозиторий подкатегорий.
func NewSubCategoryRepository() *SubCategoryRepository {
	return &SubCategoryRepository{newRepository(entitySpec[domain.SubCategory]{
		localID:  func(s domain.SubCategory) int64 { return s.LocalID },
		serverID: func(s domain.SubCategory) int64 { return s.ServerID },
		setLocalID: func(s domain.SubCategory, id int64) domain.SubCategory {
			s.LocalID = id
			return s
		},
		setServerID: func(s domain.SubCategory, id int64) domain.SubCategory {
			s.ServerID = id
			return s
		},
		matches: func(s domain.SubCategory, q string, scope domain.Scope) bool {
			if scope.ParentID != 0 && s.CategoryID != scope.ParentID {
				return false
			}
			return containsFold(s.Name, q)
		},
		conflicts: func(s domain.SubCategory, key domain.UniqueKey) bool {
			// Имя уникально только внутри родительской категории.
			return key.Name != "" && strings.EqualFold(s.Name, key.Name) &&
				s.CategoryID == key.ParentID
		},
		setActive: func(s domain.SubCategory, active bool) domain.SubCategory {
			s.Active = active
			return s
		},
	})}
}

// UnitRepository — in-memory хранилище единиц измерения.
type UnitRepository struct{ *repository[domain.Unit] }

// NewUnitRepository создаёт in-memory репозиторий единиц измерения.
func NewUnitRepository() *UnitRepository {
	return &UnitRepository{newRepository(entitySpec[domain.Unit]{
		localID:  func(u domain.Unit) int64 { return u.LocalID },
		serverID: func(u domain.Unit) int64 { return u.ServerID },
		setLocalID: func(u domain.Unit, id int64) domain.Unit {
			u.LocalID = id
			return u
		},
		setServerID: func(u domain.Unit, id int64) domain.Unit {
			u.ServerID = id
			return u
		},
		matches: func(u domain.Unit, q string, _ domain.Scope) bool {
			return containsFold(u.Name, q) || containsFold(u.Code, q)
		},
		conflicts: func(u domain.Unit, key domain.UniqueKey) bool {
			// Код и имя уникальны глобально, конфликт по любому из них.
			if key.Code != "" && strings.EqualFold(u.Code, key.Code) {
				return true
			}
			return key.Name != "" && strings.EqualFold(u.Name, key.Name)
		},
		setActive: func(u domain.Unit, active bool) domain.Unit {
			u.Active = active
			return u
		},
	})}
}

// SupplierRepository — in-memory хранилище поставщиков.
type SupplierRepository struct{ *repository[domain.Supplier] }

// NewSupplierRepository создаёт in-memory репозиторий поставщиков.
func NewSupplierRepository() *SupplierRepository {
	return &SupplierRepository{newRepository(entitySpec[domain.Supplier]{
		localID:  func(s domain.Supplier) int64 { return s.LocalID },
		serverID: func(s domain.Supplier) int64 { return s.ServerID },
		setLocalID: func(s domain.Supplier, id int64) domain.Supplier {
			s.LocalID = id
			return s
		},
		setServerID: func(s domain.Supplier, id int64) domain.Supplier {
			s.ServerID = id
			return s
		},
		matches: func(s domain.Supplier, q string, _ domain.Scope) bool {
			return containsFold(s.Name, q) || containsFold(s.Code, q)
		},
		conflicts: func(s domain.Supplier, key domain.UniqueKey) bool {
			return key.Code != "" && strings.EqualFold(s.Code, key.Code)
		},
		setActive: func(s domain.Supplier, active bool) domain.Supplier {
			s.Active = active
			return s
		},
	})}
}

// UserRepository — in-memory хранилище пользователей; дополнительно
// реализует domain.Directory для построителя аудитории.
type UserRepository struct{ *repository[domain.User] }

// NewUserRepository создаёт in-memory репозиторий пользователей.
func NewUserRepository() *UserRepository {
	return &UserRepository{newRepository(entitySpec[domain.User]{
		localID:  func(u domain.User) int64 { return u.LocalID },
		serverID: func(u domain.User) int64 { return u.ServerID },
		setLocalID: func(u domain.User, id int64) domain.User {
			u.LocalID = id
			return u
		},
		setServerID: func(u domain.User, id int64) domain.User {
			u.ServerID = id
			return u
		},
		matches: func(u domain.User, q string, _ domain.Scope) bool {
			return containsFold(u.Name, q) || containsFold(u.Code, q)
		},
		conflicts: func(u domain.User, key domain.UniqueKey) bool {
			return key.Code != "" && strings.EqualFold(u.Code, key.Code)
		},
		setActive: func(u domain.User, active bool) domain.User {
			u.Active = active
			return u
		},
	})}
}

// ListByRole возвращает активных пользователей с заданной ролью.
func (r *UserRepository) ListByRole(role domain.Role) ([]domain.User, error) {
	all, err := r.Search("", domain.Scope{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.Role == role && u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

var (
	_ domain.Repository[domain.Customer]    = (*CustomerRepository)(nil)
	_ domain.Repository[domain.SubCategory] = (*SubCategoryRepository)(nil)
	_ domain.Repository[domain.Unit]        = (*UnitRepository)(nil)
	_ domain.Repository[domain.Supplier]    = (*SupplierRepository)(nil)
	_ domain.Repository[domain.User]        = (*UserRepository)(nil)
	_ domain.Directory                      = (*UserRepository)(nil)
)
