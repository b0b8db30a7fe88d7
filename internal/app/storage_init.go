package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
	"github.com/vladislavdragonenkov/mdm/internal/storage/cached"
	"github.com/vladislavdragonenkov/mdm/internal/storage/memory"
	"github.com/vladislavdragonenkov/mdm/internal/storage/postgres"
)

// storageBundle собирает все репозитории за одним фасадом, чтобы
// остальной код не зависел от выбранного хранилища.
type storageBundle struct {
	Customers     domain.Repository[domain.Customer]
	SubCategories domain.Repository[domain.SubCategory]
	Units         domain.Repository[domain.Unit]
	Suppliers     domain.Repository[domain.Supplier]
	Users         domain.Repository[domain.User]

	Orders    domain.OrderRepository
	Outbox    domain.OutboxRepository
	ChangeLog domain.ChangeLog
	Directory domain.Directory

	store *postgres.Store
}

// Close освобождает подключения хранилища.
func (b *storageBundle) Close() error {
	if b == nil || b.store == nil {
		return nil
	}
	return b.store.Close()
}

// Ping проверяет доступность источника истины. Для in-memory
// хранилища всегда успешен.
func (b *storageBundle) Ping(ctx context.Context) error {
	if b == nil || b.store == nil {
		return nil
	}
	return b.store.Ping(ctx)
}

// initStorage выбирает хранилище: in-memory для автономной работы,
// PostgreSQL с write-through кэшем поверх in-memory для основного режима.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageBundle, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return initMemoryStorage(), nil
	case StorageDriverPostgres:
		return initPostgresStorage(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func initMemoryStorage() *storageBundle {
	users := memory.NewUserRepository()
	return &storageBundle{
		Customers:     memory.NewCustomerRepository(),
		SubCategories: memory.NewSubCategoryRepository(),
		Units:         memory.NewUnitRepository(),
		Suppliers:     memory.NewSupplierRepository(),
		Users:         users,
		Orders:        memory.NewOrderRepository(),
		Outbox:        memory.NewOutboxRepository(),
		ChangeLog:     memory.NewChangeLog(),
		Directory:     users,
	}
}

func initPostgresStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageBundle, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres storage requires MDM_POSTGRES_DSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres storage: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	cacheLogger := logger.WithField("component", "cached-repository")
	users := postgres.NewUserRepository(store)

	return &storageBundle{
		Customers:     cached.New[domain.Customer](postgres.NewCustomerRepository(store), memory.NewCustomerRepository(), cacheLogger),
		SubCategories: cached.New[domain.SubCategory](postgres.NewSubCategoryRepository(store), memory.NewSubCategoryRepository(), cacheLogger),
		Units:         cached.New[domain.Unit](postgres.NewUnitRepository(store), memory.NewUnitRepository(), cacheLogger),
		Suppliers:     cached.New[domain.Supplier](postgres.NewSupplierRepository(store), memory.NewSupplierRepository(), cacheLogger),
		Users:         cached.New[domain.User](users, memory.NewUserRepository(), cacheLogger),
		Orders:        postgres.NewOrderRepository(store),
		Outbox:        postgres.NewOutboxRepository(store),
		ChangeLog:     postgres.NewChangeLogRepository(store),
		Directory:     users,
		store:         store,
	}, nil
}
