package app

import (
	"github.com/vladislavdragonenkov/mdm/internal/domain"
	"github.com/vladislavdragonenkov/mdm/internal/masterdata"
	"github.com/vladislavdragonenkov/mdm/internal/metrics"
)

// Orchestrators объединяет оркестраторы всех справочников.
type Orchestrators struct {
	Customers     *masterdata.Orchestrator[domain.Customer]
	SubCategories *masterdata.Orchestrator[domain.SubCategory]
	Units         *masterdata.Orchestrator[domain.Unit]
	Suppliers     *masterdata.Orchestrator[domain.Supplier]
	Users         *masterdata.Orchestrator[domain.User]
}

// createOrchestrators строит оркестраторы справочников поверх общих
// зависимостей. Все пять делят метрики, журнал изменений и каталог
// пользователей.
func createOrchestrators(deps *Dependencies, cfg Config) *Orchestrators {
	workflowMetrics := metrics.NewWorkflowMetrics()

	build := func() []masterdata.Option {
		return []masterdata.Option{
			masterdata.WithMetrics(workflowMetrics),
			masterdata.WithDirectory(deps.Storage.Directory),
			masterdata.WithChangeLog(deps.Storage.ChangeLog),
			masterdata.WithUniquenessPolicy(cfg.UniquenessPolicy),
		}
	}

	return &Orchestrators{
		Customers: masterdata.NewOrchestrator(
			masterdata.Customers(), deps.Storage.Customers, deps.Notifier, deps.Session, build()...),
		SubCategories: masterdata.NewOrchestrator(
			masterdata.SubCategories(), deps.Storage.SubCategories, deps.Notifier, deps.Session, build()...),
		Units: masterdata.NewOrchestrator(
			masterdata.Units(), deps.Storage.Units, deps.Notifier, deps.Session, build()...),
		Suppliers: masterdata.NewOrchestrator(
			masterdata.Suppliers(), deps.Storage.Suppliers, deps.Notifier, deps.Session, build()...),
		Users: masterdata.NewOrchestrator(
			masterdata.Users(), deps.Storage.Users, deps.Notifier, deps.Session, build()...),
	}
}
