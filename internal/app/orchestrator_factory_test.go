package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

func TestCreateOrchestrators_AllEntities(t *testing.T) {
	logger := log.WithField("test", "orchestrator")

	deps, err := NewDependencies(context.Background(), DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	orchestrators := createOrchestrators(deps, DefaultConfig())

	if orchestrators == nil {
		t.Fatal("createOrchestrators should not return nil")
	}
	if orchestrators.Customers == nil {
		t.Error("Customers orchestrator should not be nil")
	}
	if orchestrators.SubCategories == nil {
		t.Error("SubCategories orchestrator should not be nil")
	}
	if orchestrators.Units == nil {
		t.Error("Units orchestrator should not be nil")
	}
	if orchestrators.Suppliers == nil {
		t.Error("Suppliers orchestrator should not be nil")
	}
	if orchestrators.Users == nil {
		t.Error("Users orchestrator should not be nil")
	}
}

func TestCreateOrchestrators_CreateFlow(t *testing.T) {
	logger := log.WithField("test", "orchestrator-flow")

	deps, err := NewDependencies(context.Background(), DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	orchestrators := createOrchestrators(deps, DefaultConfig())

	created, err := orchestrators.Units.Create(newTestUnit(), "добавлена единица")
	if err != nil {
		t.Fatalf("Units.Create failed: %v", err)
	}
	if created.ServerID <= 0 {
		t.Errorf("expected assigned ServerID, got %d", created.ServerID)
	}

	listed, err := orchestrators.Units.List("", domain.Scope{})
	if err != nil {
		t.Fatalf("Units.List failed: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 unit after create, got %d", len(listed))
	}
}
