package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/mdm/internal/domain"
)

func TestNewDependencies(t *testing.T) {
	logger := log.WithField("test", "dependencies")

	deps, err := NewDependencies(context.Background(), DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	if deps.Storage == nil {
		t.Fatal("Storage should not be nil")
	}
	if deps.Session == nil {
		t.Error("Session should not be nil")
	}
	if deps.Clock == nil {
		t.Error("Clock should not be nil")
	}
	if deps.Notifier == nil {
		t.Error("Notifier should not be nil")
	}
	if deps.Logger == nil {
		t.Error("Logger should not be nil")
	}
}

func TestNewDependencies_WithNilLogger(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	if deps.Logger == nil {
		t.Error("Logger should be initialized even when nil is passed")
	}
}

func TestNewDependencies_MemoryStorageWorks(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	created, err := deps.Storage.Customers.Create(newTestCustomer())
	if err != nil {
		t.Fatalf("Customers.Create failed: %v", err)
	}
	if created.ServerID <= 0 {
		t.Errorf("expected assigned ServerID, got %d", created.ServerID)
	}

	if err := deps.Storage.Ping(context.Background()); err != nil {
		t.Errorf("Ping on memory storage should succeed: %v", err)
	}
}

func TestNewDependencies_SessionFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SessionUserID = 77
	cfg.SessionRole = domain.RoleSalesman

	deps, err := NewDependencies(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	if got := deps.Session.CurrentUserID(); got != 77 {
		t.Errorf("expected session user 77, got %d", got)
	}
	if got := deps.Session.CurrentRole(); got != domain.RoleSalesman {
		t.Errorf("expected role %s, got %s", domain.RoleSalesman, got)
	}
}

func TestNewDependencies_IndependentInstances(t *testing.T) {
	deps1, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps1.Close()

	deps2, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps2.Close()

	if deps1 == deps2 {
		t.Error("NewDependencies should create independent instances")
	}
	if deps1.Storage == deps2.Storage {
		t.Error("Storage bundles should be independent")
	}
}
