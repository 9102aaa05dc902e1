//go:build integration

// File: internal/infra/db/postgres/employee_repo_test.go
package postgres

import (
	"context"
	"errors"
	"testing"

	"chatwarden/internal/domain"
	"chatwarden/internal/domain/model"
)

func TestEmployeeRepo_CreateAndLookups(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewEmployeeRepo(testPool)

	owner := seedOwner(t, "acme", true)
	tgID := int64(555)
	username := "nia"
	created, err := repo.Create(ctx, nil, &model.Employee{
		UserID:           owner,
		TelegramUserID:   &tgID,
		TelegramUsername: &username,
		FullName:         "Nia N.",
		IsActive:         true,
		IsExternal:       true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.EmployeeID == 0 {
		t.Fatalf("expected an assigned employee_id")
	}

	byID, err := repo.ByTelegramUserID(ctx, nil, owner, tgID)
	if err != nil {
		t.Fatalf("ByTelegramUserID: %v", err)
	}
	if byID.EmployeeID != created.EmployeeID {
		t.Errorf("ByTelegramUserID returned a different row: %+v", byID)
	}

	byUsername, err := repo.ByTelegramUsername(ctx, nil, owner, "NIA")
	if err != nil {
		t.Fatalf("ByTelegramUsername (case-insensitive): %v", err)
	}
	if byUsername.EmployeeID != created.EmployeeID {
		t.Errorf("expected case-insensitive username match")
	}

	if _, err := repo.ByTelegramUserID(ctx, nil, owner, 999999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for an unseeded telegram_user_id, got %v", err)
	}
}

func TestEmployeeRepo_Update(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewEmployeeRepo(testPool)

	owner := seedOwner(t, "acme", true)
	tgID := int64(1)
	created, err := repo.Create(ctx, nil, &model.Employee{
		UserID: owner, TelegramUserID: &tgID, FullName: "Old", IsActive: true, IsExternal: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.FullName = "New Name"
	created.IsActive = false
	if err := repo.Update(ctx, nil, created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := repo.ByID(ctx, nil, owner, created.EmployeeID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if reloaded.FullName != "New Name" || reloaded.IsActive {
		t.Errorf("update did not persist: %+v", reloaded)
	}
}

func TestEmployeeRepo_ActiveByOwner(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewEmployeeRepo(testPool)

	owner := seedOwner(t, "acme", true)
	idA, idB := int64(1), int64(2)
	if _, err := repo.Create(ctx, nil, &model.Employee{UserID: owner, TelegramUserID: &idA, IsActive: true}); err != nil {
		t.Fatalf("seed active: %v", err)
	}
	if _, err := repo.Create(ctx, nil, &model.Employee{UserID: owner, TelegramUserID: &idB, IsActive: false}); err != nil {
		t.Fatalf("seed inactive: %v", err)
	}

	active, err := repo.ActiveByOwner(ctx, nil, owner)
	if err != nil {
		t.Fatalf("ActiveByOwner: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active employee, got %d", len(active))
	}
}
