package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/bookforge/bookforge-backend/internal/data/repos/testutil"
	"github.com/bookforge/bookforge-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*domain.User{
		{ID: uuid.New(), Email: "userrepo@example.com"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	exists, err := repo.EmailExists(ctx, tx, "userrepo@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatal("EmailExists: expected true")
	}

	exists, err = repo.EmailExists(ctx, tx, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if exists {
		t.Fatal("EmailExists: expected false")
	}
}

func TestFindOrCreateByEmail(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	first, err := repo.FindOrCreateByEmail(ctx, tx, "findorcreate@example.com")
	if err != nil {
		t.Fatalf("FindOrCreateByEmail: %v", err)
	}
	second, err := repo.FindOrCreateByEmail(ctx, tx, "findorcreate@example.com")
	if err != nil {
		t.Fatalf("FindOrCreateByEmail (second): %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same user, got %s and %s", first.ID, second.ID)
	}
}
