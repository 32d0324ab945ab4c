package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCreateUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, db, "Ana")
	if user.ID == uuid.Nil {
		t.Error("expected user ID to be set")
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, "Ben")

	got, err := db.GetUserByEmail(ctx, strings.ToUpper(user.Email))
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %v, want %v", got.ID, user.ID)
	}
	if got.Name() != "Ben" {
		t.Errorf("Name() = %q, want Ben", got.Name())
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.GetUserByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}
