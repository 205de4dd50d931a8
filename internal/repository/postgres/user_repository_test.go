package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/welth-app/welth/internal/domain/user"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)

	tests := []struct {
		name     string
		user     *user.User
		wantErr  bool
		wantCode string
	}{
		{
			name: "create user successfully",
			user: &user.User{Username: "ana", Email: "ana@welth.app", PasswordHash: "h"},
		},
		{
			name: "create another user",
			user: &user.User{Username: "luis", Email: "luis@welth.app", PasswordHash: "h"},
		},
		{
			name:     "duplicate handle",
			user:     &user.User{Username: "ana", Email: "ana@welth.app", PasswordHash: "h"},
			wantErr:  true,
			wantCode: errors.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			err := repo.Create(ctx, tt.user)

			if (err != nil) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if errors.Code(err) != tt.wantCode {
					t.Errorf("Create() code = %s, want %s", errors.Code(err), tt.wantCode)
				}
				return
			}
			if tt.user.ID == "" {
				t.Error("Create() did not set user ID")
			}
			if tt.user.CreatedAt.IsZero() {
				t.Error("Create() did not set CreatedAt")
			}
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &user.User{Username: "ana", Email: "ana@welth.app", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "get existing user", id: u.ID},
		{name: "get non-existent user", id: "missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetByID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if errors.Code(err) != errors.ErrCodeNotFound {
					t.Errorf("GetByID() code = %s, want %s", errors.Code(err), errors.ErrCodeNotFound)
				}
				return
			}
			if got.Username != "ana" || got.PasswordHash != "hash" {
				t.Errorf("GetByID() = %+v", got)
			}
			if !got.CreatedAt.Equal(u.CreatedAt.Truncate(time.Microsecond)) {
				t.Errorf("GetByID() created_at = %v, want %v", got.CreatedAt, u.CreatedAt)
			}
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &user.User{Username: "ana", Email: "ana@welth.app", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "ana@welth.app")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() id = %s, want %s", got.ID, u.ID)
	}

	if _, err := repo.GetByEmail(ctx, "nadie@welth.app"); errors.Code(err) != errors.ErrCodeNotFound {
		t.Errorf("GetByEmail() missing code = %s, want %s", errors.Code(err), errors.ErrCodeNotFound)
	}
}
