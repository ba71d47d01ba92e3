package repository

import (
	"context"
	"testing"
	"time"

	"github.com/KC-99/workmatch/internal/model"
)

func TestMemorySessionRepo_CreateAndFind(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	s := &model.Session{ID: "abc", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByID(ctx, "abc")
	if err != nil || got == nil || got.UserID != 1 {
		t.Fatalf("FindByID = %+v, %v", got, err)
	}
}

// 期限切れセッションはnilを返すことを検証
func TestMemorySessionRepo_FindByID_Expired(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	_ = repo.Create(ctx, &model.Session{ID: "old", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)})

	got, err := repo.FindByID(ctx, "old")
	if err != nil || got != nil {
		t.Errorf("FindByID = %+v, %v; want nil, nil", got, err)
	}
}

func TestMemorySessionRepo_DeleteByUserID(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	_ = repo.Create(ctx, &model.Session{ID: "a", UserID: 1, ExpiresAt: exp})
	_ = repo.Create(ctx, &model.Session{ID: "b", UserID: 1, ExpiresAt: exp})
	_ = repo.Create(ctx, &model.Session{ID: "c", UserID: 2, ExpiresAt: exp})

	if err := repo.DeleteByUserID(ctx, 1); err != nil {
		t.Fatalf("DeleteByUserID: %v", err)
	}
	for _, id := range []string{"a", "b"} {
		if got, _ := repo.FindByID(ctx, id); got != nil {
			t.Errorf("session %q should be deleted", id)
		}
	}
	if got, _ := repo.FindByID(ctx, "c"); got == nil {
		t.Error("session c should remain")
	}
}

// DeleteByIDは存在しないIDでもエラーにならないことを検証
func TestMemorySessionRepo_DeleteByID_Idempotent(t *testing.T) {
	repo := NewMemorySessionRepo()
	if err := repo.DeleteByID(context.Background(), "missing"); err != nil {
		t.Errorf("DeleteByID: %v", err)
	}
}

func TestMemorySessionRepo_DeleteExpired(t *testing.T) {
	repo := NewMemorySessionRepo()
	ctx := context.Background()

	_ = repo.Create(ctx, &model.Session{ID: "live", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)})
	_ = repo.Create(ctx, &model.Session{ID: "dead1", UserID: 1, ExpiresAt: time.Now().Add(-time.Hour)})
	_ = repo.Create(ctx, &model.Session{ID: "dead2", UserID: 2, ExpiresAt: time.Now().Add(-time.Second)})

	n, err := repo.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if got, _ := repo.FindByID(ctx, "live"); got == nil {
		t.Error("live session should remain")
	}
}
