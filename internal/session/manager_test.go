package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/repository"
)

// --- モック定義 ---

type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

type mockSessionRepo struct {
	repository.SessionRepository
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	return m.deleteByIDFn(ctx, id)
}

func usersByID(users ...*model.User) *mockUserFinder {
	return &mockUserFinder{
		findByIDFn: func(_ context.Context, id int64) (*model.User, error) {
			for _, u := range users {
				if u.ID == id {
					return u, nil
				}
			}
			return nil, nil
		},
	}
}

// --- テスト ---

func TestEstablish_ThenResolve_DerivesUserType(t *testing.T) {
	ctx := context.Background()
	users := usersByID(&model.User{ID: 7, UserType: model.UserTypeEmployer})
	m := NewManager(repository.NewMemorySessionRepo(), users, Config{MaxAge: time.Hour})

	s, err := m.Establish(ctx, 7)
	if err != nil {
		t.Fatalf("Establish: %v", err)
	}
	if len(s.ID) != 64 {
		t.Errorf("token length = %d, want 64", len(s.ID))
	}

	actor, err := m.Resolve(ctx, s.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if actor == nil || actor.UserID != 7 || actor.UserType != model.UserTypeEmployer {
		t.Errorf("Resolve = %+v", actor)
	}
}

// 同一ユーザーでもトークンは毎回異なることを検証
func TestEstablish_IssuesIndependentTokens(t *testing.T) {
	ctx := context.Background()
	users := usersByID(&model.User{ID: 1, UserType: model.UserTypeWorker})
	m := NewManager(repository.NewMemorySessionRepo(), users, Config{MaxAge: time.Hour})

	a, _ := m.Establish(ctx, 1)
	b, _ := m.Establish(ctx, 1)
	if a.ID == b.ID {
		t.Fatal("tokens should differ")
	}

	if err := m.Destroy(ctx, a.ID); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if actor, _ := m.Resolve(ctx, a.ID); actor != nil {
		t.Error("destroyed token should not resolve")
	}
	if actor, _ := m.Resolve(ctx, b.ID); actor == nil {
		t.Error("other device token should still resolve")
	}
}

func TestResolve_UnknownOrEmptyToken(t *testing.T) {
	m := NewManager(repository.NewMemorySessionRepo(), usersByID(), Config{MaxAge: time.Hour})

	for _, token := range []string{"", "nope"} {
		actor, err := m.Resolve(context.Background(), token)
		if err != nil || actor != nil {
			t.Errorf("Resolve(%q) = %+v, %v; want nil, nil", token, actor, err)
		}
	}
}

// 期限切れセッションは未認証として扱われることを検証
func TestResolve_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	users := usersByID(&model.User{ID: 1, UserType: model.UserTypeWorker})
	m := NewManager(repository.NewMemorySessionRepo(), users, Config{MaxAge: time.Hour})
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	s, err := m.Establish(ctx, 1)
	if err != nil {
		t.Fatalf("Establish: %v", err)
	}

	if actor, _ := m.Resolve(ctx, s.ID); actor != nil {
		t.Errorf("expired session resolved to %+v", actor)
	}
}

// ユーザーが存在しない場合は未認証として扱われることを検証
func TestResolve_MissingUser(t *testing.T) {
	ctx := context.Background()
	m := NewManager(repository.NewMemorySessionRepo(), usersByID(), Config{MaxAge: time.Hour})

	s, _ := m.Establish(ctx, 99)
	actor, err := m.Resolve(ctx, s.ID)
	if err != nil || actor != nil {
		t.Errorf("Resolve = %+v, %v; want nil, nil", actor, err)
	}
}

func TestResolve_UserLookupError(t *testing.T) {
	ctx := context.Background()
	users := &mockUserFinder{
		findByIDFn: func(context.Context, int64) (*model.User, error) { return nil, errors.New("db down") },
	}
	m := NewManager(repository.NewMemorySessionRepo(), users, Config{MaxAge: time.Hour})

	s, _ := m.Establish(ctx, 1)
	if _, err := m.Resolve(ctx, s.ID); err == nil {
		t.Error("expected error")
	}
}

// Destroyは冪等であることを検証
func TestDestroy_Idempotent(t *testing.T) {
	m := NewManager(repository.NewMemorySessionRepo(), usersByID(), Config{MaxAge: time.Hour})

	for i := 0; i < 2; i++ {
		if err := m.Destroy(context.Background(), "absent"); err != nil {
			t.Fatalf("Destroy #%d: %v", i+1, err)
		}
	}
}

func TestDestroy_RepositoryError(t *testing.T) {
	repo := &mockSessionRepo{
		deleteByIDFn: func(context.Context, string) error { return errors.New("redis down") },
	}
	m := NewManager(repo, usersByID(), Config{MaxAge: time.Hour})

	if err := m.Destroy(context.Background(), "token"); err == nil {
		t.Error("expected error")
	}
}
