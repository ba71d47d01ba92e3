package seed

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/KC-99/workmatch/internal/auth"
	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/repository"
)

func TestRun_LoadsSampleData(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore().Store()

	res, err := Run(ctx, store, Config{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Users != 8 || res.Profiles != 8 || res.Jobs != 4 {
		t.Errorf("result = %+v, want 8 users, 8 profiles, 4 jobs", res)
	}

	users, _ := store.Users.List(ctx)
	if len(users) != 8 {
		t.Fatalf("users = %d, want 8", len(users))
	}
	workerCount := 0
	for _, u := range users {
		if u.UserType == model.UserTypeWorker {
			workerCount++
		}
		if !auth.CheckPassword(u.PasswordHash, SamplePassword) {
			t.Errorf("%s: password should be %q", u.Username, SamplePassword)
		}
	}
	if workerCount != 4 {
		t.Errorf("workers = %d, want 4", workerCount)
	}

	jobs, _ := store.JobPostings.List(ctx)
	if len(jobs) != 4 {
		t.Fatalf("jobs = %d, want 4", len(jobs))
	}
	for _, j := range jobs {
		employer, _ := store.Users.FindByID(ctx, j.EmployerID)
		if employer == nil || employer.UserType != model.UserTypeEmployer {
			t.Errorf("job %q: employer %d is not an employer", j.Title, j.EmployerID)
		}
	}
}

// 評価値は通常の作成経路ではなくUpdateRatingで設定される
func TestRun_SetsRatings(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore().Store()
	if _, err := Run(ctx, store, Config{BcryptCost: bcrypt.MinCost}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sarah, _ := store.Users.FindByUsername(ctx, "worker1")
	if sarah == nil {
		t.Fatal("worker1 should exist")
	}
	p, _ := store.WorkerProfiles.FindByUserID(ctx, sarah.ID)
	if p == nil {
		t.Fatal("worker1 profile should exist")
	}
	if p.Rating != 4.8 || p.ReviewCount != 24 {
		t.Errorf("rating = %v/%d, want 4.8/24", p.Rating, p.ReviewCount)
	}
}

func TestRun_SkipsWhenUsersExist(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore().Store()
	if err := store.Users.Create(ctx, &model.User{
		Username: "alice", Email: "alice@example.com", Name: "Alice", UserType: model.UserTypeWorker,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := Run(ctx, store, Config{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res != (Result{}) {
		t.Errorf("result = %+v, want zero", res)
	}
	users, _ := store.Users.List(ctx)
	if len(users) != 1 {
		t.Errorf("users = %d, want 1", len(users))
	}
}
