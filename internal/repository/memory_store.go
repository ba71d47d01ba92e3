package repository

import (
	"context"
	"time"

	"github.com/KC-99/workmatch/internal/model"
)

// MemoryStore はプロセス内に全エンティティを保持するStoreのバックエンド。
// プロセス終了とともにデータは失われる。
type MemoryStore struct {
	users     *memTable[model.User]
	workers   *memTable[model.WorkerProfile]
	employers *memTable[model.EmployerProfile]
	jobs      *memTable[model.JobPosting]
	apps      *memTable[model.JobApplication]
	now       func() time.Time
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: newMemTable(
			func(u *model.User) *model.User { c := *u; return &c },
			func(u *model.User, id int64) { u.ID = id },
		),
		workers: newMemTable(
			(*model.WorkerProfile).Clone,
			func(p *model.WorkerProfile, id int64) { p.ID = id },
		),
		employers: newMemTable(
			(*model.EmployerProfile).Clone,
			func(p *model.EmployerProfile, id int64) { p.ID = id },
		),
		jobs: newMemTable(
			(*model.JobPosting).Clone,
			func(j *model.JobPosting, id int64) { j.ID = id },
		),
		apps: newMemTable(
			(*model.JobApplication).Clone,
			func(a *model.JobApplication, id int64) { a.ID = id },
		),
		now: time.Now,
	}
}

// Store はMemoryStoreをリポジトリ群として公開する。
func (s *MemoryStore) Store() *Store {
	return &Store{
		Users:            &memoryUserRepo{s: s},
		WorkerProfiles:   &memoryWorkerProfileRepo{s: s},
		EmployerProfiles: &memoryEmployerProfileRepo{s: s},
		JobPostings:      &memoryJobPostingRepo{s: s},
		JobApplications:  &memoryJobApplicationRepo{s: s},
		Health:           s,
	}
}

// PingContext は常に成功する。
func (s *MemoryStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

type memoryUserRepo struct{ s *MemoryStore }

func (r *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	now := r.s.now().UTC()
	stored := r.s.users.insert(user, func(u *model.User) { u.CreatedAt = now })
	*user = *stored
	return nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.s.users.get(id), nil
}

func (r *memoryUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.s.users.find(func(u *model.User) bool { return u.Username == username }), nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.s.users.find(func(u *model.User) bool { return u.Email == email }), nil
}

func (r *memoryUserRepo) List(ctx context.Context) ([]*model.User, error) {
	return r.s.users.listWhere(nil), nil
}

type memoryWorkerProfileRepo struct{ s *MemoryStore }

func (r *memoryWorkerProfileRepo) Create(ctx context.Context, profile *model.WorkerProfile) error {
	stored := r.s.workers.insert(profile, func(p *model.WorkerProfile) {
		p.Rating = 0
		p.ReviewCount = 0
	})
	*profile = *stored
	return nil
}

func (r *memoryWorkerProfileRepo) FindByID(ctx context.Context, id int64) (*model.WorkerProfile, error) {
	return r.s.workers.get(id), nil
}

func (r *memoryWorkerProfileRepo) FindByUserID(ctx context.Context, userID int64) (*model.WorkerProfile, error) {
	return r.s.workers.find(func(p *model.WorkerProfile) bool { return p.UserID == userID }), nil
}

func (r *memoryWorkerProfileRepo) List(ctx context.Context) ([]*model.WorkerProfile, error) {
	return r.s.workers.listWhere(nil), nil
}

func (r *memoryWorkerProfileRepo) Update(ctx context.Context, id int64, patch model.WorkerProfilePatch) (*model.WorkerProfile, error) {
	return r.s.workers.update(id, patch.Apply), nil
}

func (r *memoryWorkerProfileRepo) UpdateRating(ctx context.Context, id int64, rating float64, reviewCount int) (*model.WorkerProfile, error) {
	return r.s.workers.update(id, func(p *model.WorkerProfile) {
		p.Rating = rating
		p.ReviewCount = reviewCount
	}), nil
}

func (r *memoryWorkerProfileRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.s.workers.delete(id), nil
}

type memoryEmployerProfileRepo struct{ s *MemoryStore }

func (r *memoryEmployerProfileRepo) Create(ctx context.Context, profile *model.EmployerProfile) error {
	*profile = *r.s.employers.insert(profile, nil)
	return nil
}

func (r *memoryEmployerProfileRepo) FindByID(ctx context.Context, id int64) (*model.EmployerProfile, error) {
	return r.s.employers.get(id), nil
}

func (r *memoryEmployerProfileRepo) FindByUserID(ctx context.Context, userID int64) (*model.EmployerProfile, error) {
	return r.s.employers.find(func(p *model.EmployerProfile) bool { return p.UserID == userID }), nil
}

func (r *memoryEmployerProfileRepo) List(ctx context.Context) ([]*model.EmployerProfile, error) {
	return r.s.employers.listWhere(nil), nil
}

func (r *memoryEmployerProfileRepo) Update(ctx context.Context, id int64, patch model.EmployerProfilePatch) (*model.EmployerProfile, error) {
	return r.s.employers.update(id, patch.Apply), nil
}

func (r *memoryEmployerProfileRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.s.employers.delete(id), nil
}

type memoryJobPostingRepo struct{ s *MemoryStore }

func (r *memoryJobPostingRepo) Create(ctx context.Context, job *model.JobPosting) error {
	now := r.s.now().UTC()
	*job = *r.s.jobs.insert(job, func(j *model.JobPosting) { j.CreatedAt = now })
	return nil
}

func (r *memoryJobPostingRepo) FindByID(ctx context.Context, id int64) (*model.JobPosting, error) {
	return r.s.jobs.get(id), nil
}

func (r *memoryJobPostingRepo) List(ctx context.Context) ([]*model.JobPosting, error) {
	return r.s.jobs.listWhere(nil), nil
}

func (r *memoryJobPostingRepo) ListByEmployer(ctx context.Context, employerID int64) ([]*model.JobPosting, error) {
	return r.s.jobs.listWhere(func(j *model.JobPosting) bool { return j.EmployerID == employerID }), nil
}

func (r *memoryJobPostingRepo) Update(ctx context.Context, id int64, patch model.JobPostingPatch) (*model.JobPosting, error) {
	return r.s.jobs.update(id, patch.Apply), nil
}

func (r *memoryJobPostingRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if !r.s.jobs.delete(id) {
		return false, nil
	}
	r.s.apps.deleteWhere(func(a *model.JobApplication) bool { return a.JobID == id })
	return true, nil
}

type memoryJobApplicationRepo struct{ s *MemoryStore }

func (r *memoryJobApplicationRepo) Create(ctx context.Context, app *model.JobApplication) error {
	now := r.s.now().UTC()
	*app = *r.s.apps.insert(app, func(a *model.JobApplication) {
		a.Status = model.ApplicationStatusPending
		a.CreatedAt = now
	})
	return nil
}

func (r *memoryJobApplicationRepo) FindByID(ctx context.Context, id int64) (*model.JobApplication, error) {
	return r.s.apps.get(id), nil
}

func (r *memoryJobApplicationRepo) FindByJobAndWorker(ctx context.Context, jobID, workerID int64) (*model.JobApplication, error) {
	return r.s.apps.find(func(a *model.JobApplication) bool {
		return a.JobID == jobID && a.WorkerID == workerID
	}), nil
}

func (r *memoryJobApplicationRepo) List(ctx context.Context) ([]*model.JobApplication, error) {
	return r.s.apps.listWhere(nil), nil
}

func (r *memoryJobApplicationRepo) ListByJob(ctx context.Context, jobID int64) ([]*model.JobApplication, error) {
	return r.s.apps.listWhere(func(a *model.JobApplication) bool { return a.JobID == jobID }), nil
}

func (r *memoryJobApplicationRepo) ListByWorker(ctx context.Context, workerID int64) ([]*model.JobApplication, error) {
	return r.s.apps.listWhere(func(a *model.JobApplication) bool { return a.WorkerID == workerID }), nil
}

func (r *memoryJobApplicationRepo) UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) (*model.JobApplication, error) {
	return r.s.apps.update(id, func(a *model.JobApplication) { a.Status = status }), nil
}

func (r *memoryJobApplicationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.s.apps.delete(id), nil
}

// compile-time interface check
var (
	_ UserRepository            = (*memoryUserRepo)(nil)
	_ WorkerProfileRepository   = (*memoryWorkerProfileRepo)(nil)
	_ EmployerProfileRepository = (*memoryEmployerProfileRepo)(nil)
	_ JobPostingRepository      = (*memoryJobPostingRepo)(nil)
	_ JobApplicationRepository  = (*memoryJobApplicationRepo)(nil)
)
