package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/KC-99/workmatch/internal/model"
)

// PostgresJobPostingRepo はPostgreSQLを使用した求人リポジトリ。
type PostgresJobPostingRepo struct {
	db *sql.DB
}

// NewPostgresJobPostingRepo はPostgresJobPostingRepoを生成する。
func NewPostgresJobPostingRepo(db *sql.DB) *PostgresJobPostingRepo {
	return &PostgresJobPostingRepo{db: db}
}

const jobPostingColumns = `id, employer_id, title, company, location, rate, type,
	duration, skills, description, created_at`

func scanJobPosting(row rowScanner) (*model.JobPosting, error) {
	j := &model.JobPosting{}
	var duration sql.NullString
	err := row.Scan(
		&j.ID, &j.EmployerID, &j.Title, &j.Company, &j.Location, &j.Rate, &j.Type,
		&duration, pq.Array(&j.Skills), &j.Description, &j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Duration = nullStringToPtr(duration)
	return j, nil
}

// Create は求人を作成し、採番されたIDと作成日時をjobに反映する。
func (r *PostgresJobPostingRepo) Create(ctx context.Context, j *model.JobPosting) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO job_postings (employer_id, title, company, location, rate, type,
		                           duration, skills, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		j.EmployerID, j.Title, j.Company, j.Location, j.Rate, j.Type,
		nullStringPtr(j.Duration), textArray(j.Skills), j.Description,
	).Scan(&j.ID, &j.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job posting: %w", err)
	}
	return nil
}

// FindByID は指定IDの求人を取得する。見つからない場合はnilを返す。
func (r *PostgresJobPostingRepo) FindByID(ctx context.Context, id int64) (*model.JobPosting, error) {
	j, err := scanJobPosting(r.db.QueryRowContext(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job posting: %w", err)
	}
	return j, nil
}

func (r *PostgresJobPostingRepo) List(ctx context.Context) ([]*model.JobPosting, error) {
	return r.list(ctx, `SELECT `+jobPostingColumns+` FROM job_postings ORDER BY id`)
}

// ListByEmployer は指定employerが掲載した求人を返す。
func (r *PostgresJobPostingRepo) ListByEmployer(ctx context.Context, employerID int64) ([]*model.JobPosting, error) {
	return r.list(ctx, `SELECT `+jobPostingColumns+` FROM job_postings WHERE employer_id = $1 ORDER BY id`, employerID)
}

func (r *PostgresJobPostingRepo) list(ctx context.Context, query string, args ...any) ([]*model.JobPosting, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query job postings: %w", err)
	}
	defer rows.Close()

	jobs := []*model.JobPosting{}
	for rows.Next() {
		j, err := scanJobPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Update は行ロックを取得した上でパッチをマージして保存する。
func (r *PostgresJobPostingRepo) Update(ctx context.Context, id int64, patch model.JobPostingPatch) (*model.JobPosting, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	j, err := scanJobPosting(tx.QueryRowContext(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock job posting: %w", err)
	}

	patch.Apply(j)

	_, err = tx.ExecContext(ctx,
		`UPDATE job_postings SET
		    title = $2, company = $3, location = $4, rate = $5, type = $6,
		    duration = $7, skills = $8, description = $9
		 WHERE id = $1`,
		j.ID, j.Title, j.Company, j.Location, j.Rate, j.Type,
		nullStringPtr(j.Duration), textArray(j.Skills), j.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return j, nil
}

// Delete は求人を削除する。応募はON DELETE CASCADEで同時に削除される。
func (r *PostgresJobPostingRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, `DELETE FROM job_postings WHERE id = $1`, id)
}

// PostgresJobApplicationRepo はPostgreSQLを使用した応募リポジトリ。
type PostgresJobApplicationRepo struct {
	db *sql.DB
}

// NewPostgresJobApplicationRepo はPostgresJobApplicationRepoを生成する。
func NewPostgresJobApplicationRepo(db *sql.DB) *PostgresJobApplicationRepo {
	return &PostgresJobApplicationRepo{db: db}
}

const jobApplicationColumns = `id, job_id, worker_id, status, cover_letter, created_at`

func scanJobApplication(row rowScanner) (*model.JobApplication, error) {
	a := &model.JobApplication{}
	var coverLetter sql.NullString
	if err := row.Scan(&a.ID, &a.JobID, &a.WorkerID, &a.Status, &coverLetter, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.CoverLetter = nullStringToPtr(coverLetter)
	return a, nil
}

// Create は応募をpendingで作成する。(job_id, worker_id)の重複はErrDuplicateを返す。
func (r *PostgresJobApplicationRepo) Create(ctx context.Context, a *model.JobApplication) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO job_applications (job_id, worker_id, status, cover_letter)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.JobID, a.WorkerID, model.ApplicationStatusPending, nullStringPtr(a.CoverLetter),
	).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	a.Status = model.ApplicationStatusPending
	return nil
}

func (r *PostgresJobApplicationRepo) FindByID(ctx context.Context, id int64) (*model.JobApplication, error) {
	return r.findOne(ctx, `SELECT `+jobApplicationColumns+` FROM job_applications WHERE id = $1`, id)
}

func (r *PostgresJobApplicationRepo) FindByJobAndWorker(ctx context.Context, jobID, workerID int64) (*model.JobApplication, error) {
	return r.findOne(ctx,
		`SELECT `+jobApplicationColumns+` FROM job_applications WHERE job_id = $1 AND worker_id = $2`,
		jobID, workerID)
}

func (r *PostgresJobApplicationRepo) findOne(ctx context.Context, query string, args ...any) (*model.JobApplication, error) {
	a, err := scanJobApplication(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query application: %w", err)
	}
	return a, nil
}

func (r *PostgresJobApplicationRepo) List(ctx context.Context) ([]*model.JobApplication, error) {
	return r.list(ctx, `SELECT `+jobApplicationColumns+` FROM job_applications ORDER BY id`)
}

func (r *PostgresJobApplicationRepo) ListByJob(ctx context.Context, jobID int64) ([]*model.JobApplication, error) {
	return r.list(ctx, `SELECT `+jobApplicationColumns+` FROM job_applications WHERE job_id = $1 ORDER BY id`, jobID)
}

func (r *PostgresJobApplicationRepo) ListByWorker(ctx context.Context, workerID int64) ([]*model.JobApplication, error) {
	return r.list(ctx, `SELECT `+jobApplicationColumns+` FROM job_applications WHERE worker_id = $1 ORDER BY id`, workerID)
}

func (r *PostgresJobApplicationRepo) list(ctx context.Context, query string, args ...any) ([]*model.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := []*model.JobApplication{}
	for rows.Next() {
		a, err := scanJobApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// UpdateStatus は選考状態を更新する。IDが存在しない場合はnilを返す。
func (r *PostgresJobApplicationRepo) UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) (*model.JobApplication, error) {
	a, err := scanJobApplication(r.db.QueryRowContext(ctx,
		`UPDATE job_applications SET status = $2 WHERE id = $1
		 RETURNING `+jobApplicationColumns,
		id, status))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	return a, nil
}

func (r *PostgresJobApplicationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, `DELETE FROM job_applications WHERE id = $1`, id)
}

// NewPostgresStore はPostgreSQLをバックエンドとするStoreを生成する。
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Users:            NewPostgresUserRepo(db),
		WorkerProfiles:   NewPostgresWorkerProfileRepo(db),
		EmployerProfiles: NewPostgresEmployerProfileRepo(db),
		JobPostings:      NewPostgresJobPostingRepo(db),
		JobApplications:  NewPostgresJobApplicationRepo(db),
		Health:           db,
	}
}

// compile-time interface check
var (
	_ JobPostingRepository     = (*PostgresJobPostingRepo)(nil)
	_ JobApplicationRepository = (*PostgresJobApplicationRepo)(nil)
)
