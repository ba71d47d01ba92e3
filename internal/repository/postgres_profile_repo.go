package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/KC-99/workmatch/internal/model"
)

// PostgresWorkerProfileRepo はPostgreSQLを使用したworkerプロフィールリポジトリ。
type PostgresWorkerProfileRepo struct {
	db *sql.DB
}

// NewPostgresWorkerProfileRepo はPostgresWorkerProfileRepoを生成する。
func NewPostgresWorkerProfileRepo(db *sql.DB) *PostgresWorkerProfileRepo {
	return &PostgresWorkerProfileRepo{db: db}
}

const workerProfileColumns = `id, user_id, title, skills, experience, hourly_rate,
	availability, location, image, rating, review_count`

func scanWorkerProfile(row rowScanner) (*model.WorkerProfile, error) {
	p := &model.WorkerProfile{}
	var experience, location, image sql.NullString
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, pq.Array(&p.Skills), &experience, &p.HourlyRate,
		&p.Availability, &location, &image, &p.Rating, &p.ReviewCount,
	)
	if err != nil {
		return nil, err
	}
	p.Experience = nullStringToPtr(experience)
	p.Location = nullStringToPtr(location)
	p.Image = nullStringToPtr(image)
	return p, nil
}

// Create はプロフィールを作成する。user_idのユニーク制約違反はErrDuplicateを返す。
func (r *PostgresWorkerProfileRepo) Create(ctx context.Context, p *model.WorkerProfile) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO worker_profiles (user_id, title, skills, experience, hourly_rate,
		                              availability, location, image, rating, review_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0)
		 RETURNING id`,
		p.UserID, p.Title, textArray(p.Skills), nullStringPtr(p.Experience), p.HourlyRate,
		p.Availability, nullStringPtr(p.Location), nullStringPtr(p.Image),
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert worker profile: %w", err)
	}
	p.Rating = 0
	p.ReviewCount = 0
	return nil
}

func (r *PostgresWorkerProfileRepo) FindByID(ctx context.Context, id int64) (*model.WorkerProfile, error) {
	return r.findOne(ctx, `SELECT `+workerProfileColumns+` FROM worker_profiles WHERE id = $1`, id)
}

// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresWorkerProfileRepo) FindByUserID(ctx context.Context, userID int64) (*model.WorkerProfile, error) {
	return r.findOne(ctx, `SELECT `+workerProfileColumns+` FROM worker_profiles WHERE user_id = $1`, userID)
}

func (r *PostgresWorkerProfileRepo) findOne(ctx context.Context, query string, arg any) (*model.WorkerProfile, error) {
	p, err := scanWorkerProfile(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find worker profile: %w", err)
	}
	return p, nil
}

func (r *PostgresWorkerProfileRepo) List(ctx context.Context) ([]*model.WorkerProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+workerProfileColumns+` FROM worker_profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*model.WorkerProfile{}
	for rows.Next() {
		p, err := scanWorkerProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Update は行ロックを取得した上でパッチをマージして保存する。
func (r *PostgresWorkerProfileRepo) Update(ctx context.Context, id int64, patch model.WorkerProfilePatch) (*model.WorkerProfile, error) {
	return r.modify(ctx, id, patch.Apply)
}

// UpdateRating は評価とレビュー件数を更新する。
func (r *PostgresWorkerProfileRepo) UpdateRating(ctx context.Context, id int64, rating float64, reviewCount int) (*model.WorkerProfile, error) {
	return r.modify(ctx, id, func(p *model.WorkerProfile) {
		p.Rating = rating
		p.ReviewCount = reviewCount
	})
}

func (r *PostgresWorkerProfileRepo) modify(ctx context.Context, id int64, mutate func(*model.WorkerProfile)) (*model.WorkerProfile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := scanWorkerProfile(tx.QueryRowContext(ctx,
		`SELECT `+workerProfileColumns+` FROM worker_profiles WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock worker profile: %w", err)
	}

	mutate(p)

	_, err = tx.ExecContext(ctx,
		`UPDATE worker_profiles SET
		    title = $2, skills = $3, experience = $4, hourly_rate = $5,
		    availability = $6, location = $7, image = $8,
		    rating = $9, review_count = $10
		 WHERE id = $1`,
		p.ID, p.Title, textArray(p.Skills), nullStringPtr(p.Experience), p.HourlyRate,
		p.Availability, nullStringPtr(p.Location), nullStringPtr(p.Image),
		p.Rating, p.ReviewCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update worker profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return p, nil
}

func (r *PostgresWorkerProfileRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, `DELETE FROM worker_profiles WHERE id = $1`, id)
}

// PostgresEmployerProfileRepo はPostgreSQLを使用したemployerプロフィールリポジトリ。
type PostgresEmployerProfileRepo struct {
	db *sql.DB
}

// NewPostgresEmployerProfileRepo はPostgresEmployerProfileRepoを生成する。
func NewPostgresEmployerProfileRepo(db *sql.DB) *PostgresEmployerProfileRepo {
	return &PostgresEmployerProfileRepo{db: db}
}

const employerProfileColumns = `id, user_id, company_name, company_size, industry,
	company_description, location`

func scanEmployerProfile(row rowScanner) (*model.EmployerProfile, error) {
	p := &model.EmployerProfile{}
	var size, description, location sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.CompanyName, &size, &p.Industry, &description, &location)
	if err != nil {
		return nil, err
	}
	p.CompanySize = nullStringToPtr(size)
	p.CompanyDescription = nullStringToPtr(description)
	p.Location = nullStringToPtr(location)
	return p, nil
}

// Create はプロフィールを作成する。user_idのユニーク制約違反はErrDuplicateを返す。
func (r *PostgresEmployerProfileRepo) Create(ctx context.Context, p *model.EmployerProfile) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO employer_profiles (user_id, company_name, company_size, industry,
		                                company_description, location)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		p.UserID, p.CompanyName, nullStringPtr(p.CompanySize), p.Industry,
		nullStringPtr(p.CompanyDescription), nullStringPtr(p.Location),
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert employer profile: %w", err)
	}
	return nil
}

func (r *PostgresEmployerProfileRepo) FindByID(ctx context.Context, id int64) (*model.EmployerProfile, error) {
	return r.findOne(ctx, `SELECT `+employerProfileColumns+` FROM employer_profiles WHERE id = $1`, id)
}

func (r *PostgresEmployerProfileRepo) FindByUserID(ctx context.Context, userID int64) (*model.EmployerProfile, error) {
	return r.findOne(ctx, `SELECT `+employerProfileColumns+` FROM employer_profiles WHERE user_id = $1`, userID)
}

func (r *PostgresEmployerProfileRepo) findOne(ctx context.Context, query string, arg any) (*model.EmployerProfile, error) {
	p, err := scanEmployerProfile(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employer profile: %w", err)
	}
	return p, nil
}

func (r *PostgresEmployerProfileRepo) List(ctx context.Context) ([]*model.EmployerProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+employerProfileColumns+` FROM employer_profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employer profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*model.EmployerProfile{}
	for rows.Next() {
		p, err := scanEmployerProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employer profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Update は行ロックを取得した上でパッチをマージして保存する。
func (r *PostgresEmployerProfileRepo) Update(ctx context.Context, id int64, patch model.EmployerProfilePatch) (*model.EmployerProfile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := scanEmployerProfile(tx.QueryRowContext(ctx,
		`SELECT `+employerProfileColumns+` FROM employer_profiles WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock employer profile: %w", err)
	}

	patch.Apply(p)

	_, err = tx.ExecContext(ctx,
		`UPDATE employer_profiles SET
		    company_name = $2, company_size = $3, industry = $4,
		    company_description = $5, location = $6
		 WHERE id = $1`,
		p.ID, p.CompanyName, nullStringPtr(p.CompanySize), p.Industry,
		nullStringPtr(p.CompanyDescription), nullStringPtr(p.Location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update employer profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return p, nil
}

func (r *PostgresEmployerProfileRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, `DELETE FROM employer_profiles WHERE id = $1`, id)
}

// deleteByID は1行削除のクエリを実行し、行が存在したかどうかを返す。
func deleteByID(ctx context.Context, db *sql.DB, query string, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var (
	_ WorkerProfileRepository   = (*PostgresWorkerProfileRepo)(nil)
	_ EmployerProfileRepository = (*PostgresEmployerProfileRepo)(nil)
)
