// Package repository はデータ永続化のインターフェースと実装を提供する。
//
// 各リポジトリは「見つからない」をエラーではなくnilで返す。
// 一意性の検証はサービス層の責務であり、インメモリ実装は制約を強制しない。
// PostgreSQL実装はユニークインデックス違反をErrDuplicateとして返す。
package repository

import (
	"context"
	"errors"

	"github.com/KC-99/workmatch/internal/model"
)

// ErrDuplicate はユニーク制約違反を表す。
var ErrDuplicate = errors.New("duplicate record")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はIDとCreatedAtを採番してユーザーを保存する。引数のuserにも反映される。
	Create(ctx context.Context, user *model.User) error
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
	// FindByUsername はユーザー名（大文字小文字を区別する完全一致）で検索する。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// FindByEmail はメールアドレスで検索する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// List は全ユーザーを作成順で返す。
	List(ctx context.Context) ([]*model.User, error)
}

// WorkerProfileRepository はworkerプロフィールの永続化インターフェース。
type WorkerProfileRepository interface {
	// Create はIDを採番し、Rating=0、ReviewCount=0で保存する。
	Create(ctx context.Context, profile *model.WorkerProfile) error
	FindByID(ctx context.Context, id int64) (*model.WorkerProfile, error)
	// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID int64) (*model.WorkerProfile, error)
	List(ctx context.Context) ([]*model.WorkerProfile, error)
	// Update はパッチをマージした結果を返す。IDが存在しない場合はnilを返す。
	Update(ctx context.Context, id int64, patch model.WorkerProfilePatch) (*model.WorkerProfile, error)
	// UpdateRating は評価を更新する。レビュー集計などシステム側の経路専用。
	UpdateRating(ctx context.Context, id int64, rating float64, reviewCount int) (*model.WorkerProfile, error)
	// Delete は削除し、レコードが存在したかどうかを返す。
	Delete(ctx context.Context, id int64) (bool, error)
}

// EmployerProfileRepository はemployerプロフィールの永続化インターフェース。
type EmployerProfileRepository interface {
	Create(ctx context.Context, profile *model.EmployerProfile) error
	FindByID(ctx context.Context, id int64) (*model.EmployerProfile, error)
	FindByUserID(ctx context.Context, userID int64) (*model.EmployerProfile, error)
	List(ctx context.Context) ([]*model.EmployerProfile, error)
	Update(ctx context.Context, id int64, patch model.EmployerProfilePatch) (*model.EmployerProfile, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// JobPostingRepository は求人の永続化インターフェース。
type JobPostingRepository interface {
	// Create はIDとCreatedAtを採番して保存する。
	Create(ctx context.Context, job *model.JobPosting) error
	FindByID(ctx context.Context, id int64) (*model.JobPosting, error)
	List(ctx context.Context) ([]*model.JobPosting, error)
	ListByEmployer(ctx context.Context, employerID int64) ([]*model.JobPosting, error)
	Update(ctx context.Context, id int64, patch model.JobPostingPatch) (*model.JobPosting, error)
	// Delete は求人とその応募を同一操作で削除し、求人が存在したかどうかを返す。
	Delete(ctx context.Context, id int64) (bool, error)
}

// JobApplicationRepository は応募の永続化インターフェース。
type JobApplicationRepository interface {
	// Create はIDとCreatedAtを採番し、Status=pendingで保存する。
	Create(ctx context.Context, app *model.JobApplication) error
	FindByID(ctx context.Context, id int64) (*model.JobApplication, error)
	// FindByJobAndWorker は(jobID, workerID)の応募を取得する。見つからない場合はnilを返す。
	FindByJobAndWorker(ctx context.Context, jobID, workerID int64) (*model.JobApplication, error)
	List(ctx context.Context) ([]*model.JobApplication, error)
	ListByJob(ctx context.Context, jobID int64) ([]*model.JobApplication, error)
	ListByWorker(ctx context.Context, workerID int64) ([]*model.JobApplication, error)
	// UpdateStatus は選考状態を更新する。IDが存在しない場合はnilを返す。
	UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) (*model.JobApplication, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。同じIDのセッションが存在する場合は上書きする。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しない場合もエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// Pinger は永続化層の疎通確認インターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Store はエンティティ種別ごとのリポジトリをまとめたもの。
// バックエンド（インメモリ/PostgreSQL）を差し替えてもサービス層は変更しない。
type Store struct {
	Users            UserRepository
	WorkerProfiles   WorkerProfileRepository
	EmployerProfiles EmployerProfileRepository
	JobPostings      JobPostingRepository
	JobApplications  JobApplicationRepository
	Health           Pinger
}
