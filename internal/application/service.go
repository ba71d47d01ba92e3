// Package application は求人への応募のビジネスロジックを提供する。
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/KC-99/workmatch/internal/metrics"
	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/policy"
	"github.com/KC-99/workmatch/internal/repository"
	"github.com/KC-99/workmatch/internal/security"
	"github.com/KC-99/workmatch/internal/validation"
)

// ApplyInput は応募リクエスト。workerIdは受け付けず、常に実行者のIDを使う。
type ApplyInput struct {
	JobID       int64   `json:"jobId" validate:"required,gt=0"`
	CoverLetter *string `json:"coverLetter"`
}

// Service は応募のサービス層。
type Service struct {
	apps      repository.JobApplicationRepository
	jobs      repository.JobPostingRepository
	sanitizer security.Sanitizer
	metrics   metrics.MetricsCollector
	validate  *validation.Validator

	// applyMu は重複応募の確認と作成を不可分にする。
	applyMu sync.Mutex
}

// NewService はServiceを生成する。
func NewService(
	apps repository.JobApplicationRepository,
	jobs repository.JobPostingRepository,
	sanitizer security.Sanitizer,
	mc metrics.MetricsCollector,
) *Service {
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &Service{
		apps:      apps,
		jobs:      jobs,
		sanitizer: sanitizer,
		metrics:   mc,
		validate:  validation.Default(),
	}
}

// Apply は実行者として求人に応募する。作成された応募はpending状態になる。
// 判定順: ロール → 入力検証 → 求人の存在 → 重複応募。
func (s *Service) Apply(ctx context.Context, actor *model.Actor, in ApplyInput) (*model.JobApplication, error) {
	if err := policy.RequireWorker(actor, "Only workers can apply to jobs"); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job posting: %w", err)
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	var prior *model.JobApplication
	if job != nil {
		prior, err = s.apps.FindByJobAndWorker(ctx, job.ID, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find application: %w", err)
		}
	}
	if err := policy.ApplyToJob(actor, job, prior); err != nil {
		return nil, err
	}

	app := &model.JobApplication{
		JobID:       job.ID,
		WorkerID:    actor.UserID,
		CoverLetter: s.coverLetter(in.CoverLetter),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewConflictError(model.ErrCodeAlreadyApplied, "You have already applied to this job")
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.metrics.RecordEntityCreated(metrics.KindJobApplication)
	slog.Info("application submitted",
		slog.Int64("application_id", app.ID),
		slog.Int64("job_id", app.JobID),
		slog.Int64("worker_id", app.WorkerID),
	)
	return app, nil
}

// coverLetter はサニタイズ後に空白だけになるカバーレターをnilとして扱う。
func (s *Service) coverLetter(v *string) *string {
	v = s.sanitizer.SanitizePtr(v)
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

// ListByJob は求人の応募一覧を返す。
// 掲載者は全件、workerは自分の応募のみを閲覧できる。
func (s *Service) ListByJob(ctx context.Context, actor *model.Actor, jobID int64) ([]*model.JobApplication, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job posting: %w", err)
	}
	scope, err := policy.ViewJobApplications(actor, job)
	if err != nil {
		return nil, err
	}

	apps, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	if scope == policy.ScopeAll {
		return apps, nil
	}

	own := make([]*model.JobApplication, 0, 1)
	for _, a := range apps {
		if a.WorkerID == actor.UserID {
			own = append(own, a)
		}
	}
	return own, nil
}

// ListOwn は実行者（worker）の応募一覧を作成順で返す。
func (s *Service) ListOwn(ctx context.Context, actor *model.Actor) ([]*model.JobApplication, error) {
	if err := policy.RequireWorker(actor, "Only workers can view their applications"); err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByWorker(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// UpdateStatus は応募の選考状態を更新する。
// 判定順: ロール → ステータス値 → 応募の存在 → 求人の所有者 → 状態遷移。
func (s *Service) UpdateStatus(ctx context.Context, actor *model.Actor, id int64, status string) (*model.JobApplication, error) {
	if err := policy.RequireEmployer(actor, "Only employers can update application status"); err != nil {
		return nil, err
	}
	next, ok := model.ParseApplicationStatus(status)
	if !ok {
		return nil, &model.APIError{
			Code:     model.ErrCodeInvalidStatus,
			Message:  "Invalid status",
			Category: model.CategoryValidation,
			Errors: []model.FieldError{{
				Field:   "status",
				Message: "must be one of: pending accepted rejected",
			}},
		}
	}

	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	var job *model.JobPosting
	if app != nil {
		job, err = s.jobs.FindByID(ctx, app.JobID)
		if err != nil {
			return nil, fmt.Errorf("failed to find job posting: %w", err)
		}
	}
	if err := policy.UpdateApplicationStatus(actor, app, job); err != nil {
		return nil, err
	}
	if err := policy.StatusTransition(app.Status, next); err != nil {
		return nil, err
	}
	if app.Status == next {
		return app, nil
	}

	updated, err := s.apps.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	if updated == nil {
		return nil, model.NewNotFoundError("Application")
	}

	slog.Info("application status updated",
		slog.Int64("application_id", updated.ID),
		slog.String("from", string(app.Status)),
		slog.String("to", string(updated.Status)),
	)
	return updated, nil
}
