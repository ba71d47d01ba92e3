// Package job は求人掲載のビジネスロジックを提供する。
package job

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KC-99/workmatch/internal/metrics"
	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/policy"
	"github.com/KC-99/workmatch/internal/repository"
	"github.com/KC-99/workmatch/internal/security"
	"github.com/KC-99/workmatch/internal/validation"
)

// CreateInput は求人作成のリクエスト。employerIdは受け付けず、常に実行者のIDを使う。
type CreateInput struct {
	Title       string   `json:"title" validate:"required,min=5"`
	Company     string   `json:"company" validate:"required,min=2"`
	Location    string   `json:"location" validate:"required,min=2"`
	Rate        string   `json:"rate" validate:"required,min=1"`
	Type        string   `json:"type" validate:"required,min=1"`
	Duration    *string  `json:"duration"`
	Skills      []string `json:"skills" validate:"required,min=1,dive,required"`
	Description string   `json:"description" validate:"required,min=20"`
}

// UpdateInput は求人の部分更新リクエスト。
type UpdateInput struct {
	Title       *string   `json:"title" validate:"omitempty,min=5"`
	Company     *string   `json:"company" validate:"omitempty,min=2"`
	Location    *string   `json:"location" validate:"omitempty,min=2"`
	Rate        *string   `json:"rate" validate:"omitempty,min=1"`
	Type        *string   `json:"type" validate:"omitempty,min=1"`
	Duration    *string   `json:"duration"`
	Skills      *[]string `json:"skills" validate:"omitempty,min=1,dive,required"`
	Description *string   `json:"description" validate:"omitempty,min=20"`
}

// Service は求人のサービス層。
type Service struct {
	jobs      repository.JobPostingRepository
	sanitizer security.Sanitizer
	metrics   metrics.MetricsCollector
	validate  *validation.Validator
}

// NewService はServiceを生成する。
func NewService(jobs repository.JobPostingRepository, sanitizer security.Sanitizer, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &Service{
		jobs:      jobs,
		sanitizer: sanitizer,
		metrics:   mc,
		validate:  validation.Default(),
	}
}

// Create は実行者を掲載者として求人を作成する。
func (s *Service) Create(ctx context.Context, actor *model.Actor, in CreateInput) (*model.JobPosting, error) {
	if err := policy.CreateJobPosting(actor); err != nil {
		return nil, err
	}
	// 文字数の下限はサニタイズ後の本文に対して検証する
	in.Description = s.sanitizer.Sanitize(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	j := &model.JobPosting{
		EmployerID:  actor.UserID,
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		Rate:        in.Rate,
		Type:        in.Type,
		Duration:    nonEmpty(in.Duration),
		Skills:      in.Skills,
		Description: in.Description,
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}

	s.metrics.RecordEntityCreated(metrics.KindJobPosting)
	slog.Info("job posting created",
		slog.Int64("job_id", j.ID),
		slog.Int64("employer_id", j.EmployerID),
	)
	return j, nil
}

// Get は指定IDの求人を返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.JobPosting, error) {
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find job posting: %w", err)
	}
	if j == nil {
		return nil, model.NewNotFoundError("Job posting")
	}
	return j, nil
}

// List は全求人を作成順で返す。qが空でない場合はtitle・company・skillsで絞り込む。
func (s *Service) List(ctx context.Context, q string) ([]*model.JobPosting, error) {
	all, err := s.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, nil
	}

	out := make([]*model.JobPosting, 0, len(all))
	for _, j := range all {
		if matches(j, q) {
			out = append(out, j)
		}
	}
	return out, nil
}

func matches(j *model.JobPosting, q string) bool {
	if strings.Contains(strings.ToLower(j.Title), q) || strings.Contains(strings.ToLower(j.Company), q) {
		return true
	}
	for _, skill := range j.Skills {
		if strings.Contains(strings.ToLower(skill), q) {
			return true
		}
	}
	return false
}

// ListByEmployer は指定employerの求人を返す。
func (s *Service) ListByEmployer(ctx context.Context, employerID int64) ([]*model.JobPosting, error) {
	jobs, err := s.jobs.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings by employer: %w", err)
	}
	return jobs, nil
}

// MyPostings は実行者が掲載した求人を返す。
func (s *Service) MyPostings(ctx context.Context, actor *model.Actor) ([]*model.JobPosting, error) {
	if err := policy.RequireEmployer(actor, "Only employers can access their job postings"); err != nil {
		return nil, err
	}
	return s.ListByEmployer(ctx, actor.UserID)
}

// Update は求人を部分更新する。
// 判定順: ロール → 求人の存在 → 所有者 → 入力検証。
func (s *Service) Update(ctx context.Context, actor *model.Actor, id int64, in UpdateInput) (*model.JobPosting, error) {
	if err := s.Authorize(ctx, actor, policy.JobActionUpdate, id); err != nil {
		return nil, err
	}
	in.Description = s.sanitizer.SanitizePtr(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	patch := model.JobPostingPatch{
		Title:    in.Title,
		Company:  in.Company,
		Location: in.Location,
		Rate:     in.Rate,
		Type:     in.Type,
		Duration: nonEmpty(in.Duration),
	}
	if in.Skills != nil {
		patch.Skills = *in.Skills
	}
	patch.Description = in.Description

	updated, err := s.jobs.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}
	if updated == nil {
		return nil, model.NewNotFoundError("Job posting")
	}
	return updated, nil
}

// Delete は求人とその応募を削除する。
func (s *Service) Delete(ctx context.Context, actor *model.Actor, id int64) error {
	if err := s.Authorize(ctx, actor, policy.JobActionDelete, id); err != nil {
		return err
	}

	ok, err := s.jobs.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete job posting: %w", err)
	}
	if !ok {
		return model.NewNotFoundError("Job posting")
	}

	slog.Info("job posting deleted",
		slog.Int64("job_id", id),
		slog.Int64("employer_id", actor.UserID),
	)
	return nil
}

// Authorize はロールを確認してから対象求人を取得し、所有者を検証する。
func (s *Service) Authorize(ctx context.Context, actor *model.Actor, action policy.JobAction, id int64) error {
	if err := policy.JobRole(actor, action); err != nil {
		return err
	}
	target, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find job posting: %w", err)
	}
	return policy.ModifyJobPosting(actor, action, target)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
