// Package profile はworker・employerプロフィールのビジネスロジックを提供する。
package profile

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

// Service はプロフィールのサービス層。
type Service struct {
	workers   repository.WorkerProfileRepository
	employers repository.EmployerProfileRepository
	sanitizer security.Sanitizer
	metrics   metrics.MetricsCollector
	validate  *validation.Validator

	// createMu は「1ユーザー1プロフィール」の確認と作成を不可分にする。
	createMu sync.Mutex
}

// NewService はServiceを生成する。
func NewService(
	workers repository.WorkerProfileRepository,
	employers repository.EmployerProfileRepository,
	sanitizer security.Sanitizer,
	mc metrics.MetricsCollector,
) *Service {
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &Service{
		workers:   workers,
		employers: employers,
		sanitizer: sanitizer,
		metrics:   mc,
		validate:  validation.Default(),
	}
}

// CreateWorker は実行者のworkerプロフィールを作成する。
// 判定順: ロール → 既存プロフィール → 入力検証。
func (s *Service) CreateWorker(ctx context.Context, actor *model.Actor, in CreateWorkerInput) (*model.WorkerProfile, error) {
	if err := policy.RequireWorker(actor, "Only workers can create worker profiles"); err != nil {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.workers.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find worker profile: %w", err)
	}
	if err := policy.CreateWorkerProfile(actor, existing); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	image := optional(in.Image)
	if err := checkImage(image); err != nil {
		return nil, err
	}

	p := &model.WorkerProfile{
		UserID:       actor.UserID,
		Title:        in.Title,
		Skills:       in.Skills,
		Experience:   optional(s.sanitizer.SanitizePtr(in.Experience)),
		HourlyRate:   in.HourlyRate,
		Availability: in.Availability,
		Location:     optional(in.Location),
		Image:        image,
	}
	if err := s.workers.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewConflictError(model.ErrCodeProfileExists, "Worker profile already exists")
		}
		return nil, fmt.Errorf("failed to create worker profile: %w", err)
	}

	s.metrics.RecordEntityCreated(metrics.KindWorkerProfile)
	slog.Info("worker profile created",
		slog.Int64("user_id", actor.UserID),
		slog.Int64("profile_id", p.ID),
	)
	return p, nil
}

// OwnWorker は実行者のworkerプロフィールを返す。
func (s *Service) OwnWorker(ctx context.Context, actor *model.Actor) (*model.WorkerProfile, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	return s.WorkerByUserID(ctx, actor.UserID)
}

// WorkerByUserID は指定ユーザーのworkerプロフィールを返す。
func (s *Service) WorkerByUserID(ctx context.Context, userID int64) (*model.WorkerProfile, error) {
	p, err := s.workers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find worker profile: %w", err)
	}
	if p == nil {
		return nil, model.NewNotFoundError("Worker profile")
	}
	return p, nil
}

// ListWorkers は全workerプロフィールを返す。qが空でない場合はtitle・skillsで絞り込む。
func (s *Service) ListWorkers(ctx context.Context, q string) ([]*model.WorkerProfile, error) {
	all, err := s.workers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker profiles: %w", err)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return all, nil
	}

	out := make([]*model.WorkerProfile, 0, len(all))
	for _, p := range all {
		if matchesQuery(q, append([]string{p.Title}, p.Skills...)...) {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdateWorker は実行者のworkerプロフィールを部分更新する。
// 判定順: ロール → プロフィールの存在 → 入力検証。
func (s *Service) UpdateWorker(ctx context.Context, actor *model.Actor, in UpdateWorkerInput) (*model.WorkerProfile, error) {
	if err := policy.RequireWorker(actor, "Only workers can update worker profiles"); err != nil {
		return nil, err
	}

	target, err := s.workers.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find worker profile: %w", err)
	}
	if err := policy.UpdateWorkerProfile(actor, target); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkImage(optional(in.Image)); err != nil {
		return nil, err
	}

	patch := model.WorkerProfilePatch{
		Title:        in.Title,
		Experience:   optional(s.sanitizer.SanitizePtr(in.Experience)),
		HourlyRate:   in.HourlyRate,
		Availability: in.Availability,
		Location:     optional(in.Location),
		Image:        optional(in.Image),
	}
	if in.Skills != nil {
		patch.Skills = *in.Skills
	}

	updated, err := s.workers.Update(ctx, target.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update worker profile: %w", err)
	}
	if updated == nil {
		return nil, model.NewNotFoundError("Worker profile")
	}
	return updated, nil
}

// CreateEmployer は実行者のemployerプロフィールを作成する。
func (s *Service) CreateEmployer(ctx context.Context, actor *model.Actor, in CreateEmployerInput) (*model.EmployerProfile, error) {
	if err := policy.RequireEmployer(actor, "Only employers can create employer profiles"); err != nil {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.employers.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find employer profile: %w", err)
	}
	if err := policy.CreateEmployerProfile(actor, existing); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	p := &model.EmployerProfile{
		UserID:             actor.UserID,
		CompanyName:        in.CompanyName,
		CompanySize:        optional(in.CompanySize),
		Industry:           in.Industry,
		CompanyDescription: optional(s.sanitizer.SanitizePtr(in.CompanyDescription)),
		Location:           optional(in.Location),
	}
	if err := s.employers.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewConflictError(model.ErrCodeProfileExists, "Employer profile already exists")
		}
		return nil, fmt.Errorf("failed to create employer profile: %w", err)
	}

	s.metrics.RecordEntityCreated(metrics.KindEmployerProfile)
	slog.Info("employer profile created",
		slog.Int64("user_id", actor.UserID),
		slog.Int64("profile_id", p.ID),
	)
	return p, nil
}

// OwnEmployer は実行者のemployerプロフィールを返す。
func (s *Service) OwnEmployer(ctx context.Context, actor *model.Actor) (*model.EmployerProfile, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	return s.EmployerByUserID(ctx, actor.UserID)
}

// EmployerByUserID は指定ユーザーのemployerプロフィールを返す。
func (s *Service) EmployerByUserID(ctx context.Context, userID int64) (*model.EmployerProfile, error) {
	p, err := s.employers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find employer profile: %w", err)
	}
	if p == nil {
		return nil, model.NewNotFoundError("Employer profile")
	}
	return p, nil
}

// UpdateEmployer は実行者のemployerプロフィールを部分更新する。
func (s *Service) UpdateEmployer(ctx context.Context, actor *model.Actor, in UpdateEmployerInput) (*model.EmployerProfile, error) {
	if err := policy.RequireEmployer(actor, "Only employers can update employer profiles"); err != nil {
		return nil, err
	}

	target, err := s.employers.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find employer profile: %w", err)
	}
	if err := policy.UpdateEmployerProfile(actor, target); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	updated, err := s.employers.Update(ctx, target.ID, model.EmployerProfilePatch{
		CompanyName:        in.CompanyName,
		CompanySize:        optional(in.CompanySize),
		Industry:           in.Industry,
		CompanyDescription: optional(s.sanitizer.SanitizePtr(in.CompanyDescription)),
		Location:           optional(in.Location),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update employer profile: %w", err)
	}
	if updated == nil {
		return nil, model.NewNotFoundError("Employer profile")
	}
	return updated, nil
}
