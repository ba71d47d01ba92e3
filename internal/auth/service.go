// Package auth はユーザー登録・ログイン・ログアウトとセッション発行を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/KC-99/workmatch/internal/metrics"
	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/policy"
	"github.com/KC-99/workmatch/internal/repository"
	"github.com/KC-99/workmatch/internal/validation"
)

// SessionManager はセッションの発行と破棄のインターフェース。
type SessionManager interface {
	Establish(ctx context.Context, userID int64) (*model.Session, error)
	Destroy(ctx context.Context, token string) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int // 0の場合はbcrypt.DefaultCost
}

// RegisterInput はユーザー登録のリクエスト。
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	UserType string `json:"userType" validate:"required,oneof=worker employer"`
}

// LoginInput はログインのリクエスト。
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Result は登録・ログイン成功時の結果。
type Result struct {
	User    *model.User
	Session *model.Session
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users    repository.UserRepository
	sessions SessionManager
	metrics  metrics.MetricsCollector
	validate *validation.Validator
	config   ServiceConfig

	// registerMu はusername/emailの重複確認と作成を不可分にする。
	registerMu sync.Mutex
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	sessions SessionManager,
	mc metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &Service{
		users:    users,
		sessions: sessions,
		metrics:  mc,
		validate: validation.Default(),
		config:   config,
	}
}

// Register はユーザーを作成し、新しいセッションを発行する。
// previousTokenはブラウザが保持していた既存トークンで、発行前に破棄する。
func (s *Service) Register(ctx context.Context, in RegisterInput, previousToken string) (*Result, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	userType, _ := model.ParseUserType(in.UserType)

	hash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		Name:         in.Name,
		UserType:     userType,
	}
	if err := s.createUnique(ctx, user); err != nil {
		return nil, err
	}

	s.metrics.RecordEntityCreated(metrics.KindUser)
	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("user_type", string(user.UserType)),
	)

	sess, err := s.rotate(ctx, previousToken, user.ID)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, Session: sess}, nil
}

// createUnique はusername、emailの順に重複を確認してからユーザーを作成する。
func (s *Service) createUnique(ctx context.Context, user *model.User) error {
	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	existing, err := s.users.FindByUsername(ctx, user.Username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return model.NewConflictError(model.ErrCodeUsernameTaken, "Username already taken")
	}

	existing, err = s.users.FindByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return model.NewConflictError(model.ErrCodeEmailTaken, "Email already registered")
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.NewConflictError(model.ErrCodeUsernameTaken, "Username or email already registered")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Login はメールアドレスとパスワードを検証し、新しいセッションを発行する。
// どちらが誤っているかは応答で区別しない。
func (s *Service) Login(ctx context.Context, in LoginInput, previousToken string) (*Result, error) {
	if in.Email == "" || in.Password == "" {
		return nil, model.NewValidationError("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !CheckPassword(user.PasswordHash, in.Password) {
		s.metrics.RecordAuthFailure("invalid_credentials")
		slog.Warn("login failed", slog.String("reason", "invalid_credentials"))
		return nil, model.NewInvalidCredentialsError()
	}

	sess, err := s.rotate(ctx, previousToken, user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return &Result{User: user, Session: sess}, nil
}

// Logout はセッションを破棄する。セッションが存在しない場合も成功とする。
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	if token != "" {
		slog.Info("user logged out")
	}
	return nil
}

// CurrentUser は実行者のユーザー情報を返す。
func (s *Service) CurrentUser(ctx context.Context, actor *model.Actor) (*model.User, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("User")
	}
	return user, nil
}

// rotate は既存トークンを破棄してから新しいセッションを発行する。
func (s *Service) rotate(ctx context.Context, previousToken string, userID int64) (*model.Session, error) {
	if err := s.sessions.Destroy(ctx, previousToken); err != nil {
		return nil, fmt.Errorf("failed to destroy previous session: %w", err)
	}
	sess, err := s.sessions.Establish(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}
	return sess, nil
}
