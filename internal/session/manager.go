// Package session はセッショントークンと認証済みユーザーの対応付けを管理する。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/KC-99/workmatch/internal/model"
	"github.com/KC-99/workmatch/internal/repository"
)

// UserFinder はセッション解決時にユーザー種別を導出するためのインターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Config はセッションマネージャーの設定。
type Config struct {
	MaxAge time.Duration // セッション有効期間
}

// Manager はセッションの発行・解決・破棄を行う。
type Manager struct {
	repo   repository.SessionRepository
	users  UserFinder
	config Config
	now    func() time.Time
}

// NewManager はManagerを生成する。
func NewManager(repo repository.SessionRepository, users UserFinder, config Config) *Manager {
	return &Manager{
		repo:   repo,
		users:  users,
		config: config,
		now:    time.Now,
	}
}

// MaxAge はセッション有効期間を返す。Cookieの有効期限に使用する。
func (m *Manager) MaxAge() time.Duration {
	return m.config.MaxAge
}

// Establish は新しいセッショントークンを発行し、userIDに紐付ける。
// 同一ユーザーの既存セッションは無効化しない。
func (m *Manager) Establish(ctx context.Context, userID int64) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := m.now()
	s := &model.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: now.Add(m.config.MaxAge),
		CreatedAt: now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}

// Resolve はトークンから認証済みユーザーを解決する。
// トークンが空・未知・期限切れの場合、または紐付くユーザーが存在しない場合はnilを返す。
// ユーザー種別はセッションに保持せず、Userレコードから毎回導出する。
func (m *Manager) Resolve(ctx context.Context, token string) (*model.Actor, error) {
	if token == "" {
		return nil, nil
	}

	s, err := m.repo.FindByID(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if s == nil {
		return nil, nil
	}

	user, err := m.users.FindByID(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session user: %w", err)
	}
	if user == nil {
		slog.Warn("session refers to missing user", slog.Int64("user_id", s.UserID))
		return nil, nil
	}

	return &model.Actor{UserID: user.ID, UserType: user.UserType}, nil
}

// Destroy はトークンの紐付けを削除する。存在しないトークンでもエラーにしない。
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.repo.DeleteByID(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// generateToken は暗号的に安全なセッショントークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
