package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KC-99/workmatch/internal/model"
)

func TestRedisSessionKeys(t *testing.T) {
	if got := sessionKey("abc"); got != "session:abc" {
		t.Errorf("sessionKey = %q", got)
	}
	if got := userSessionsKey(42); got != "user_sessions:42" {
		t.Errorf("userSessionsKey = %q", got)
	}
}

// 期限切れのセッションはRedisに接続せずに無視されることを検証
func TestRedisSessionRepo_Create_SkipsExpired(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	repo := NewRedisSessionRepo(client)

	err := repo.Create(context.Background(), &model.Session{ID: "x", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)})
	if err != nil {
		t.Errorf("Create(expired) = %v, want nil", err)
	}
}

// 接続できない場合はエラーを返すことを検証
func TestRedisSessionRepo_FindByID_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	repo := NewRedisSessionRepo(client)

	got, err := repo.FindByID(context.Background(), "x")
	if err == nil {
		t.Error("expected connection error")
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestRedisSessionRepo_DeleteExpired_NoOp(t *testing.T) {
	repo := NewRedisSessionRepo(nil)
	n, err := repo.DeleteExpired(context.Background())
	if n != 0 || err != nil {
		t.Errorf("DeleteExpired = %d, %v", n, err)
	}
}
