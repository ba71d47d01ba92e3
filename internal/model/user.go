// Package model はドメインモデルを定義する。
package model

import "time"

// UserType はユーザー種別を表す。worker と employer 以外の値は存在しない。
type UserType string

const (
	// UserTypeWorker は仕事を探すユーザー。
	UserTypeWorker UserType = "worker"
	// UserTypeEmployer は求人を掲載するユーザー。
	UserTypeEmployer UserType = "employer"
)

// ParseUserType は文字列をUserTypeに変換する。未知の値の場合はfalseを返す。
func ParseUserType(s string) (UserType, bool) {
	switch UserType(s) {
	case UserTypeWorker, UserTypeEmployer:
		return UserType(s), true
	default:
		return "", false
	}
}

// User はサービス利用ユーザーを表す。登録後は不変で、削除されない。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	Name         string
	UserType     UserType
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// ユーザー種別はセッションに保持せず、解決時にUserから導出する。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Actor はリクエストを実行している認証済みユーザーを表す。
type Actor struct {
	UserID   int64
	UserType UserType
}

// IsWorker はActorがworkerかどうかを返す。
func (a *Actor) IsWorker() bool {
	return a != nil && a.UserType == UserTypeWorker
}

// IsEmployer はActorがemployerかどうかを返す。
func (a *Actor) IsEmployer() bool {
	return a != nil && a.UserType == UserTypeEmployer
}
