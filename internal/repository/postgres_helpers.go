package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLのunique_violationのSQLSTATE。
const uniqueViolation = "23505"

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation はエラーがユニーク制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// nullStringPtr は*stringをsql.NullStringに変換する。nilはNULLになる。
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullStringToPtr はsql.NullStringを*stringに変換する。
func nullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// textArray はTEXT[]カラムへの書き込み値を返す。nilは空配列として扱う。
func textArray(values []string) any {
	if values == nil {
		values = []string{}
	}
	return pq.Array(values)
}
