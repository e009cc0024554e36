package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode = "23505"
)

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound        = errors.New("пользователь не найден")
	ErrUsernameTaken       = errors.New("имя пользователя уже занято")
	ErrTodoNotFound        = errors.New("задача не найдена")
	ErrTodoExists          = errors.New("задача с таким ID уже существует")
	ErrCategoryNotFound    = errors.New("категория не найдена")
	ErrCategoryExists      = errors.New("категория с таким ID уже существует")
	ErrCategoryNameTaken   = errors.New("категория с таким именем уже существует")
	ErrDefaultCategoryGone = errors.New("служебная категория не найдена")
	ErrExportNotFound      = errors.New("снимок не найден")
)

// isUniqueViolation сообщает, что запрос нарушил ограничение уникальности
// (PostgreSQL 23505 или SQLITE_CONSTRAINT_UNIQUE/PRIMARYKEY).
func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// Расширенные коды могут быть выключены, тогда остается только текст.
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

// isConstraintViolation сообщает, что нарушено ограничение с именем pgConstraint (PostgreSQL)
// или ограничение по колонкам sqliteColumns, как их перечисляет текст ошибки SQLite.
func isConstraintViolation(err error, pgConstraint, sqliteColumns string) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Constraint == pgConstraint
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return strings.Contains(liteErr.Error(), sqliteColumns)
	}
	return false
}
