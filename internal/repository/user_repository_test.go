package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Вспомогательная функция для создания мока БД и репозитория.
// Драйвер "postgres" нужен, чтобы Rebind подставлял $N.
func setupUserRepoMock(t *testing.T) (repository.UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewUserRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateUser(t *testing.T) {
	user := &models.User{
		ID:           "0b7f6c1e-1111-4c1e-9a55-000000000001",
		Username:     "newuser",
		Name:         "New",
		PasswordHash: "hash123",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	query := regexp.QuoteMeta(`INSERT INTO users (id, username, name, password_hash, disabled, created_at)`) +
		`\s+` + regexp.QuoteMeta(`VALUES ($1, $2, $3, $4, $5, $6)`)

	tests := []struct {
		name        string
		mockSetup   func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "Успешное создание",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).
					WithArgs(user.ID, user.Username, user.Name, user.PasswordHash, false, user.CreatedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "Имя пользователя занято",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})
			},
			expectedErr: repository.ErrUsernameTaken,
		},
		{
			name: "Другая ошибка БД",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WillReturnError(errors.New("connection reset"))
			},
			expectedErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupUserRepoMock(t)
			tt.mockSetup(mock)

			err := repo.CreateUser(context.Background(), user)

			switch {
			case tt.expectedErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.expectedErr, repository.ErrUsernameTaken):
				require.ErrorIs(t, err, repository.ErrUsernameTaken)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr.Error())
				assert.NotErrorIs(t, err, repository.ErrUsernameTaken)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserByUsername(t *testing.T) {
	query := regexp.QuoteMeta(`FROM users WHERE username = $1`)
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Пользователь найден", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		rows := sqlmock.NewRows([]string{"id", "username", "name", "password_hash", "disabled", "created_at"}).
			AddRow("u1", "alice", "Alice", "hash", true, createdAt)
		mock.ExpectQuery(query).WithArgs("alice").WillReturnRows(rows)

		user, err := repo.GetUserByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, &models.User{
			ID:           "u1",
			Username:     "alice",
			Name:         "Alice",
			PasswordHash: "hash",
			Disabled:     true,
			CreatedAt:    createdAt,
		}, user)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectQuery(query).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByUsername(context.Background(), "ghost")
		require.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.Nil(t, user)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка БД", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectQuery(query).WithArgs("alice").WillReturnError(errors.New("timeout"))

		_, err := repo.GetUserByUsername(context.Background(), "alice")
		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetDisabled(t *testing.T) {
	query := regexp.QuoteMeta(`UPDATE users SET disabled = $1 WHERE username = $2`)

	t.Run("Пользователь отключен", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectExec(query).WithArgs(true, "bob").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetDisabled(context.Background(), "bob", true))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		repo, mock := setupUserRepoMock(t)
		mock.ExpectExec(query).WithArgs(false, "ghost").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetDisabled(context.Background(), "ghost", false)
		require.ErrorIs(t, err, repository.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
