package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLite открывает базу в памяти с примененными миграциями и пользователями alice и bob.
func newSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.RunMigrations(context.Background(), db))

	users := repository.NewUserRepository(db)
	for i, name := range []string{"alice", "bob"} {
		err = users.CreateUser(context.Background(), &models.User{
			ID:           []string{"u-alice", "u-bob"}[i],
			Username:     name,
			PasswordHash: "hash",
			CreatedAt:    time.Now().UTC(),
		})
		require.NoError(t, err)
	}
	return db
}

func newTodo(id, username, categoryID string, day int) *models.Todo {
	return &models.Todo{
		ID:         id,
		Username:   username,
		Content:    "задача " + id,
		CreatedAt:  time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		CategoryID: &categoryID,
	}
}

func TestSQLite_Users(t *testing.T) {
	db := newSQLite(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	err := users.CreateUser(ctx, &models.User{ID: "u-other", Username: "alice", PasswordHash: "x", CreatedAt: time.Now()})
	require.ErrorIs(t, err, repository.ErrUsernameTaken)

	// Запись не изменилась
	alice, err := users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-alice", alice.ID)
	assert.False(t, alice.Disabled)

	require.NoError(t, users.SetDisabled(ctx, "alice", true))
	alice, err = users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, alice.Disabled)

	require.ErrorIs(t, users.SetDisabled(ctx, "ghost", true), repository.ErrUserNotFound)
}

func TestSQLite_Categories(t *testing.T) {
	db := newSQLite(t)
	categories := repository.NewCategoryRepository(db)
	todos := repository.NewTodoRepository(db)
	ctx := context.Background()

	outros, err := categories.GetOrCreateByName(ctx, "alice", models.DefaultCategoryName)
	require.NoError(t, err)
	again, err := categories.GetOrCreateByName(ctx, "alice", models.DefaultCategoryName)
	require.NoError(t, err)
	assert.Equal(t, outros.ID, again.ID, "служебная категория создается один раз")

	bobOutros, err := categories.GetOrCreateByName(ctx, "bob", models.DefaultCategoryName)
	require.NoError(t, err)
	assert.NotEqual(t, outros.ID, bobOutros.ID)

	work := &models.Category{ID: "c-work", Name: "Работа", Username: "alice", CreatedAt: time.Now().UTC()}
	require.NoError(t, categories.CreateCategory(ctx, work))

	t.Run("Повтор имени у того же пользователя", func(t *testing.T) {
		dup := &models.Category{ID: "c-dup", Name: "Работа", Username: "alice", CreatedAt: time.Now().UTC()}
		require.ErrorIs(t, categories.CreateCategory(ctx, dup), repository.ErrCategoryNameTaken)
	})

	t.Run("То же имя у другого пользователя", func(t *testing.T) {
		other := &models.Category{ID: "c-bob-work", Name: "Работа", Username: "bob", CreatedAt: time.Now().UTC()}
		require.NoError(t, categories.CreateCategory(ctx, other))
	})

	t.Run("Повтор ID", func(t *testing.T) {
		dup := &models.Category{ID: "c-work", Name: "Дом", Username: "alice", CreatedAt: time.Now().UTC()}
		require.ErrorIs(t, categories.CreateCategory(ctx, dup), repository.ErrCategoryExists)
	})

	t.Run("Список только своих", func(t *testing.T) {
		list, listErr := categories.ListCategoriesByOwner(ctx, "alice")
		require.NoError(t, listErr)
		require.Len(t, list, 2)
		for _, c := range list {
			assert.Equal(t, "alice", c.Username)
		}
	})

	t.Run("Переименование", func(t *testing.T) {
		work.Name = "Офис"
		require.NoError(t, categories.UpdateCategory(ctx, work))
		got, getErr := categories.GetCategoryByID(ctx, work.ID)
		require.NoError(t, getErr)
		assert.Equal(t, "Офис", got.Name)

		work.Name = models.DefaultCategoryName
		require.ErrorIs(t, categories.UpdateCategory(ctx, work), repository.ErrCategoryNameTaken)
		work.Name = "Офис"
	})

	t.Run("Удаление переносит задачи", func(t *testing.T) {
		require.NoError(t, todos.CreateTodo(ctx, newTodo("t1", "alice", work.ID, 1)))
		require.NoError(t, todos.CreateTodo(ctx, newTodo("t2", "alice", work.ID, 2)))

		require.NoError(t, categories.DeleteAndReassign(ctx, work, outros.ID))

		_, getErr := categories.GetCategoryByID(ctx, work.ID)
		require.ErrorIs(t, getErr, repository.ErrCategoryNotFound)

		list, listErr := todos.ListTodosByOwner(ctx, "alice")
		require.NoError(t, listErr)
		require.Len(t, list, 2)
		for _, todo := range list {
			require.NotNil(t, todo.CategoryID)
			assert.Equal(t, outros.ID, *todo.CategoryID)
		}

		require.ErrorIs(t, categories.DeleteAndReassign(ctx, work, outros.ID), repository.ErrCategoryNotFound)
	})
}

func TestSQLite_Todos(t *testing.T) {
	db := newSQLite(t)
	categories := repository.NewCategoryRepository(db)
	todos := repository.NewTodoRepository(db)
	ctx := context.Background()

	aliceOutros, err := categories.GetOrCreateByName(ctx, "alice", models.DefaultCategoryName)
	require.NoError(t, err)
	bobOutros, err := categories.GetOrCreateByName(ctx, "bob", models.DefaultCategoryName)
	require.NoError(t, err)

	require.NoError(t, todos.CreateTodo(ctx, newTodo("a2", "alice", aliceOutros.ID, 2)))
	require.NoError(t, todos.CreateTodo(ctx, newTodo("a1", "alice", aliceOutros.ID, 1)))
	require.NoError(t, todos.CreateTodo(ctx, newTodo("b1", "bob", bobOutros.ID, 1)))
	require.ErrorIs(t, todos.CreateTodo(ctx, newTodo("a1", "alice", aliceOutros.ID, 3)), repository.ErrTodoExists)

	t.Run("Список упорядочен по дате", func(t *testing.T) {
		list, listErr := todos.ListTodosByOwner(ctx, "alice")
		require.NoError(t, listErr)
		require.Len(t, list, 2)
		assert.Equal(t, "a1", list[0].ID)
		assert.Equal(t, "a2", list[1].ID)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), list[0].CreatedAt.UTC())
	})

	t.Run("Обновление не меняет владельца", func(t *testing.T) {
		todo, getErr := todos.GetTodoByID(ctx, "a1")
		require.NoError(t, getErr)
		todo.Completed = true
		todo.Content = "готово"
		require.NoError(t, todos.UpdateTodo(ctx, todo))

		got, getErr := todos.GetTodoByID(ctx, "a1")
		require.NoError(t, getErr)
		assert.True(t, got.Completed)
		assert.Equal(t, "готово", got.Content)
		assert.Equal(t, "alice", got.Username)

		stolen := *got
		stolen.Username = "bob"
		require.ErrorIs(t, todos.UpdateTodo(ctx, &stolen), repository.ErrTodoNotFound)
	})

	t.Run("Поиск по списку ID", func(t *testing.T) {
		list, listErr := todos.ListTodosByIDs(ctx, []string{"a1", "b1", "missing"})
		require.NoError(t, listErr)
		assert.Len(t, list, 2)
	})

	t.Run("Удаление не трогает чужие задачи", func(t *testing.T) {
		deleted, delErr := todos.DeleteTodos(ctx, "alice", []string{"a1", "b1"})
		require.NoError(t, delErr)
		assert.Equal(t, int64(1), deleted)

		_, getErr := todos.GetTodoByID(ctx, "b1")
		require.NoError(t, getErr)
		_, getErr = todos.GetTodoByID(ctx, "a1")
		require.ErrorIs(t, getErr, repository.ErrTodoNotFound)
	})
}

func TestSQLite_Exports(t *testing.T) {
	db := newSQLite(t)
	exports := repository.NewExportRepository(db)
	ctx := context.Background()

	_, err := exports.GetLatestExport(ctx, "alice")
	require.ErrorIs(t, err, repository.ErrExportNotFound)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, exports.CreateExport(ctx, &models.Export{
			ID:        id,
			Username:  "alice",
			ObjectKey: "exports/alice/" + id + ".json",
			Checksum:  "sum-" + id,
			SizeBytes: int64(10 * (i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	latest, err := exports.GetLatestExport(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "e3", latest.ID)
	assert.Equal(t, int64(30), latest.SizeBytes)

	page, err := exports.ListExportsByOwner(ctx, "alice", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "e2", page[0].ID)
	assert.Equal(t, "e1", page[1].ID)

	none, err := exports.ListExportsByOwner(ctx, "bob", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := exports.GetExportByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "exports/alice/e1.json", got.ObjectKey)

	_, err = exports.GetExportByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrExportNotFound)

	err = exports.CreateExport(ctx, &models.Export{
		ID: "e4", Username: "alice", ObjectKey: "exports/alice/e1.json", Checksum: "x", CreatedAt: base,
	})
	require.Error(t, err)
}

// Откат транзакции проверяется на моке: в SQLite ошибку в середине транзакции не получить.
func TestDeleteAndReassign_Rollback(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := repository.NewCategoryRepository(sqlx.NewDb(mockDB, "postgres"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE todos SET category_id = $1 WHERE category_id = $2 AND username = $3`)).
		WithArgs("c-outros", "c-work", "alice").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1 AND username = $2`)).
		WithArgs("c-work", "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.DeleteAndReassign(context.Background(),
		&models.Category{ID: "c-work", Username: "alice"}, "c-outros")
	require.ErrorIs(t, err, repository.ErrCategoryNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
