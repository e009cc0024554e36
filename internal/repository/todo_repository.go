package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/todo-api/internal/models"
)

const todoColumns = `id, username, content, completed, created_at, category_id`

// TodoRepository определяет методы для работы с задачами.
type TodoRepository interface {
	CreateTodo(ctx context.Context, todo *models.Todo) error
	GetTodoByID(ctx context.Context, id string) (*models.Todo, error)
	ListTodosByOwner(ctx context.Context, username string) ([]models.Todo, error)
	ListTodosByIDs(ctx context.Context, ids []string) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, todo *models.Todo) error
	DeleteTodos(ctx context.Context, username string, ids []string) (int64, error)
}

type sqlTodoRepository struct {
	db *sqlx.DB
}

// NewTodoRepository создает новый экземпляр репозитория задач.
func NewTodoRepository(db *sqlx.DB) TodoRepository {
	return &sqlTodoRepository{db: db}
}

// CreateTodo сохраняет новую задачу.
func (r *sqlTodoRepository) CreateTodo(ctx context.Context, todo *models.Todo) error {
	query := r.db.Rebind(`INSERT INTO todos (` + todoColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.Username, todo.Content, todo.Completed, todo.CreatedAt, todo.CategoryID)
	if err != nil {
		if isUniqueViolation(err) {
			log.Printf("[TodoRepo] Задача с ID %s уже существует", todo.ID)
			return ErrTodoExists
		}
		log.Printf("[TodoRepo] Ошибка создания задачи для '%s': %v", todo.Username, err)
		return fmt.Errorf("ошибка выполнения запроса на создание задачи: %w", err)
	}

	log.Printf("[TodoRepo] Задача %s создана для пользователя '%s'", todo.ID, todo.Username)
	return nil
}

// GetTodoByID находит задачу по ID без учета владельца.
// Проверка владельца выполняется на уровне сервиса.
func (r *sqlTodoRepository) GetTodoByID(ctx context.Context, id string) (*models.Todo, error) {
	query := r.db.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE id = ?`)
	var todo models.Todo

	if err := r.db.GetContext(ctx, &todo, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		log.Printf("[TodoRepo] Ошибка при поиске задачи %s: %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение задачи: %w", err)
	}
	return &todo, nil
}

// ListTodosByOwner возвращает все задачи пользователя.
func (r *sqlTodoRepository) ListTodosByOwner(ctx context.Context, username string) ([]models.Todo, error) {
	query := r.db.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE username = ? ORDER BY created_at, id`)
	todos := []models.Todo{}

	if err := r.db.SelectContext(ctx, &todos, query, username); err != nil {
		log.Printf("[TodoRepo] Ошибка получения задач пользователя '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка задач: %w", err)
	}
	return todos, nil
}

// ListTodosByIDs возвращает задачи с указанными ID (любых владельцев).
func (r *sqlTodoRepository) ListTodosByIDs(ctx context.Context, ids []string) ([]models.Todo, error) {
	todos := []models.Todo{}
	if len(ids) == 0 {
		return todos, nil
	}

	query, args, err := sqlx.In(`SELECT `+todoColumns+` FROM todos WHERE id IN (?) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса: %w", err)
	}

	if err = r.db.SelectContext(ctx, &todos, r.db.Rebind(query), args...); err != nil {
		log.Printf("[TodoRepo] Ошибка получения задач по списку ID: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение задач: %w", err)
	}
	return todos, nil
}

// UpdateTodo сохраняет изменяемые поля задачи. Владелец не меняется.
func (r *sqlTodoRepository) UpdateTodo(ctx context.Context, todo *models.Todo) error {
	query := r.db.Rebind(`UPDATE todos SET content = ?, completed = ?, category_id = ?
	          WHERE id = ? AND username = ?`)

	res, err := r.db.ExecContext(ctx, query,
		todo.Content, todo.Completed, todo.CategoryID, todo.ID, todo.Username)
	if err != nil {
		log.Printf("[TodoRepo] Ошибка обновления задачи %s: %v", todo.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление задачи: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа измененных строк: %w", err)
	}
	if affected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// DeleteTodos удаляет задачи пользователя одним запросом.
// Чужие задачи из списка не затрагиваются благодаря условию по владельцу.
func (r *sqlTodoRepository) DeleteTodos(ctx context.Context, username string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM todos WHERE username = ? AND id IN (?)`, username, ids)
	if err != nil {
		return 0, fmt.Errorf("ошибка построения запроса: %w", err)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		log.Printf("[TodoRepo] Ошибка удаления задач пользователя '%s': %v", username, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на удаление задач: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения числа удаленных строк: %w", err)
	}

	log.Printf("[TodoRepo] Удалено задач пользователя '%s': %d", username, affected)
	return affected, nil
}
