package mocks

import (
	"context"

	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// TodoRepository - мок repository.TodoRepository.
type TodoRepository struct {
	mock.Mock
}

var _ repository.TodoRepository = (*TodoRepository)(nil)

func (m *TodoRepository) CreateTodo(ctx context.Context, todo *models.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *TodoRepository) GetTodoByID(ctx context.Context, id string) (*models.Todo, error) {
	args := m.Called(ctx, id)
	todo, _ := args.Get(0).(*models.Todo)
	return todo, args.Error(1)
}

func (m *TodoRepository) ListTodosByOwner(ctx context.Context, username string) ([]models.Todo, error) {
	args := m.Called(ctx, username)
	todos, _ := args.Get(0).([]models.Todo)
	return todos, args.Error(1)
}

func (m *TodoRepository) ListTodosByIDs(ctx context.Context, ids []string) ([]models.Todo, error) {
	args := m.Called(ctx, ids)
	todos, _ := args.Get(0).([]models.Todo)
	return todos, args.Error(1)
}

func (m *TodoRepository) UpdateTodo(ctx context.Context, todo *models.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *TodoRepository) DeleteTodos(ctx context.Context, username string, ids []string) (int64, error) {
	args := m.Called(ctx, username, ids)
	return args.Get(0).(int64), args.Error(1)
}
