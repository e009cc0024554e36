package mocks

import (
	"context"

	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// CategoryRepository - мок repository.CategoryRepository.
type CategoryRepository struct {
	mock.Mock
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

func (m *CategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *CategoryRepository) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *CategoryRepository) ListCategoriesByOwner(ctx context.Context, username string) ([]models.Category, error) {
	args := m.Called(ctx, username)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *CategoryRepository) GetOrCreateByName(ctx context.Context, username, name string) (*models.Category, error) {
	args := m.Called(ctx, username, name)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *CategoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *CategoryRepository) DeleteAndReassign(ctx context.Context, category *models.Category, fallbackID string) error {
	args := m.Called(ctx, category, fallbackID)
	return args.Error(0)
}
