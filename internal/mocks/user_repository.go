package mocks

import (
	"context"

	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// UserRepository - мок repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) SetDisabled(ctx context.Context, username string, disabled bool) error {
	args := m.Called(ctx, username, disabled)
	return args.Error(0)
}
