package handlers_test

import (
	"context"
	"io"
	"net/http"

	"github.com/maynagashev/todo-api/internal/middleware"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// --- Mock AuthService --- //

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, name, password string) (*models.User, error) {
	args := m.Called(ctx, username, name, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

// --- Mock TokenVerifier --- //

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// --- Mock TodoService --- //

type MockTodoService struct {
	mock.Mock
}

func (m *MockTodoService) List(ctx context.Context, user *models.User) ([]models.Todo, error) {
	args := m.Called(ctx, user)
	todos, _ := args.Get(0).([]models.Todo)
	return todos, args.Error(1)
}

func (m *MockTodoService) Get(ctx context.Context, user *models.User, id string) (*models.Todo, error) {
	args := m.Called(ctx, user, id)
	todo, _ := args.Get(0).(*models.Todo)
	return todo, args.Error(1)
}

func (m *MockTodoService) Create(
	ctx context.Context,
	user *models.User,
	req models.CreateTodoRequest,
) (*models.Todo, error) {
	args := m.Called(ctx, user, req)
	todo, _ := args.Get(0).(*models.Todo)
	return todo, args.Error(1)
}

func (m *MockTodoService) Update(
	ctx context.Context,
	user *models.User,
	id string,
	req models.UpdateTodoRequest,
) (*models.Todo, error) {
	args := m.Called(ctx, user, id, req)
	todo, _ := args.Get(0).(*models.Todo)
	return todo, args.Error(1)
}

func (m *MockTodoService) Delete(ctx context.Context, user *models.User, id string) (*models.Todo, error) {
	args := m.Called(ctx, user, id)
	todo, _ := args.Get(0).(*models.Todo)
	return todo, args.Error(1)
}

func (m *MockTodoService) DeleteMany(ctx context.Context, user *models.User, ids []string) ([]models.Todo, error) {
	args := m.Called(ctx, user, ids)
	todos, _ := args.Get(0).([]models.Todo)
	return todos, args.Error(1)
}

// --- Mock CategoryService --- //

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context, user *models.User) ([]models.Category, error) {
	args := m.Called(ctx, user)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *MockCategoryService) ListWithTodos(ctx context.Context, user *models.User) ([]models.CategoryWithTodos, error) {
	args := m.Called(ctx, user)
	categories, _ := args.Get(0).([]models.CategoryWithTodos)
	return categories, args.Error(1)
}

func (m *MockCategoryService) Get(ctx context.Context, user *models.User, id string) (*models.Category, error) {
	args := m.Called(ctx, user, id)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *MockCategoryService) Create(
	ctx context.Context,
	user *models.User,
	req models.CreateCategoryRequest,
) (*models.Category, error) {
	args := m.Called(ctx, user, req)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *MockCategoryService) Update(
	ctx context.Context,
	user *models.User,
	id string,
	req models.UpdateCategoryRequest,
) (*models.Category, error) {
	args := m.Called(ctx, user, id, req)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, user *models.User, id string) error {
	args := m.Called(ctx, user, id)
	return args.Error(0)
}

// --- Mock ExportService --- //

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Create(ctx context.Context, user *models.User) (*models.Export, error) {
	args := m.Called(ctx, user)
	export, _ := args.Get(0).(*models.Export)
	return export, args.Error(1)
}

func (m *MockExportService) List(
	ctx context.Context,
	user *models.User,
	limit, offset int,
) ([]models.Export, error) {
	args := m.Called(ctx, user, limit, offset)
	exports, _ := args.Get(0).([]models.Export)
	return exports, args.Error(1)
}

func (m *MockExportService) Download(
	ctx context.Context,
	user *models.User,
	id string,
) (io.ReadCloser, *models.Export, error) {
	args := m.Called(ctx, user, id)
	reader, _ := args.Get(0).(io.ReadCloser)
	export, _ := args.Get(1).(*models.Export)
	return reader, export, args.Error(2)
}

// withUser имитирует middleware.Authenticator: кладет пользователя в контекст.
func withUser(user *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
