package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
)

// CategoryService определяет операции над категориями текущего пользователя.
type CategoryService interface {
	List(ctx context.Context, user *models.User) ([]models.Category, error)
	ListWithTodos(ctx context.Context, user *models.User) ([]models.CategoryWithTodos, error)
	Get(ctx context.Context, user *models.User, id string) (*models.Category, error)
	Create(ctx context.Context, user *models.User, req models.CreateCategoryRequest) (*models.Category, error)
	Update(ctx context.Context, user *models.User, id string, req models.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, user *models.User, id string) error
}

var _ CategoryService = (*categoryService)(nil)

type categoryService struct {
	categories repository.CategoryRepository
	todos      repository.TodoRepository
	now        func() time.Time
}

// NewCategoryService создает сервис категорий.
func NewCategoryService(
	categories repository.CategoryRepository,
	todos repository.TodoRepository,
) CategoryService {
	return &categoryService{categories: categories, todos: todos, now: time.Now}
}

// List возвращает категории пользователя. Служебная категория создается при первом обращении.
func (s *categoryService) List(ctx context.Context, user *models.User) ([]models.Category, error) {
	if _, err := s.ensureDefault(ctx, user); err != nil {
		return nil, err
	}
	categories, err := s.categories.ListCategoriesByOwner(ctx, user.Username)
	if err != nil {
		return nil, mapCategoryRepoError(err)
	}
	return categories, nil
}

// ListWithTodos возвращает категории вместе с задачами.
// Служебная категория попадает в ответ, только если в ней есть задачи.
// Задачи без существующей категории показываются в служебной.
func (s *categoryService) ListWithTodos(ctx context.Context, user *models.User) ([]models.CategoryWithTodos, error) {
	fallback, err := s.ensureDefault(ctx, user)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.ListCategoriesByOwner(ctx, user.Username)
	if err != nil {
		return nil, mapCategoryRepoError(err)
	}
	todos, err := s.todos.ListTodosByOwner(ctx, user.Username)
	if err != nil {
		return nil, mapTodoRepoError(err)
	}

	result := make([]models.CategoryWithTodos, 0, len(categories))
	index := make(map[string]int, len(categories))
	for _, c := range categories {
		index[c.ID] = len(result)
		result = append(result, models.CategoryWithTodos{Category: c, Todos: []models.Todo{}})
	}
	if _, ok := index[fallback.ID]; !ok {
		index[fallback.ID] = len(result)
		result = append(result, models.CategoryWithTodos{Category: *fallback, Todos: []models.Todo{}})
	}

	for _, todo := range todos {
		pos, ok := -1, false
		if todo.CategoryID != nil {
			pos, ok = index[*todo.CategoryID]
		}
		if !ok {
			pos = index[fallback.ID]
		}
		result[pos].Todos = append(result[pos].Todos, todo)
	}

	filtered := result[:0]
	for _, c := range result {
		if c.ID == fallback.ID && len(c.Todos) == 0 {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

// Get возвращает категорию, если она принадлежит пользователю.
func (s *categoryService) Get(ctx context.Context, user *models.User, id string) (*models.Category, error) {
	category, err := s.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, mapCategoryRepoError(err)
	}
	if err = Authorize(category, user); err != nil {
		log.Printf("[CategoryService] Пользователь '%s' запросил чужую категорию %s", user.Username, id)
		return nil, err
	}
	return category, nil
}

// Create создает категорию пользователя. Имя уникально в пределах пользователя.
func (s *categoryService) Create(
	ctx context.Context,
	user *models.User,
	req models.CreateCategoryRequest,
) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name не может быть пустым", ErrInvalidInput)
	}
	id, err := normalizeID(req.ID)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseDate(req.CreatedAt, s.now)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:        id,
		Name:      name,
		Username:  user.Username,
		CreatedAt: createdAt,
	}
	err = s.categories.CreateCategory(ctx, category)
	if errors.Is(err, repository.ErrCategoryExists) && !s.ownsCategory(ctx, user, category.ID) {
		category.ID = uuid.NewString()
		err = s.categories.CreateCategory(ctx, category)
	}
	if err != nil {
		return nil, mapCategoryRepoError(err)
	}

	log.Printf("[CategoryService] Пользователь '%s' создал категорию '%s'", user.Username, name)
	return category, nil
}

// Update переименовывает категорию. Служебную категорию переименовать нельзя.
func (s *categoryService) Update(
	ctx context.Context,
	user *models.User,
	id string,
	req models.UpdateCategoryRequest,
) (*models.Category, error) {
	category, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return category, nil
	}

	name := strings.TrimSpace(*req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name не может быть пустым", ErrInvalidInput)
	}
	if name == category.Name {
		return category, nil
	}
	if category.IsDefault() || name == models.DefaultCategoryName {
		return nil, ErrDefaultCategoryLocked
	}

	category.Name = name
	if err = s.categories.UpdateCategory(ctx, category); err != nil {
		return nil, mapCategoryRepoError(err)
	}
	return category, nil
}

// Delete удаляет категорию, перенося ее задачи в служебную.
func (s *categoryService) Delete(ctx context.Context, user *models.User, id string) error {
	category, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	if category.IsDefault() {
		return ErrDefaultCategoryLocked
	}

	fallback, err := s.ensureDefault(ctx, user)
	if err != nil {
		return err
	}
	if err = s.categories.DeleteAndReassign(ctx, category, fallback.ID); err != nil {
		return mapCategoryRepoError(err)
	}

	log.Printf("[CategoryService] Пользователь '%s' удалил категорию %s", user.Username, id)
	return nil
}

func (s *categoryService) ensureDefault(ctx context.Context, user *models.User) (*models.Category, error) {
	category, err := s.categories.GetOrCreateByName(ctx, user.Username, models.DefaultCategoryName)
	if err != nil {
		log.Printf("[CategoryService] Ошибка получения служебной категории для '%s': %v", user.Username, err)
		return nil, errors.New("внутренняя ошибка сервера при получении категории")
	}
	return category, nil
}

// ownsCategory сообщает, принадлежит ли категория с указанным ID пользователю.
func (s *categoryService) ownsCategory(ctx context.Context, user *models.User, id string) bool {
	existing, err := s.categories.GetCategoryByID(ctx, id)
	return err == nil && existing.Username == user.Username
}

func mapCategoryRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repository.ErrCategoryExists):
		return ErrCategoryExists
	case errors.Is(err, repository.ErrCategoryNameTaken):
		return ErrCategoryNameTaken
	default:
		log.Printf("[CategoryService] Ошибка репозитория категорий: %v", err)
		return errors.New("внутренняя ошибка сервера при работе с категориями")
	}
}
