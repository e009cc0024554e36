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

// TodoService определяет операции над задачами текущего пользователя.
type TodoService interface {
	List(ctx context.Context, user *models.User) ([]models.Todo, error)
	Get(ctx context.Context, user *models.User, id string) (*models.Todo, error)
	Create(ctx context.Context, user *models.User, req models.CreateTodoRequest) (*models.Todo, error)
	Update(ctx context.Context, user *models.User, id string, req models.UpdateTodoRequest) (*models.Todo, error)
	Delete(ctx context.Context, user *models.User, id string) (*models.Todo, error)
	DeleteMany(ctx context.Context, user *models.User, ids []string) ([]models.Todo, error)
}

var _ TodoService = (*todoService)(nil)

type todoService struct {
	todos      repository.TodoRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewTodoService создает сервис задач.
func NewTodoService(todos repository.TodoRepository, categories repository.CategoryRepository) TodoService {
	return &todoService{todos: todos, categories: categories, now: time.Now}
}

// List возвращает только задачи пользователя: фильтрация выполняется в запросе к БД.
func (s *todoService) List(ctx context.Context, user *models.User) ([]models.Todo, error) {
	todos, err := s.todos.ListTodosByOwner(ctx, user.Username)
	if err != nil {
		log.Printf("[TodoService] Ошибка получения задач пользователя '%s': %v", user.Username, err)
		return nil, errors.New("внутренняя ошибка сервера при получении задач")
	}
	return todos, nil
}

// Get возвращает задачу, если она принадлежит пользователю.
func (s *todoService) Get(ctx context.Context, user *models.User, id string) (*models.Todo, error) {
	todo, err := s.todos.GetTodoByID(ctx, id)
	if err != nil {
		return nil, mapTodoRepoError(err)
	}
	if err = Authorize(todo, user); err != nil {
		log.Printf("[TodoService] Пользователь '%s' запросил чужую задачу %s", user.Username, id)
		return nil, err
	}
	return todo, nil
}

// Create создает задачу от имени пользователя.
// Без category_id задача попадает в служебную категорию пользователя.
func (s *todoService) Create(
	ctx context.Context,
	user *models.User,
	req models.CreateTodoRequest,
) (*models.Todo, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content не может быть пустым", ErrInvalidInput)
	}

	id, err := normalizeID(req.ID)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseDate(req.CreatedAt, s.now)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, user, req.CategoryID)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{
		ID:         id,
		Username:   user.Username,
		Content:    req.Content,
		Completed:  req.Completed,
		CreatedAt:  createdAt,
		CategoryID: &categoryID,
	}
	err = s.todos.CreateTodo(ctx, todo)
	if errors.Is(err, repository.ErrTodoExists) && !s.ownsTodo(ctx, user, todo.ID) {
		// ID занят чужой задачей: выдаем новый, конфликт сообщается только владельцу
		todo.ID = uuid.NewString()
		err = s.todos.CreateTodo(ctx, todo)
	}
	if err != nil {
		return nil, mapTodoRepoError(err)
	}

	log.Printf("[TodoService] Пользователь '%s' создал задачу %s", user.Username, todo.ID)
	return todo, nil
}

// Update применяет к задаче только переданные поля.
func (s *todoService) Update(
	ctx context.Context,
	user *models.User,
	id string,
	req models.UpdateTodoRequest,
) (*models.Todo, error) {
	todo, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, fmt.Errorf("%w: content не может быть пустым", ErrInvalidInput)
		}
		todo.Content = *req.Content
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	if req.CategoryID != nil {
		categoryID, resolveErr := s.resolveCategory(ctx, user, req.CategoryID)
		if resolveErr != nil {
			return nil, resolveErr
		}
		todo.CategoryID = &categoryID
	}

	if err = s.todos.UpdateTodo(ctx, todo); err != nil {
		return nil, mapTodoRepoError(err)
	}
	return todo, nil
}

// Delete удаляет одну задачу пользователя и возвращает ее.
func (s *todoService) Delete(ctx context.Context, user *models.User, id string) (*models.Todo, error) {
	todo, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if _, err = s.todos.DeleteTodos(ctx, user.Username, []string{todo.ID}); err != nil {
		return nil, mapTodoRepoError(err)
	}
	return todo, nil
}

// DeleteMany удаляет несколько задач. Если хотя бы одна из найденных задач чужая,
// ничего не удаляется.
func (s *todoService) DeleteMany(ctx context.Context, user *models.User, ids []string) ([]models.Todo, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: не передан ни один ID", ErrInvalidInput)
	}

	found, err := s.todos.ListTodosByIDs(ctx, ids)
	if err != nil {
		return nil, mapTodoRepoError(err)
	}
	if len(found) == 0 {
		return nil, ErrTodoNotFound
	}

	foundIDs := make([]string, 0, len(found))
	for i := range found {
		if err = Authorize(&found[i], user); err != nil {
			log.Printf("[TodoService] Пользователь '%s' пытался удалить чужую задачу %s", user.Username, found[i].ID)
			return nil, err
		}
		foundIDs = append(foundIDs, found[i].ID)
	}

	if _, err = s.todos.DeleteTodos(ctx, user.Username, foundIDs); err != nil {
		return nil, mapTodoRepoError(err)
	}

	log.Printf("[TodoService] Пользователь '%s' удалил задач: %d", user.Username, len(found))
	return found, nil
}

// resolveCategory проверяет категорию задачи или подставляет служебную.
func (s *todoService) resolveCategory(ctx context.Context, user *models.User, categoryID *string) (string, error) {
	if categoryID == nil || *categoryID == "" {
		category, err := s.categories.GetOrCreateByName(ctx, user.Username, models.DefaultCategoryName)
		if err != nil {
			log.Printf("[TodoService] Ошибка получения служебной категории для '%s': %v", user.Username, err)
			return "", errors.New("внутренняя ошибка сервера при получении категории")
		}
		return category.ID, nil
	}

	category, err := s.categories.GetCategoryByID(ctx, *categoryID)
	if err != nil {
		return "", mapCategoryRepoError(err)
	}
	if err = Authorize(category, user); err != nil {
		return "", err
	}
	return category.ID, nil
}

// ownsTodo сообщает, принадлежит ли задача с указанным ID пользователю.
func (s *todoService) ownsTodo(ctx context.Context, user *models.User, id string) bool {
	existing, err := s.todos.GetTodoByID(ctx, id)
	return err == nil && existing.Username == user.Username
}

func mapTodoRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTodoNotFound):
		return ErrTodoNotFound
	case errors.Is(err, repository.ErrTodoExists):
		return ErrTodoExists
	default:
		log.Printf("[TodoService] Ошибка репозитория задач: %v", err)
		return errors.New("внутренняя ошибка сервера при работе с задачами")
	}
}

// normalizeID проверяет переданный клиентом ID или генерирует новый.
func normalizeID(raw string) (string, error) {
	if raw == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: id должен быть UUID", ErrInvalidInput)
	}
	return id.String(), nil
}

// parseDate разбирает дату YYYY-MM-DD; пустая строка означает текущий момент.
func parseDate(raw string, now func() time.Time) (time.Time, error) {
	if raw == "" {
		return now().UTC(), nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: неверный формат даты, используйте YYYY-MM-DD", ErrInvalidInput)
	}
	return t.UTC(), nil
}
