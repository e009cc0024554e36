package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/services"
)

// CategoryHandler обрабатывает HTTP-запросы к категориям.
type CategoryHandler struct {
	categoryService services.CategoryService
}

// NewCategoryHandler создает новый экземпляр CategoryHandler.
func NewCategoryHandler(cs services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: cs}
}

// messageResponse - ответ без данных, только с сообщением.
type messageResponse struct {
	Message string `json:"message"`
}

// List возвращает категории текущего пользователя.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "CategoryHandler:List")
	if !ok {
		return
	}

	categories, err := h.categoryService.List(r.Context(), user)
	if err != nil {
		writeServiceError(w, "CategoryHandler:List", err)
		return
	}
	writeJSON(w, "CategoryHandler:List", http.StatusOK, categories)
}

// ListWithTodos возвращает категории вместе с задачами.
func (h *CategoryHandler) ListWithTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "CategoryHandler:ListWithTodos")
	if !ok {
		return
	}

	categories, err := h.categoryService.ListWithTodos(r.Context(), user)
	if err != nil {
		writeServiceError(w, "CategoryHandler:ListWithTodos", err)
		return
	}
	writeJSON(w, "CategoryHandler:ListWithTodos", http.StatusOK, categories)
}

// Get возвращает категорию по ID.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "CategoryHandler:Get")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "CategoryHandler:Get", err)
		return
	}
	writeJSON(w, "CategoryHandler:Get", http.StatusOK, category)
}

// Create создает категорию; в ответе категория с пустым списком задач.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "CategoryHandler:Create")
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if !decodeJSON(w, r, "CategoryHandler:Create", &req) {
		return
	}

	category, err := h.categoryService.Create(r.Context(), user, req)
	if err != nil {
		writeServiceError(w, "CategoryHandler:Create", err)
		return
	}
	writeJSON(w, "CategoryHandler:Create", http.StatusCreated,
		models.CategoryWithTodos{Category: *category, Todos: []models.Todo{}})
}

// Update переименовывает категорию.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "CategoryHandler:Update")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if !decodeJSON(w, r, "CategoryHandler:Update", &req) {
		return
	}

	category, err := h.categoryService.Update(r.Context(), user, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, "CategoryHandler:Update", err)
		return
	}
	writeJSON(w, "CategoryHandler:Update", http.StatusOK, category)
}

// Delete удаляет категорию.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "CategoryHandler:Delete")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "CategoryHandler:Delete", err)
		return
	}
	writeJSON(w, "CategoryHandler:Delete", http.StatusOK, messageResponse{Message: "Категория удалена"})
}
