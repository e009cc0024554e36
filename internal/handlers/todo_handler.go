package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/services"
)

// TodoHandler обрабатывает HTTP-запросы к задачам.
type TodoHandler struct {
	todoService services.TodoService
}

// NewTodoHandler создает новый экземпляр TodoHandler.
func NewTodoHandler(ts services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: ts}
}

// List возвращает задачи текущего пользователя.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "TodoHandler:List")
	if !ok {
		return
	}

	todos, err := h.todoService.List(r.Context(), user)
	if err != nil {
		writeServiceError(w, "TodoHandler:List", err)
		return
	}
	writeJSON(w, "TodoHandler:List", http.StatusOK, todos)
}

// Get возвращает задачу по ID.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "TodoHandler:Get")
	if !ok {
		return
	}

	todo, err := h.todoService.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "TodoHandler:Get", err)
		return
	}
	writeJSON(w, "TodoHandler:Get", http.StatusOK, todo)
}

// Create создает задачу от имени текущего пользователя.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "TodoHandler:Create")
	if !ok {
		return
	}

	var req models.CreateTodoRequest
	if !decodeJSON(w, r, "TodoHandler:Create", &req) {
		return
	}

	todo, err := h.todoService.Create(r.Context(), user, req)
	if err != nil {
		writeServiceError(w, "TodoHandler:Create", err)
		return
	}
	writeJSON(w, "TodoHandler:Create", http.StatusCreated, todo)
}

// Update частично обновляет задачу.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "TodoHandler:Update")
	if !ok {
		return
	}

	var req models.UpdateTodoRequest
	if !decodeJSON(w, r, "TodoHandler:Update", &req) {
		return
	}

	todo, err := h.todoService.Update(r.Context(), user, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, "TodoHandler:Update", err)
		return
	}
	writeJSON(w, "TodoHandler:Update", http.StatusOK, todo)
}

// Delete удаляет одну задачу и возвращает ее.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "TodoHandler:Delete")
	if !ok {
		return
	}

	todo, err := h.todoService.Delete(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "TodoHandler:Delete", err)
		return
	}
	writeJSON(w, "TodoHandler:Delete", http.StatusOK, todo)
}

// DeleteMany удаляет задачи по списку ?ids=a,b,c и возвращает удаленные.
func (h *TodoHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "TodoHandler:DeleteMany")
	if !ok {
		return
	}

	ids := parseIDList(r.URL.Query()["ids"])
	if len(ids) == 0 {
		log.Printf("[TodoHandler:DeleteMany] Пустой список ID от пользователя '%s'", user.Username)
		http.Error(w, "Не передан ни один ID. Передайте список ID через запятую.", http.StatusUnprocessableEntity)
		return
	}

	deleted, err := h.todoService.DeleteMany(r.Context(), user, ids)
	if err != nil {
		writeServiceError(w, "TodoHandler:DeleteMany", err)
		return
	}
	writeJSON(w, "TodoHandler:DeleteMany", http.StatusOK, deleted)
}

// parseIDList разбирает значения вида "a,b" и повторяющиеся параметры, пропуская пустые.
func parseIDList(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
