package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/maynagashev/todo-api/internal/middleware"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/services"
)

// statusFor сопоставляет ошибку сервисного слоя с HTTP-статусом.
// Для неизвестных ошибок возвращает 0.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTodoNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrExportNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTodoExists),
		errors.Is(err, services.ErrCategoryExists),
		errors.Is(err, services.ErrCategoryNameTaken),
		errors.Is(err, services.ErrDefaultCategoryLocked):
		return http.StatusConflict
	case errors.Is(err, services.ErrExportDisabled):
		return http.StatusServiceUnavailable
	default:
		return 0
	}
}

// writeServiceError отправляет клиенту ответ, соответствующий ошибке сервиса.
// Текст внутренних ошибок клиенту не передается.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == 0 {
		log.Printf("[%s] Внутренняя ошибка: %v", op, err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	log.Printf("[%s] %d: %v", op, status, err)
	http.Error(w, err.Error(), status)
}

// writeJSON кодирует ответ в JSON с указанным статусом.
func writeJSON(w http.ResponseWriter, op string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Статус уже отправлен, остается только залогировать.
		log.Printf("[%s] Ошибка кодирования ответа: %v", op, err)
	}
}

// decodeJSON декодирует тело запроса; при ошибке сам отвечает 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("[%s] Ошибка декодирования запроса: %v", op, err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return false
	}
	return true
}

// currentUser достает пользователя, положенного в контекст middleware.Authenticator.
func currentUser(w http.ResponseWriter, r *http.Request, op string) (*models.User, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		log.Printf("[%s] Не удалось получить пользователя из контекста", op)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return nil, false
	}
	return user, true
}
