package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/services"
)

// Тип для ключа контекста.
type contextKey string

// Ключ для хранения пользователя в контексте.
const UserKey contextKey = "user"

// UserAuthenticator определяет пользователя по токену. Реализуется services.AccessGuard.
type UserAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticator проверяет Bearer-токен и кладет активного пользователя в контекст запроса.
func Authenticator(guard UserAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				log.Println("[AuthMiddleware] Заголовок Authorization отсутствует или имеет неверный формат")
				unauthorized(w, "Требуется аутентификация")
				return
			}

			user, err := guard.Authenticate(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, services.ErrUnauthorized):
				unauthorized(w, "Невалидный токен")
				return
			case errors.Is(err, services.ErrForbidden):
				http.Error(w, "Пользователь отключен", http.StatusForbidden)
				return
			default:
				log.Printf("[AuthMiddleware] Ошибка проверки пользователя: %v", err)
				http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken извлекает токен из заголовка "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") || headerParts[1] == "" {
		return "", false
	}
	return headerParts[1], true
}

// GetUserFromContext извлекает пользователя из контекста запроса.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, msg, http.StatusUnauthorized)
}
