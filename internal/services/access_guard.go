package services

import (
	"context"
	"errors"
	"log"

	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
)

// UserFinder находит пользователя по имени.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// AccessGuard по токену запроса определяет активного пользователя.
//
// Переходы (каждый запрос завершается за один шаг):
//
//	нет токена               -> ErrUnauthorized
//	токен невалиден/истек    -> ErrUnauthorized
//	пользователь не найден   -> ErrUnauthorized
//	пользователь отключен    -> ErrForbidden
//	иначе                    -> пользователь
type AccessGuard struct {
	tokens TokenVerifier
	users  UserFinder
}

// NewAccessGuard создает AccessGuard.
func NewAccessGuard(tokens TokenVerifier, users UserFinder) *AccessGuard {
	return &AccessGuard{tokens: tokens, users: users}
}

// Authenticate проверяет токен и возвращает активного пользователя.
func (g *AccessGuard) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	username, err := g.tokens.Verify(token)
	if err != nil {
		log.Printf("[AccessGuard] Токен отклонен: %v", err)
		return nil, ErrUnauthorized
	}

	user, err := g.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AccessGuard] Пользователь из токена не найден: %s", username)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if user.Disabled {
		log.Printf("[AccessGuard] Пользователь '%s' отключен", username)
		return nil, errors.Join(ErrForbidden, ErrInactiveUser)
	}

	return user, nil
}
