package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Ограничение bcrypt на длину пароля.
const maxPasswordBytes = 72

// CredentialStore владеет учетными записями и хешами паролей.
type CredentialStore struct {
	users repository.UserRepository
	cost  int
	now   func() time.Time
}

// NewCredentialStore создает хранилище учетных данных поверх репозитория пользователей.
func NewCredentialStore(users repository.UserRepository) *CredentialStore {
	return &CredentialStore{
		users: users,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

// FindByUsername возвращает пользователя или ErrUserNotFound репозитория.
func (c *CredentialStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.users.GetUserByUsername(ctx, username)
}

// VerifyPassword сравнивает пароль с bcrypt-хешем.
func (c *CredentialStore) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashPassword возвращает bcrypt-хеш пароля.
// Пароль длиннее 72 байт отклоняется с ErrInvalidInput.
func (c *CredentialStore) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), c.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: пароль длиннее %d байт", ErrInvalidInput, maxPasswordBytes)
	}
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return string(hashed), nil
}

// Create хеширует пароль и сохраняет нового пользователя.
// Возвращает ErrUsernameTaken, если имя уже занято; существующая запись не меняется.
func (c *CredentialStore) Create(ctx context.Context, username, displayName, plainPassword string) (*models.User, error) {
	hash, err := c.HashPassword(plainPassword)
	if err != nil {
		log.Printf("[CredentialStore] Ошибка хеширования пароля для '%s': %v", username, err)
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         displayName,
		PasswordHash: hash,
		CreatedAt:    c.now().UTC(),
	}

	if err = c.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return user, nil
}
