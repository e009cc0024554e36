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
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(ctx context.Context, username, name, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error) // Возвращает JWT токен или ошибку
}

// Убедимся, что authService удовлетворяет интерфейсу AuthService.
var _ AuthService = (*authService)(nil)

type authService struct {
	creds  *CredentialStore
	tokens TokenIssuer
	ttl    time.Duration
	// Хеш случайного пароля: сравнение с ним выравнивает время ответа
	// для несуществующих пользователей.
	dummyHash string
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(creds *CredentialStore, tokens TokenIssuer, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	dummyHash, err := creds.HashPassword(uuid.NewString())
	if err != nil {
		log.Printf("[AuthService] Не удалось подготовить фиктивный хеш: %v", err)
	}
	return &authService{
		creds:     creds,
		tokens:    tokens,
		ttl:       ttl,
		dummyHash: dummyHash,
	}
}

// Register регистрирует нового пользователя.
func (s *authService) Register(ctx context.Context, username, name, password string) (*models.User, error) {
	user, err := s.creds.Create(ctx, username, name, password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			log.Printf("[AuthService] Попытка регистрации с занятым именем: %s", username)
			return nil, ErrUsernameTaken
		}
		if errors.Is(err, ErrInvalidInput) {
			log.Printf("[AuthService] Некорректные данные регистрации '%s': %v", username, err)
			return nil, err
		}
		log.Printf("[AuthService] Непредвиденная ошибка при регистрации '%s': %v", username, err)
		return nil, errors.New("внутренняя ошибка сервера при создании пользователя")
	}

	log.Printf("[AuthService] Пользователь '%s' успешно зарегистрирован", username)
	return user, nil
}

// Login аутентифицирует пользователя и возвращает JWT токен.
// Отключенный пользователь вход проходит: его останавливает AccessGuard.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.creds.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.creds.VerifyPassword(password, s.dummyHash)
			log.Printf("[AuthService] Попытка входа несуществующего пользователя: %s", username)
			return "", ErrInvalidCredentials // Общая ошибка для несуществующего пользователя и неверного пароля
		}
		log.Printf("[AuthService] Ошибка репозитория при поиске '%s': %v", username, err)
		return "", errors.New("внутренняя ошибка сервера при поиске пользователя")
	}

	if !s.creds.VerifyPassword(password, user.PasswordHash) {
		log.Printf("[AuthService] Неверный пароль для пользователя: %s", username)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, s.ttl)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации JWT для '%s': %v", username, err)
		return "", fmt.Errorf("внутренняя ошибка сервера при генерации токена: %w", err)
	}

	log.Printf("[AuthService] Пользователь '%s' успешно аутентифицирован", username)
	return token, nil
}
