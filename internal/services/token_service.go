package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Значения по умолчанию для JWT.
const (
	DefaultSigningAlgorithm = "HS256"
	DefaultTokenTTL         = 30 * time.Minute
	tokenIssuer             = "todo-api"
)

// TokenConfig - неизменяемые параметры подписи токенов.
// Создается один раз при старте процесса и передается в конструкторы.
type TokenConfig struct {
	SecretKey []byte
	Algorithm string        // HS256, HS384 или HS512
	TTL       time.Duration // Время жизни токена доступа
}

// TokenIssuer выпускает токены.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// TokenVerifier проверяет токены и возвращает subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// TokenService выпускает и проверяет подписанные JWT с ограниченным сроком жизни.
// Состояния не хранит: валидность определяется только подписью и exp.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption настраивает TokenService.
type TokenOption func(*TokenService)

// WithClock подменяет источник текущего времени (для тестов).
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// Убедимся, что TokenService удовлетворяет интерфейсам.
var (
	_ TokenIssuer   = (*TokenService)(nil)
	_ TokenVerifier = (*TokenService)(nil)
)

// NewTokenService создает сервис токенов. Допускаются только HMAC-алгоритмы.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, errors.New("не задан секретный ключ для подписи токенов")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = DefaultSigningAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("неподдерживаемый алгоритм подписи: %q", alg)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s := &TokenService{
		secret: cfg.SecretKey,
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL возвращает настроенное время жизни токена.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue создает токен с sub = subject и exp = now + ttl.
// Время в JWT хранится в секундах, поэтому now округляется вниз до секунды
// и iat и exp отличаются ровно на ttl.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("пустой subject")
	}
	now := s.now().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, алгоритм и срок действия токена.
// Токен с exp <= now считается истекшим, допуска на рассинхронизацию часов нет.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
