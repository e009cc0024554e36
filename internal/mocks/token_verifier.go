package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// TokenVerifier - мок services.TokenVerifier.
type TokenVerifier struct {
	mock.Mock
}

func (m *TokenVerifier) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// TokenIssuer - мок services.TokenIssuer.
type TokenIssuer struct {
	mock.Mock
}

func (m *TokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	args := m.Called(subject, ttl)
	return args.String(0), args.Error(1)
}
