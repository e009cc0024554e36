package handlers

import (
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/maynagashev/todo-api/internal/middleware"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/services"
)

const tokenTypeBearer = "bearer"

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service services.AuthService // Зависимость от интерфейса, а не конкретной реализации
	tokens  services.TokenVerifier
	ttl     time.Duration
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s services.AuthService, tokens services.TokenVerifier, ttl time.Duration) *AuthHandler {
	return &AuthHandler{service: s, tokens: tokens, ttl: ttl}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, "AuthHandler:Register", &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		log.Printf("[AuthHandler:Register] Пустое имя пользователя или пароль при регистрации")
		http.Error(w, "Имя пользователя и пароль не могут быть пустыми", http.StatusBadRequest)
		return
	}

	log.Printf("[AuthHandler:Register] Попытка регистрации пользователя: %s", req.Username)

	user, err := h.service.Register(r.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		writeServiceError(w, "AuthHandler:Register", err)
		return
	}

	writeJSON(w, "AuthHandler:Register", http.StatusCreated, user)
}

// Token выдает токен доступа. Принимает форму OAuth2 password flow или JSON.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	if req.Username == "" || req.Password == "" {
		log.Printf("[AuthHandler:Token] Пустое имя пользователя или пароль при входе")
		http.Error(w, "Имя пользователя и пароль не могут быть пустыми", http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, "AuthHandler:Token", err)
		return
	}

	writeJSON(w, "AuthHandler:Token", http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(h.ttl / time.Second),
	})
}

func (h *AuthHandler) readCredentials(w http.ResponseWriter, r *http.Request) (models.LoginRequest, bool) {
	var req models.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			log.Printf("[AuthHandler:Token] Ошибка разбора формы: %v", err)
			http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
			return req, false
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		return req, true
	}
	return req, decodeJSON(w, r, "AuthHandler:Token", &req)
}

// Me возвращает текущего пользователя.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "AuthHandler:Me")
	if !ok {
		return
	}
	writeJSON(w, "AuthHandler:Me", http.StatusOK, user)
}

// VerifyToken отвечает true, если переданный Bearer-токен валиден и не истек.
// Пользователь при этом не проверяется.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}
	_, err := h.tokens.Verify(token)
	writeJSON(w, "AuthHandler:VerifyToken", http.StatusOK, err == nil)
}
