package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/maynagashev/todo-api/internal/models"
)

// Ошибки, соответствующие статусам ответа сервера.
var (
	ErrAuthorization = errors.New("ошибка авторизации")
	ErrForbidden     = errors.New("доступ запрещен")
	ErrNotFound      = errors.New("не найдено")
	ErrConflict      = errors.New("конфликт")
	ErrBadRequest    = errors.New("неверный запрос")
	ErrUnavailable   = errors.New("сервис недоступен")
)

// Client определяет интерфейс для взаимодействия с API сервера задач.
type Client interface {
	// Register регистрирует нового пользователя.
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	// Login получает токен и сохраняет его для последующих запросов.
	Login(ctx context.Context, username, password string) (string, error)
	// SetAuthToken устанавливает JWT токен для аутентифицированных запросов.
	SetAuthToken(token string)

	Me(ctx context.Context) (*models.User, error)
	ListTodos(ctx context.Context) ([]models.Todo, error)
	CreateTodo(ctx context.Context, req models.CreateTodoRequest) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id string, req models.UpdateTodoRequest) (*models.Todo, error)
	DeleteTodos(ctx context.Context, ids ...string) ([]models.Todo, error)
	ListCategoriesWithTodos(ctx context.Context) ([]models.CategoryWithTodos, error)
	CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.CategoryWithTodos, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateExport(ctx context.Context) (*models.Export, error)
	ListExports(ctx context.Context, limit, offset int) ([]models.Export, error)
	// DownloadExport скачивает снимок; id может быть "latest".
	// Вызывающая сторона должна закрыть возвращенный io.ReadCloser.
	DownloadExport(ctx context.Context, id string) (io.ReadCloser, string, error)
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

var _ Client = (*httpClient)(nil)

// NewHTTPClient создает новый экземпляр API клиента.
func NewHTTPClient(baseURL string, hc *http.Client) Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &httpClient{baseURL: baseURL, httpClient: hc}
}

func (c *httpClient) SetAuthToken(token string) {
	c.authToken = token
}

func (c *httpClient) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodPost, "/register", nil, req, http.StatusCreated, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login отправляет форму OAuth2 password flow на /token.
func (c *httpClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := c.newRequest(ctx, http.MethodPost, "/token", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokenResp models.TokenResponse
	if err = c.do(req, http.StatusOK, &tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("сервер вернул пустой токен")
	}

	c.authToken = tokenResp.AccessToken
	return tokenResp.AccessToken, nil
}

func (c *httpClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, nil, http.StatusOK, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *httpClient) ListTodos(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	if err := c.doJSON(ctx, http.MethodGet, "/todos", nil, nil, http.StatusOK, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *httpClient) CreateTodo(ctx context.Context, req models.CreateTodoRequest) (*models.Todo, error) {
	var todo models.Todo
	if err := c.doJSON(ctx, http.MethodPost, "/todos", nil, req, http.StatusCreated, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *httpClient) UpdateTodo(ctx context.Context, id string, req models.UpdateTodoRequest) (*models.Todo, error) {
	var todo models.Todo
	if err := c.doJSON(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), nil, req, http.StatusOK, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *httpClient) DeleteTodos(ctx context.Context, ids ...string) ([]models.Todo, error) {
	query := url.Values{"ids": {strings.Join(ids, ",")}}
	var deleted []models.Todo
	if err := c.doJSON(ctx, http.MethodDelete, "/todos", query, nil, http.StatusOK, &deleted); err != nil {
		return nil, err
	}
	return deleted, nil
}

func (c *httpClient) ListCategoriesWithTodos(ctx context.Context) ([]models.CategoryWithTodos, error) {
	var categories []models.CategoryWithTodos
	if err := c.doJSON(ctx, http.MethodGet, "/categories_with_todos", nil, nil, http.StatusOK, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *httpClient) CreateCategory(
	ctx context.Context,
	req models.CreateCategoryRequest,
) (*models.CategoryWithTodos, error) {
	var category models.CategoryWithTodos
	if err := c.doJSON(ctx, http.MethodPost, "/categories", nil, req, http.StatusCreated, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *httpClient) DeleteCategory(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, http.StatusOK, nil)
}

func (c *httpClient) CreateExport(ctx context.Context) (*models.Export, error) {
	var export models.Export
	if err := c.doJSON(ctx, http.MethodPost, "/exports", nil, nil, http.StatusCreated, &export); err != nil {
		return nil, err
	}
	return &export, nil
}

// ListExports получает список снимков; нулевые limit и offset не передаются.
func (c *httpClient) ListExports(ctx context.Context, limit, offset int) ([]models.Export, error) {
	query := url.Values{}
	if limit > 0 {
		query.Add("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Add("offset", strconv.Itoa(offset))
	}

	var exports []models.Export
	if err := c.doJSON(ctx, http.MethodGet, "/exports", query, nil, http.StatusOK, &exports); err != nil {
		return nil, err
	}
	return exports, nil
}

// DownloadExport возвращает тело снимка и его контрольную сумму из X-Export-Checksum.
func (c *httpClient) DownloadExport(ctx context.Context, id string) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/exports/"+url.PathEscape(id)+"/download", nil, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка выполнения запроса на скачивание: %w", err)
	}
	// НЕ закрываем resp.Body при успехе, вызывающая сторона должна это сделать
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", statusError(resp)
	}
	return resp.Body, resp.Header.Get("X-Export-Checksum"), nil
}

func (c *httpClient) newRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body io.Reader,
) (*http.Request, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования URL %s: %w", path, err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса %s %s: %w", method, path, err)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	return req, nil
}

// doJSON отправляет payload в JSON (если он не nil) и декодирует ответ в out (если он не nil).
func (c *httpClient) doJSON(
	ctx context.Context,
	method, path string,
	query url.Values,
	payload any,
	expectedStatus int,
	out any,
) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("ошибка кодирования запроса: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, expectedStatus, out)
}

func (c *httpClient) do(req *http.Request, expectedStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка декодирования ответа: %w", err)
	}
	return nil
}

// statusError превращает неуспешный ответ в ошибку с текстом сервера.
func statusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	message := strings.TrimSpace(string(detail))

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = ErrAuthorization
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = ErrBadRequest
	case http.StatusServiceUnavailable:
		sentinel = ErrUnavailable
	default:
		return fmt.Errorf("неожиданный ответ сервера: статус %d: %s", resp.StatusCode, message)
	}
	if message == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}
