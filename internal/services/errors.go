package services

import "errors"

// Кастомные ошибки сервисного слоя.
// Обработчики HTTP сопоставляют их с кодами ответа.
var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
	ErrInvalidToken       = errors.New("невалидный токен")
	ErrUnauthorized       = errors.New("требуется аутентификация")
	ErrForbidden          = errors.New("доступ запрещен")
	ErrInactiveUser       = errors.New("пользователь отключен")
	ErrInvalidInput       = errors.New("некорректные данные запроса")

	ErrTodoNotFound          = errors.New("задача не найдена")
	ErrTodoExists            = errors.New("задача с таким ID уже существует")
	ErrCategoryNotFound      = errors.New("категория не найдена")
	ErrCategoryExists        = errors.New("категория с таким ID уже существует")
	ErrCategoryNameTaken     = errors.New("категория с таким именем уже существует")
	ErrDefaultCategoryLocked = errors.New("служебную категорию нельзя переименовать или удалить")
	ErrExportNotFound        = errors.New("снимок данных не найден")
	ErrExportDisabled        = errors.New("экспорт не настроен")
)
