package models

import "time"

// DateLayout - формат дат, которые клиент может передать в created_at.
const DateLayout = "2006-01-02"

// Todo представляет задачу пользователя.
type Todo struct {
	ID         string    `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"` // Владелец, не меняется после создания
	Content    string    `db:"content" json:"content"`
	Completed  bool      `db:"completed" json:"completed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	CategoryID *string   `db:"category_id" json:"category_id"` // может быть NULL
}

// OwnerUsername возвращает имя владельца задачи.
func (t *Todo) OwnerUsername() string {
	return t.Username
}

// CreateTodoRequest представляет тело запроса на создание задачи.
// ID и CreatedAt необязательны: если не заданы, генерируются сервером.
type CreateTodoRequest struct {
	ID         string  `json:"id,omitempty"`
	Content    string  `json:"content"`
	Completed  bool    `json:"completed"`
	CreatedAt  string  `json:"created_at,omitempty"` // YYYY-MM-DD
	CategoryID *string `json:"category_id,omitempty"`
}

// UpdateTodoRequest - частичное обновление задачи.
// nil означает "поле не меняется".
type UpdateTodoRequest struct {
	Content    *string `json:"content,omitempty"`
	Completed  *bool   `json:"completed,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
}
