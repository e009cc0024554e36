package models

import "time"

// DefaultCategoryName - имя служебной категории, в которую попадают задачи без категории.
const DefaultCategoryName = "Outros"

// Category представляет категорию задач пользователя.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OwnerUsername возвращает имя владельца категории.
func (c *Category) OwnerUsername() string {
	return c.Username
}

// IsDefault сообщает, является ли категория служебной "Outros".
func (c *Category) IsDefault() bool {
	return c.Name == DefaultCategoryName
}

// CategoryWithTodos - категория вместе с задачами.
type CategoryWithTodos struct {
	Category
	Todos []Todo `json:"todos"`
}

// CreateCategoryRequest представляет тело запроса на создание категории.
type CreateCategoryRequest struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"` // YYYY-MM-DD
}

// UpdateCategoryRequest - частичное обновление категории.
type UpdateCategoryRequest struct {
	Name *string `json:"name,omitempty"`
}
