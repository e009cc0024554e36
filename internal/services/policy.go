package services

import "github.com/maynagashev/todo-api/internal/models"

// Owned - ресурс, принадлежащий пользователю.
type Owned interface {
	OwnerUsername() string
}

// Authorize разрешает доступ к ресурсу только его владельцу.
func Authorize(resource Owned, user *models.User) error {
	if user == nil || resource.OwnerUsername() != user.Username {
		return ErrForbidden
	}
	return nil
}
