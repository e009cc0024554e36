package models

import "time"

// Export описывает снимок данных пользователя, сохраненный в объектном хранилище.
// Каждый вызов экспорта создает новую версию, старые версии остаются доступны.
type Export struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	ObjectKey string    `db:"object_key" json:"object_key"` // Ключ файла в S3/MinIO
	Checksum  string    `db:"checksum" json:"checksum"`     // SHA256 содержимого
	SizeBytes int64     `db:"size_bytes" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OwnerUsername возвращает владельца снимка.
func (e *Export) OwnerUsername() string {
	return e.Username
}

// ExportDocument - содержимое снимка: категории пользователя вместе с задачами.
type ExportDocument struct {
	Username   string              `json:"username"`
	ExportedAt time.Time           `json:"exported_at"`
	Categories []CategoryWithTodos `json:"categories"`
}
