package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/todo-api/internal/models"
)

const exportColumns = `id, username, object_key, checksum, size_bytes, created_at`

// ExportRepository определяет методы для работы с метаданными снимков.
type ExportRepository interface {
	CreateExport(ctx context.Context, export *models.Export) error
	ListExportsByOwner(ctx context.Context, username string, limit, offset int) ([]models.Export, error)
	GetExportByID(ctx context.Context, id string) (*models.Export, error)
	GetLatestExport(ctx context.Context, username string) (*models.Export, error)
}

type sqlExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository создает новый экземпляр репозитория снимков.
func NewExportRepository(db *sqlx.DB) ExportRepository {
	return &sqlExportRepository{db: db}
}

// CreateExport сохраняет метаданные нового снимка.
func (r *sqlExportRepository) CreateExport(ctx context.Context, export *models.Export) error {
	query := r.db.Rebind(`INSERT INTO exports (` + exportColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		export.ID, export.Username, export.ObjectKey, export.Checksum, export.SizeBytes, export.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Printf("[ExportRepo] Ошибка создания снимка: ключ объекта '%s' уже существует", export.ObjectKey)
			return fmt.Errorf("снимок с ключом объекта '%s' уже существует: %w", export.ObjectKey, err)
		}
		log.Printf("[ExportRepo] Непредвиденная ошибка при создании снимка '%s': %v", export.ObjectKey, err)
		return fmt.Errorf("ошибка выполнения запроса на создание снимка: %w", err)
	}

	log.Printf("[ExportRepo] Снимок %s создан для пользователя '%s'", export.ID, export.Username)
	return nil
}

// ListExportsByOwner возвращает снимки пользователя, сначала новые.
func (r *sqlExportRepository) ListExportsByOwner(
	ctx context.Context,
	username string,
	limit,
	offset int,
) ([]models.Export, error) {
	query := r.db.Rebind(`SELECT ` + exportColumns + ` FROM exports
	          WHERE username = ?
	          ORDER BY created_at DESC
	          LIMIT ? OFFSET ?`)

	exports := make([]models.Export, 0, limit)
	if err := r.db.SelectContext(ctx, &exports, query, username, limit, offset); err != nil {
		log.Printf("[ExportRepo] Ошибка при получении списка снимков для '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка снимков: %w", err)
	}
	return exports, nil
}

// GetExportByID находит снимок по ID без учета владельца.
func (r *sqlExportRepository) GetExportByID(ctx context.Context, id string) (*models.Export, error) {
	query := r.db.Rebind(`SELECT ` + exportColumns + ` FROM exports WHERE id = ?`)
	var export models.Export

	if err := r.db.GetContext(ctx, &export, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[ExportRepo] Снимок с ID %s не найден", id)
			return nil, ErrExportNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение снимка: %w", err)
	}
	return &export, nil
}

// GetLatestExport возвращает последний снимок пользователя.
func (r *sqlExportRepository) GetLatestExport(ctx context.Context, username string) (*models.Export, error) {
	query := r.db.Rebind(`SELECT ` + exportColumns + ` FROM exports
	          WHERE username = ? ORDER BY created_at DESC LIMIT 1`)
	var export models.Export

	if err := r.db.GetContext(ctx, &export, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExportNotFound
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение снимка: %w", err)
	}
	return &export, nil
}
