package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/maynagashev/todo-api/internal/storage"
)

// LatestExportID - псевдо-ID для обращения к последнему снимку.
const LatestExportID = "latest"

const exportContentType = "application/json"

// ExportService сохраняет снимки задач пользователя в объектное хранилище.
type ExportService interface {
	Create(ctx context.Context, user *models.User) (*models.Export, error)
	List(ctx context.Context, user *models.User, limit, offset int) ([]models.Export, error)
	Download(ctx context.Context, user *models.User, id string) (io.ReadCloser, *models.Export, error)
}

// categoryLister - часть CategoryService, нужная для построения снимка.
type categoryLister interface {
	ListWithTodos(ctx context.Context, user *models.User) ([]models.CategoryWithTodos, error)
}

var _ ExportService = (*exportService)(nil)

type exportService struct {
	categories categoryLister
	exports    repository.ExportRepository
	files      storage.FileStorage
	now        func() time.Time
}

// NewExportService создает сервис экспорта.
func NewExportService(
	categories categoryLister,
	exports repository.ExportRepository,
	files storage.FileStorage,
) ExportService {
	return &exportService{categories: categories, exports: exports, files: files, now: time.Now}
}

// Create формирует JSON-снимок категорий с задачами, загружает его и сохраняет метаданные.
func (s *exportService) Create(ctx context.Context, user *models.User) (*models.Export, error) {
	categories, err := s.categories.ListWithTodos(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := models.ExportDocument{
		Username:   user.Username,
		ExportedAt: now,
		Categories: categories,
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации снимка: %w", err)
	}

	sum := sha256.Sum256(payload)
	export := &models.Export{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Checksum:  hex.EncodeToString(sum[:]),
		SizeBytes: int64(len(payload)),
		CreatedAt: now,
	}
	export.ObjectKey = fmt.Sprintf("exports/%s/%s.json", user.Username, export.ID)

	err = s.files.UploadFile(ctx, export.ObjectKey, bytes.NewReader(payload), export.SizeBytes, exportContentType)
	if err != nil {
		log.Printf("[ExportService] Ошибка загрузки снимка для '%s': %v", user.Username, err)
		return nil, errors.New("внутренняя ошибка сервера при загрузке снимка")
	}

	if err = s.exports.CreateExport(ctx, export); err != nil {
		// Объект в хранилище остается без метаданных; он не виден пользователю.
		log.Printf("[ExportService] Ошибка сохранения метаданных снимка '%s': %v", export.ObjectKey, err)
		return nil, errors.New("внутренняя ошибка сервера при сохранении снимка")
	}

	log.Printf("[ExportService] Снимок %s (%d байт) создан для '%s'", export.ID, export.SizeBytes, user.Username)
	return export, nil
}

// List возвращает снимки пользователя, сначала новые.
func (s *exportService) List(ctx context.Context, user *models.User, limit, offset int) ([]models.Export, error) {
	exports, err := s.exports.ListExportsByOwner(ctx, user.Username, limit, offset)
	if err != nil {
		log.Printf("[ExportService] Ошибка получения списка снимков для '%s': %v", user.Username, err)
		return nil, errors.New("внутренняя ошибка сервера при получении списка снимков")
	}
	return exports, nil
}

// Download возвращает содержимое снимка. id == LatestExportID означает последний снимок.
func (s *exportService) Download(
	ctx context.Context,
	user *models.User,
	id string,
) (io.ReadCloser, *models.Export, error) {
	export, err := s.lookup(ctx, user, id)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.files.DownloadFile(ctx, export.ObjectKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil, ErrExportNotFound
		}
		log.Printf("[ExportService] Ошибка скачивания снимка '%s': %v", export.ObjectKey, err)
		return nil, nil, errors.New("внутренняя ошибка сервера при скачивании снимка")
	}
	return reader, export, nil
}

func (s *exportService) lookup(ctx context.Context, user *models.User, id string) (*models.Export, error) {
	var (
		export *models.Export
		err    error
	)
	if id == LatestExportID {
		export, err = s.exports.GetLatestExport(ctx, user.Username)
	} else {
		export, err = s.exports.GetExportByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrExportNotFound) {
			return nil, ErrExportNotFound
		}
		log.Printf("[ExportService] Ошибка получения снимка %s: %v", id, err)
		return nil, errors.New("внутренняя ошибка сервера при получении снимка")
	}

	if err = Authorize(export, user); err != nil {
		return nil, err
	}
	return export, nil
}
