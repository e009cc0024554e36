package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/todo-api/internal/services"
)

const (
	defaultExportsLimit = 20
	maxExportsLimit     = 100
)

// ExportHandler обрабатывает HTTP-запросы, связанные со снимками данных.
type ExportHandler struct {
	exportService services.ExportService // nil, если объектное хранилище не настроено
}

// NewExportHandler создает новый экземпляр ExportHandler.
func NewExportHandler(es services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: es}
}

// Create сохраняет новый снимок категорий и задач текущего пользователя.
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "ExportHandler:Create")
	if !ok {
		return
	}
	if h.exportService == nil {
		writeServiceError(w, "ExportHandler:Create", services.ErrExportDisabled)
		return
	}

	log.Printf("[ExportHandler:Create] Запрос на экспорт от пользователя '%s'", user.Username)

	export, err := h.exportService.Create(r.Context(), user)
	if err != nil {
		writeServiceError(w, "ExportHandler:Create", err)
		return
	}
	writeJSON(w, "ExportHandler:Create", http.StatusCreated, export)
}

// List возвращает снимки пользователя постранично.
func (h *ExportHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "ExportHandler:List")
	if !ok {
		return
	}
	if h.exportService == nil {
		writeServiceError(w, "ExportHandler:List", services.ErrExportDisabled)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > maxExportsLimit {
		limit = defaultExportsLimit
	}
	if offset < 0 {
		offset = 0
	}

	exports, err := h.exportService.List(r.Context(), user, limit, offset)
	if err != nil {
		writeServiceError(w, "ExportHandler:List", err)
		return
	}
	writeJSON(w, "ExportHandler:List", http.StatusOK, exports)
}

// Download отдает содержимое снимка. Вместо ID можно передать "latest".
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, "ExportHandler:Download")
	if !ok {
		return
	}
	if h.exportService == nil {
		writeServiceError(w, "ExportHandler:Download", services.ErrExportDisabled)
		return
	}

	id := chi.URLParam(r, "id")
	reader, export, err := h.exportService.Download(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, "ExportHandler:Download", err)
		return
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Printf("[ExportHandler:Download] Ошибка закрытия reader: %v", closeErr)
		}
	}()

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="todos-%s.json"`, export.ID))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.FormatInt(export.SizeBytes, 10))
	w.Header().Set("X-Export-Checksum", export.Checksum)

	if _, err = io.Copy(w, reader); err != nil {
		log.Printf("[ExportHandler:Download] Ошибка копирования снимка %s в ответ: %v", export.ID, err)
		return
	}
	log.Printf("[ExportHandler:Download] Снимок %s отправлен пользователю '%s'", export.ID, user.Username)
}
