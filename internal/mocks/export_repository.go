package mocks

import (
	"context"

	"github.com/maynagashev/todo-api/internal/models"
	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// ExportRepository - мок repository.ExportRepository.
type ExportRepository struct {
	mock.Mock
}

var _ repository.ExportRepository = (*ExportRepository)(nil)

func (m *ExportRepository) CreateExport(ctx context.Context, export *models.Export) error {
	args := m.Called(ctx, export)
	return args.Error(0)
}

func (m *ExportRepository) ListExportsByOwner(
	ctx context.Context,
	username string,
	limit, offset int,
) ([]models.Export, error) {
	args := m.Called(ctx, username, limit, offset)
	exports, _ := args.Get(0).([]models.Export)
	return exports, args.Error(1)
}

func (m *ExportRepository) GetExportByID(ctx context.Context, id string) (*models.Export, error) {
	args := m.Called(ctx, id)
	export, _ := args.Get(0).(*models.Export)
	return export, args.Error(1)
}

func (m *ExportRepository) GetLatestExport(ctx context.Context, username string) (*models.Export, error) {
	args := m.Called(ctx, username)
	export, _ := args.Get(0).(*models.Export)
	return export, args.Error(1)
}
