package mocks

import (
	"context"
	"io"

	"github.com/maynagashev/todo-api/internal/storage"
	"github.com/stretchr/testify/mock"
)

// FileStorage - мок storage.FileStorage.
type FileStorage struct {
	mock.Mock
}

var _ storage.FileStorage = (*FileStorage)(nil)

func (m *FileStorage) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	args := m.Called(ctx, objectKey, reader, size, contentType)
	return args.Error(0)
}

func (m *FileStorage) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectKey)
	reader, _ := args.Get(0).(io.ReadCloser)
	return reader, args.Error(1)
}
