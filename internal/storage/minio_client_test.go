package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrObjectNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("обертка: %w", ErrObjectNotFound)))
	assert.False(t, IsNotFound(errors.New("другая ошибка")))
	assert.False(t, IsNotFound(nil))
}

func TestMinioClient_wrapGetError(t *testing.T) {
	c := &MinioClient{bucketName: "todo-exports"}

	err := c.wrapGetError("exports/alice/1.json", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound})
	require.ErrorIs(t, err, ErrObjectNotFound)

	err = c.wrapGetError("exports/alice/1.json", minio.ErrorResponse{Code: "AccessDenied"})
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

// Сервер, который на любой запрос отвечает NoSuchKey в формате S3.
func newNoSuchKeyServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`+
			`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
	}))
}

func TestMinioClient_DownloadMissingObject(t *testing.T) {
	server := newNoSuchKeyServer(t)
	defer server.Close()

	client, err := minio.New(strings.TrimPrefix(server.URL, "http://"), &minio.Options{Region: "us-east-1"})
	require.NoError(t, err)
	c := &MinioClient{client: client, bucketName: "todo-exports"}

	_, err = c.DownloadFile(context.Background(), "exports/alice/missing.json")
	require.ErrorIs(t, err, ErrObjectNotFound)
}
