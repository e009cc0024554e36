package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv очищает переменные окружения конфигурации на время теста.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envConfigFile, "")
	for _, env := range envByKey {
		t.Setenv(env, "")
	}
}

func TestParseFlags(t *testing.T) {
	t.Run("Все параметры из флагов", func(t *testing.T) {
		clearEnv(t)
		cfg, err := parseFlags([]string{
			"--port=9000",
			"--cert-file=cert.pem",
			"--key-file=key.pem",
			"--database-driver=sqlite",
			"--database-dsn=file:todo.db",
			"--secret-key=s3cr3t",
			"--algorithm=HS512",
			"--access-token-expire-minutes=15",
			"--cors-origins=http://a.example, http://b.example",
			"--minio-endpoint=localhost:9000",
			"--minio-use-ssl",
		})
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, "cert.pem", cfg.CertFile)
		assert.Equal(t, "key.pem", cfg.KeyFile)
		assert.Equal(t, "sqlite", cfg.DatabaseDriver)
		assert.Equal(t, "file:todo.db", cfg.DatabaseDSN)
		assert.Equal(t, "s3cr3t", cfg.SecretKey)
		assert.Equal(t, "HS512", cfg.Algorithm)
		assert.Equal(t, 15, cfg.AccessTokenExpireMinutes)
		assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
		assert.True(t, cfg.exportEnabled())
		assert.True(t, cfg.Minio.UseSSL)
	})

	t.Run("Значения по умолчанию", func(t *testing.T) {
		clearEnv(t)
		cfg, err := parseFlags([]string{"--database-dsn=postgres://...", "--secret-key=k"})
		require.NoError(t, err)
		assert.Equal(t, defaultServerPort, cfg.Port)
		assert.Equal(t, "postgres", cfg.DatabaseDriver)
		assert.Equal(t, "HS256", cfg.Algorithm)
		assert.Equal(t, 30, cfg.AccessTokenExpireMinutes)
		assert.Equal(t, defaultCORSOrigins, cfg.CORSOrigins)
		assert.False(t, cfg.exportEnabled())
		assert.Equal(t, 30*time.Minute, cfg.tokenConfig().TTL)
	})

	t.Run("Все параметры из переменных окружения", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envServerPort, "9090")
		t.Setenv(envDatabaseDSN, "env_postgres://...")
		t.Setenv(envSecretKey, "env-secret")
		t.Setenv(envAccessTokenExpireMinutes, "5")
		t.Setenv(envMinioEndpoint, "minio:9000")
		t.Setenv(envMinioBucket, "bucket")

		cfg, err := parseFlags(nil)
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "env_postgres://...", cfg.DatabaseDSN)
		assert.Equal(t, []byte("env-secret"), cfg.tokenConfig().SecretKey)
		assert.Equal(t, 5*time.Minute, cfg.tokenConfig().TTL)
		assert.Equal(t, "minio:9000", cfg.minioConfig().Endpoint)
		assert.Equal(t, "bucket", cfg.minioConfig().BucketName)
	})

	t.Run("Флаги переопределяют переменные окружения", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envServerPort, "9090")
		t.Setenv(envDatabaseDSN, "env_postgres://...")
		t.Setenv(envSecretKey, "env-secret")

		cfg, err := parseFlags([]string{"--port=8081", "--database-dsn=flag_postgres://..."})
		require.NoError(t, err)
		assert.Equal(t, "8081", cfg.Port)
		assert.Equal(t, "flag_postgres://...", cfg.DatabaseDSN)
		assert.Equal(t, "env-secret", cfg.SecretKey)
	})

	t.Run("YAML-файл ниже окружения и флагов", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := []byte(`port: "7000"
database_driver: sqlite
database_dsn: "file:yaml.db"
secret_key: yaml-secret
access_token_expire_minutes: 60
cors_origins:
  - http://yaml.example
minio:
  endpoint: yaml-minio:9000
  bucket: yaml-bucket
`)
		require.NoError(t, os.WriteFile(path, data, 0o600))
		t.Setenv(envSecretKey, "env-secret")

		cfg, err := parseFlags([]string{"--config=" + path, "--port=7001"})
		require.NoError(t, err)
		assert.Equal(t, "7001", cfg.Port)
		assert.Equal(t, "sqlite", cfg.DatabaseDriver)
		assert.Equal(t, "file:yaml.db", cfg.DatabaseDSN)
		assert.Equal(t, "env-secret", cfg.SecretKey)
		assert.Equal(t, 60, cfg.AccessTokenExpireMinutes)
		assert.Equal(t, []string{"http://yaml.example"}, cfg.CORSOrigins)
		assert.Equal(t, "yaml-minio:9000", cfg.Minio.Endpoint)
		assert.Equal(t, "yaml-bucket", cfg.Minio.Bucket)
	})

	t.Run("Путь к YAML из переменной окружения", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("database_dsn: x\nsecret_key: y\n"), 0o600))
		t.Setenv(envConfigFile, path)

		cfg, err := parseFlags(nil)
		require.NoError(t, err)
		assert.Equal(t, "x", cfg.DatabaseDSN)
	})

	t.Run("Несуществующий YAML-файл", func(t *testing.T) {
		clearEnv(t)
		_, err := parseFlags([]string{"--config=/nonexistent/config.yaml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка чтения файла конфигурации")
	})

	t.Run("Отсутствует database-dsn", func(t *testing.T) {
		clearEnv(t)
		_, err := parseFlags([]string{"--secret-key=k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "не указана строка подключения к БД")
	})

	t.Run("Отсутствует secret-key", func(t *testing.T) {
		clearEnv(t)
		_, err := parseFlags([]string{"--database-dsn=x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "не указан секретный ключ")
	})

	t.Run("Неизвестный драйвер", func(t *testing.T) {
		clearEnv(t)
		_, err := parseFlags([]string{"--database-dsn=x", "--secret-key=k", "--database-driver=mysql"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "неподдерживаемый драйвер БД")
	})

	t.Run("Только сертификат без ключа", func(t *testing.T) {
		clearEnv(t)
		_, err := parseFlags([]string{"--database-dsn=x", "--secret-key=k", "--cert-file=cert.pem"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "и сертификат, и ключ")
	})

	t.Run("Некорректное число минут в окружении", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envAccessTokenExpireMinutes, "много")
		_, err := parseFlags([]string{"--database-dsn=x", "--secret-key=k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), envAccessTokenExpireMinutes)
	})

	t.Run("Неизвестный флаг", func(t *testing.T) {
		clearEnv(t)
		_, err := parseFlags([]string{"--no-such-flag"})
		require.Error(t, err)
	})
}
