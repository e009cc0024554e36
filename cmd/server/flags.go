package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/maynagashev/todo-api/internal/services"
	"github.com/maynagashev/todo-api/internal/storage"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerPort               = "8080"
	defaultAccessTokenExpireMinutes = 30
	defaultMinioBucket              = "todo-exports"

	// Переменные окружения.
	envConfigFile               = "CONFIG_FILE"
	envServerPort               = "SERVER_PORT"
	envTLSCertFile              = "TLS_CERT_FILE"
	envTLSKeyFile               = "TLS_KEY_FILE"
	envDatabaseDriver           = "DATABASE_DRIVER"
	envDatabaseDSN              = "DATABASE_DSN"
	envSecretKey                = "SECRET_KEY" //nolint:gosec // Имя переменной окружения, а не секрет
	envAlgorithm                = "JWT_ALGORITHM"
	envAccessTokenExpireMinutes = "ACCESS_TOKEN_EXPIRE_MINUTES"
	envCORSOrigins              = "CORS_ORIGINS"
	envMinioEndpoint            = "MINIO_ENDPOINT"
	envMinioUser                = "MINIO_USER"
	envMinioPassword            = "MINIO_PASSWORD" //nolint:gosec // Имя переменной окружения
	envMinioBucket              = "MINIO_BUCKET"
	envMinioUseSSL              = "MINIO_USE_SSL"
)

// Имена флагов; они же ключи для переменных окружения.
const (
	keyPort                     = "port"
	keyCertFile                 = "cert-file"
	keyKeyFile                  = "key-file"
	keyDatabaseDriver           = "database-driver"
	keyDatabaseDSN              = "database-dsn"
	keySecretKey                = "secret-key"
	keyAlgorithm                = "algorithm"
	keyAccessTokenExpireMinutes = "access-token-expire-minutes"
	keyCORSOrigins              = "cors-origins"
	keyMinioEndpoint            = "minio-endpoint"
	keyMinioUser                = "minio-user"
	keyMinioPassword            = "minio-password"
	keyMinioBucket              = "minio-bucket"
	keyMinioUseSSL              = "minio-use-ssl"
)

var envByKey = map[string]string{
	keyPort:                     envServerPort,
	keyCertFile:                 envTLSCertFile,
	keyKeyFile:                  envTLSKeyFile,
	keyDatabaseDriver:           envDatabaseDriver,
	keyDatabaseDSN:              envDatabaseDSN,
	keySecretKey:                envSecretKey,
	keyAlgorithm:                envAlgorithm,
	keyAccessTokenExpireMinutes: envAccessTokenExpireMinutes,
	keyCORSOrigins:              envCORSOrigins,
	keyMinioEndpoint:            envMinioEndpoint,
	keyMinioUser:                envMinioUser,
	keyMinioPassword:            envMinioPassword,
	keyMinioBucket:              envMinioBucket,
	keyMinioUseSSL:              envMinioUseSSL,
}

// Источники CORS по умолчанию: локальный фронтенд и опубликованный клиент.
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"localhost:3000",
	"https://todo-list-web.vercel.app",
}

// minioSettings - настройки объектного хранилища для экспорта.
type minioSettings struct {
	Endpoint string `yaml:"endpoint"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Bucket   string `yaml:"bucket"`
	UseSSL   bool   `yaml:"use_ssl"`
}

// config хранит конфигурацию сервера. Создается один раз при старте и дальше не меняется.
type config struct {
	Port                     string        `yaml:"port"`
	CertFile                 string        `yaml:"cert_file"`
	KeyFile                  string        `yaml:"key_file"`
	DatabaseDriver           string        `yaml:"database_driver"`
	DatabaseDSN              string        `yaml:"database_dsn"`
	SecretKey                string        `yaml:"secret_key"`
	Algorithm                string        `yaml:"algorithm"`
	AccessTokenExpireMinutes int           `yaml:"access_token_expire_minutes"`
	CORSOrigins              []string      `yaml:"cors_origins"`
	Minio                    minioSettings `yaml:"minio"`
}

func defaultConfig() *config {
	return &config{
		Port:                     defaultServerPort,
		DatabaseDriver:           repository.DriverPostgres,
		Algorithm:                services.DefaultSigningAlgorithm,
		AccessTokenExpireMinutes: defaultAccessTokenExpireMinutes,
		CORSOrigins:              append([]string(nil), defaultCORSOrigins...),
		Minio:                    minioSettings{Bucket: defaultMinioBucket},
	}
}

// parseFlags собирает конфигурацию. Приоритет источников (от низшего к высшему):
// значения по умолчанию, YAML-файл, переменные окружения, флаги.
func parseFlags(args []string) (*config, error) {
	cfg := defaultConfig()

	fs := pflag.NewFlagSet("todo-api", pflag.ContinueOnError)
	configFile := fs.String("config", "", fmt.Sprintf("Путь к YAML-файлу конфигурации (env: %s)", envConfigFile))
	fs.String(keyPort, cfg.Port, fmt.Sprintf("Порт HTTP-сервера (env: %s)", envServerPort))
	fs.String(keyCertFile, "", fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", envTLSCertFile))
	fs.String(keyKeyFile, "", fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	fs.String(keyDatabaseDriver, cfg.DatabaseDriver,
		fmt.Sprintf("Драйвер БД: postgres или sqlite (env: %s)", envDatabaseDriver))
	fs.String(keyDatabaseDSN, "", fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	fs.String(keySecretKey, "", fmt.Sprintf("Секретный ключ подписи JWT (env: %s)", envSecretKey))
	fs.String(keyAlgorithm, cfg.Algorithm, fmt.Sprintf("Алгоритм подписи JWT (env: %s)", envAlgorithm))
	fs.Int(keyAccessTokenExpireMinutes, cfg.AccessTokenExpireMinutes,
		fmt.Sprintf("Время жизни токена в минутах (env: %s)", envAccessTokenExpireMinutes))
	fs.String(keyCORSOrigins, strings.Join(cfg.CORSOrigins, ","),
		fmt.Sprintf("Разрешенные источники CORS через запятую (env: %s)", envCORSOrigins))
	fs.String(keyMinioEndpoint, "", fmt.Sprintf("Адрес MinIO; пусто - экспорт отключен (env: %s)", envMinioEndpoint))
	fs.String(keyMinioUser, "", fmt.Sprintf("Логин MinIO (env: %s)", envMinioUser))
	fs.String(keyMinioPassword, "", fmt.Sprintf("Пароль MinIO (env: %s)", envMinioPassword))
	fs.String(keyMinioBucket, cfg.Minio.Bucket, fmt.Sprintf("Бакет для снимков (env: %s)", envMinioBucket))
	fs.Bool(keyMinioUseSSL, false, fmt.Sprintf("Использовать TLS для MinIO (env: %s)", envMinioUseSSL))

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := *configFile
	if path == "" {
		path = os.Getenv(envConfigFile)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	for key, env := range envByKey {
		if value := os.Getenv(env); value != "" {
			if err := cfg.set(key, value); err != nil {
				return nil, fmt.Errorf("переменная окружения %s: %w", env, err)
			}
		}
	}

	var flagErr error
	fs.Visit(func(f *pflag.Flag) {
		if flagErr != nil || f.Name == "config" {
			return
		}
		if err := cfg.set(f.Name, f.Value.String()); err != nil {
			flagErr = fmt.Errorf("флаг --%s: %w", f.Name, err)
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла конфигурации %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
	}
	return nil
}

// set присваивает значение по имени ключа.
func (c *config) set(key, value string) error {
	switch key {
	case keyPort:
		c.Port = value
	case keyCertFile:
		c.CertFile = value
	case keyKeyFile:
		c.KeyFile = value
	case keyDatabaseDriver:
		c.DatabaseDriver = value
	case keyDatabaseDSN:
		c.DatabaseDSN = value
	case keySecretKey:
		c.SecretKey = value
	case keyAlgorithm:
		c.Algorithm = value
	case keyAccessTokenExpireMinutes:
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("ожидается целое число минут: %w", err)
		}
		c.AccessTokenExpireMinutes = minutes
	case keyCORSOrigins:
		c.CORSOrigins = splitList(value)
	case keyMinioEndpoint:
		c.Minio.Endpoint = value
	case keyMinioUser:
		c.Minio.User = value
	case keyMinioPassword:
		c.Minio.Password = value
	case keyMinioBucket:
		c.Minio.Bucket = value
	case keyMinioUseSSL:
		useSSL, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ожидается true или false: %w", err)
		}
		c.Minio.UseSSL = useSSL
	default:
		return fmt.Errorf("неизвестный параметр %q", key)
	}
	return nil
}

// validate проверяет обязательные параметры.
func (c *config) validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	if c.SecretKey == "" {
		return errors.New("не указан секретный ключ (--secret-key или " + envSecretKey + ")")
	}
	if c.DatabaseDriver != repository.DriverPostgres && c.DatabaseDriver != repository.DriverSQLite {
		return fmt.Errorf("неподдерживаемый драйвер БД: %s", c.DatabaseDriver)
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return errors.New("время жизни токена должно быть положительным")
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("для HTTPS нужны и сертификат, и ключ (" + envTLSCertFile + ", " + envTLSKeyFile + ")")
	}
	return nil
}

func (c *config) tokenConfig() services.TokenConfig {
	return services.TokenConfig{
		SecretKey: []byte(c.SecretKey),
		Algorithm: c.Algorithm,
		TTL:       time.Duration(c.AccessTokenExpireMinutes) * time.Minute,
	}
}

// exportEnabled сообщает, настроено ли объектное хранилище.
func (c *config) exportEnabled() bool {
	return c.Minio.Endpoint != ""
}

func (c *config) minioConfig() storage.MinioConfig {
	return storage.MinioConfig{
		Endpoint:        c.Minio.Endpoint,
		AccessKeyID:     c.Minio.User,
		SecretAccessKey: c.Minio.Password,
		UseSSL:          c.Minio.UseSSL,
		BucketName:      c.Minio.Bucket,
	}
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
