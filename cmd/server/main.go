package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/todo-api/internal/handlers"
	appmiddleware "github.com/maynagashev/todo-api/internal/middleware"
	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/maynagashev/todo-api/internal/services"
	"github.com/maynagashev/todo-api/internal/storage"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultStartupTimeout  = 30 * time.Second
	corsMaxAge             = 300
)

// Точки подмены для тестов.
var (
	openDB         = repository.Open
	newMinioClient = func(ctx context.Context, cfg storage.MinioConfig) (storage.FileStorage, error) {
		return storage.NewMinioClient(ctx, cfg)
	}
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db              *sqlx.DB
	fileStorage     storage.FileStorage // nil, если экспорт отключен
	guard           *services.AccessGuard
	authHandler     *handlers.AuthHandler
	todoHandler     *handlers.TodoHandler
	categoryHandler *handlers.CategoryHandler
	exportHandler   *handlers.ExportHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера todo-api...")

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, defaultStartupTimeout)
	deps, err := setupDependencies(startupCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer func() {
		if closeErr := deps.db.Close(); closeErr != nil {
			log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      setupRouter(deps, cfg.CORSOrigins),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if cfg.CertFile != "" {
			log.Printf("Запуск HTTPS-сервера на порту %s (сертификат: %s)...", cfg.Port, cfg.CertFile)
			serveErr <- server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
			return
		}
		log.Printf("Запуск HTTP-сервера на порту %s...", cfg.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Получен сигнал остановки, завершаем работу...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancelShutdown()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(ctx context.Context, cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. Подключение к БД и миграции
	deps.db, err = openDB(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	if err = repository.RunMigrations(ctx, deps.db); err != nil {
		closeDB(deps.db)
		return nil, err
	}

	// 2. Сервис токенов
	tokenService, err := services.NewTokenService(cfg.tokenConfig())
	if err != nil {
		closeDB(deps.db)
		return nil, fmt.Errorf("ошибка инициализации сервиса токенов: %w", err)
	}

	// 3. Объектное хранилище (необязательно)
	if cfg.exportEnabled() {
		deps.fileStorage, err = newMinioClient(ctx, cfg.minioConfig())
		if err != nil {
			closeDB(deps.db)
			return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
		}
	} else {
		log.Println("MinIO не настроен, экспорт отключен.")
	}

	// 4. Репозитории
	userRepo := repository.NewUserRepository(deps.db)
	todoRepo := repository.NewTodoRepository(deps.db)
	categoryRepo := repository.NewCategoryRepository(deps.db)

	// 5. Сервисы
	creds := services.NewCredentialStore(userRepo)
	authService := services.NewAuthService(creds, tokenService, tokenService.TTL())
	todoService := services.NewTodoService(todoRepo, categoryRepo)
	categoryService := services.NewCategoryService(categoryRepo, todoRepo)
	deps.guard = services.NewAccessGuard(tokenService, creds)

	var exportService services.ExportService
	if deps.fileStorage != nil {
		exportRepo := repository.NewExportRepository(deps.db)
		exportService = services.NewExportService(categoryService, exportRepo, deps.fileStorage)
	}

	// 6. Обработчики
	deps.authHandler = handlers.NewAuthHandler(authService, tokenService, tokenService.TTL())
	deps.todoHandler = handlers.NewTodoHandler(todoService)
	deps.categoryHandler = handlers.NewCategoryHandler(categoryService)
	deps.exportHandler = handlers.NewExportHandler(exportService)

	return deps, nil
}

func closeDB(db *sqlx.DB) {
	if closeErr := db.Close(); closeErr != nil {
		log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
	}
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))

	// --- Маршруты --- //
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	// Публичные маршруты (регистрация, вход)
	r.Post("/register", deps.authHandler.Register)
	r.Post("/token", deps.authHandler.Token)
	r.Post("/login", deps.authHandler.Token)
	r.Get("/verify-token", deps.authHandler.VerifyToken)

	// Приватные маршруты (требуют аутентификации)
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Authenticator(deps.guard))

		r.Get("/users/me", deps.authHandler.Me)

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", deps.todoHandler.List)
			r.Post("/", deps.todoHandler.Create)
			r.Delete("/", deps.todoHandler.DeleteMany)
			r.Get("/{id}", deps.todoHandler.Get)
			r.Put("/{id}", deps.todoHandler.Update)
			r.Delete("/{id}", deps.todoHandler.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", deps.categoryHandler.List)
			r.Post("/", deps.categoryHandler.Create)
			r.Get("/{id}", deps.categoryHandler.Get)
			r.Put("/{id}", deps.categoryHandler.Update)
			r.Delete("/{id}", deps.categoryHandler.Delete)
		})
		r.Get("/categories_with_todos", deps.categoryHandler.ListWithTodos)

		r.Route("/exports", func(r chi.Router) {
			r.Get("/", deps.exportHandler.List)
			r.Post("/", deps.exportHandler.Create)
			r.Get("/{id}/download", deps.exportHandler.Download)
		})
	})
	return r
}
