// Утилита администратора: миграции и включение/отключение учетных записей.
//
//	todoadmin [флаги] migrate
//	todoadmin [флаги] disable <username>
//	todoadmin [флаги] enable <username>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/maynagashev/todo-api/internal/repository"
	"github.com/spf13/pflag"
)

const commandTimeout = 30 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		slog.Error("Команда завершилась с ошибкой", "error", err)
		os.Exit(1)
	}
}

func run(args []string, logOutput io.Writer) error {
	fs := pflag.NewFlagSet("todoadmin", pflag.ContinueOnError)
	driver := fs.String("database-driver", envOr("DATABASE_DRIVER", repository.DriverPostgres), "Драйвер БД: postgres или sqlite")
	dsn := fs.String("database-dsn", os.Getenv("DATABASE_DSN"), "Строка подключения к базе данных")
	logFile := fs.String("log-file", "", "Файл для JSON-логов; по умолчанию stderr")
	verbose := fs.BoolP("verbose", "v", false, "Отладочные сообщения")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("не удалось открыть лог-файл: %w", err)
		}
		defer f.Close()
		logOutput = f
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{Level: level})))

	if *dsn == "" {
		return errors.New("не указана строка подключения к БД (--database-dsn или DATABASE_DSN)")
	}
	if fs.NArg() == 0 {
		return errors.New("не указана команда: migrate, disable или enable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	db, err := repository.Open(*driver, *dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Debug("Подключение к БД установлено", "driver", *driver)

	switch cmd := fs.Arg(0); cmd {
	case "migrate":
		if err = repository.RunMigrations(ctx, db); err != nil {
			return err
		}
		slog.Info("Миграции применены")
		return nil
	case "disable", "enable":
		if fs.NArg() != 2 {
			return fmt.Errorf("использование: todoadmin %s <username>", cmd)
		}
		username := fs.Arg(1)
		disabled := cmd == "disable"
		if err = repository.NewUserRepository(db).SetDisabled(ctx, username, disabled); err != nil {
			return fmt.Errorf("не удалось изменить пользователя '%s': %w", username, err)
		}
		slog.Info("Статус пользователя изменен", "username", username, "disabled", disabled)
		return nil
	default:
		return fmt.Errorf("неизвестная команда %q", cmd)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
