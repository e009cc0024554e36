package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/todo-api/internal/models"
)

const categoryColumns = `id, name, username, created_at`

// Имя ограничения UNIQUE (username, name) из миграции 00001_init.sql.
const categoryNameConstraint = "categories_username_name_key"

// CategoryRepository определяет методы для работы с категориями.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id string) (*models.Category, error)
	ListCategoriesByOwner(ctx context.Context, username string) ([]models.Category, error)
	GetOrCreateByName(ctx context.Context, username, name string) (*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteAndReassign(ctx context.Context, category *models.Category, fallbackID string) error
}

type sqlCategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository создает новый экземпляр репозитория категорий.
func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &sqlCategoryRepository{db: db}
}

// CreateCategory сохраняет новую категорию.
func (r *sqlCategoryRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	query := r.db.Rebind(`INSERT INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Username, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			if isNameConflict(err) {
				log.Printf("[CategoryRepo] Категория '%s' у пользователя '%s' уже существует",
					category.Name, category.Username)
				return ErrCategoryNameTaken
			}
			return ErrCategoryExists
		}
		log.Printf("[CategoryRepo] Ошибка создания категории для '%s': %v", category.Username, err)
		return fmt.Errorf("ошибка выполнения запроса на создание категории: %w", err)
	}

	log.Printf("[CategoryRepo] Категория %s ('%s') создана для '%s'", category.ID, category.Name, category.Username)
	return nil
}

// GetCategoryByID находит категорию по ID без учета владельца.
func (r *sqlCategoryRepository) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	query := r.db.Rebind(`SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`)
	var category models.Category

	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		log.Printf("[CategoryRepo] Ошибка при поиске категории %s: %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение категории: %w", err)
	}
	return &category, nil
}

// ListCategoriesByOwner возвращает категории пользователя.
func (r *sqlCategoryRepository) ListCategoriesByOwner(ctx context.Context, username string) ([]models.Category, error) {
	query := r.db.Rebind(`SELECT ` + categoryColumns + ` FROM categories WHERE username = ? ORDER BY created_at, name`)
	categories := []models.Category{}

	if err := r.db.SelectContext(ctx, &categories, query, username); err != nil {
		log.Printf("[CategoryRepo] Ошибка получения категорий пользователя '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение категорий: %w", err)
	}
	return categories, nil
}

// GetOrCreateByName возвращает категорию пользователя с указанным именем, создавая ее при отсутствии.
// Идемпотентность обеспечивается ограничением UNIQUE (username, name): параллельные вызовы
// не создадут дубликат, проигравший INSERT просто ничего не вставит.
func (r *sqlCategoryRepository) GetOrCreateByName(
	ctx context.Context,
	username, name string,
) (*models.Category, error) {
	insert := r.db.Rebind(`INSERT INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?)
	          ON CONFLICT (username, name) DO NOTHING`)

	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), name, username, time.Now().UTC()); err != nil {
		log.Printf("[CategoryRepo] Ошибка создания категории '%s' для '%s': %v", name, username, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание категории: %w", err)
	}

	query := r.db.Rebind(`SELECT ` + categoryColumns + ` FROM categories WHERE username = ? AND name = ?`)
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, username, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDefaultCategoryGone
		}
		return nil, fmt.Errorf("ошибка выполнения запроса на получение категории: %w", err)
	}
	return &category, nil
}

// UpdateCategory сохраняет новое имя категории.
func (r *sqlCategoryRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	query := r.db.Rebind(`UPDATE categories SET name = ? WHERE id = ? AND username = ?`)

	res, err := r.db.ExecContext(ctx, query, category.Name, category.ID, category.Username)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryNameTaken
		}
		log.Printf("[CategoryRepo] Ошибка обновления категории %s: %v", category.ID, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление категории: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа измененных строк: %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteAndReassign удаляет категорию, переводя ее задачи в категорию fallbackID.
// Обе операции выполняются в одной транзакции.
func (r *sqlCategoryRepository) DeleteAndReassign(
	ctx context.Context,
	category *models.Category,
	fallbackID string,
) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("[CategoryRepo] Ошибка отката транзакции: %v", rbErr)
			}
		}
	}()

	reassign := tx.Rebind(`UPDATE todos SET category_id = ? WHERE category_id = ? AND username = ?`)
	if _, err = tx.ExecContext(ctx, reassign, fallbackID, category.ID, category.Username); err != nil {
		return fmt.Errorf("ошибка переноса задач категории: %w", err)
	}

	del := tx.Rebind(`DELETE FROM categories WHERE id = ? AND username = ?`)
	res, err := tx.ExecContext(ctx, del, category.ID, category.Username)
	if err != nil {
		return fmt.Errorf("ошибка удаления категории: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения числа удаленных строк: %w", err)
	}
	if affected == 0 {
		err = ErrCategoryNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	log.Printf("[CategoryRepo] Категория %s удалена, задачи перенесены в %s", category.ID, fallbackID)
	return nil
}

// isNameConflict отличает нарушение UNIQUE (username, name) от конфликта первичного ключа.
func isNameConflict(err error) bool {
	return isConstraintViolation(err, categoryNameConstraint, "categories.username, categories.name")
}
