package repository

import (
	"context"
	"errors"
	"fmt"

	"homenest/internal/app/store/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type categoryRepository struct {
	db *pgxpool.Pool // Пул соединений с PostgreSQL для работы с категориями
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию.
// Уникальность slug обеспечивается PRIMARY KEY constraint.
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (id, name, icon, image, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		category.ID, category.Name, category.Icon, category.Image, category.ParentID, category.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetByID получает категорию по slug
func (r *categoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	query := `SELECT id, name, icon, image, parent_id, created_at FROM categories WHERE id = $1`

	var category entity.Category
	err := r.db.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Icon,
		&category.Image,
		&category.ParentID,
		&category.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}

	return &category, nil
}

// GetAll получает все категории, родители перед детьми, внутри уровня по имени.
// Дерево собирается в service layer.
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	query := `
		SELECT id, name, icon, image, parent_id, created_at
		FROM categories
		ORDER BY parent_id NULLS FIRST, name ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var category entity.Category
		if err := rows.Scan(
			&category.ID, &category.Name, &category.Icon, &category.Image,
			&category.ParentID, &category.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Update обновляет категорию. Slug неизменяем.
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	query := `
		UPDATE categories
		SET name = $1, icon = $2, image = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query, category.Name, category.Icon, category.Image, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete удаляет категорию.
// Удаление запрещено, пока на категорию ссылаются товары или подкатегории -
// проверка выполняется явно на уровне приложения, а не только через constraint.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	var productCount int
	checkProducts := `SELECT COUNT(*) FROM product_categories WHERE category_id = $1`
	if err := r.db.QueryRow(ctx, checkProducts, id).Scan(&productCount); err != nil {
		return fmt.Errorf("failed to check products in category: %w", err)
	}

	if productCount > 0 {
		return ErrCategoryHasProducts
	}

	var childCount int
	checkChildren := `SELECT COUNT(*) FROM categories WHERE parent_id = $1`
	if err := r.db.QueryRow(ctx, checkChildren, id).Scan(&childCount); err != nil {
		return fmt.Errorf("failed to check subcategories: %w", err)
	}

	if childCount > 0 {
		return ErrCategoryHasChildren
	}

	query := `DELETE FROM categories WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		// foreign key constraint на случай гонки между проверкой и удалением
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
