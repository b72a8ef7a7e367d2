package repository

import (
	"context"
	"errors"
	"fmt"

	"homenest/internal/app/store/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

// Create создает нового пользователя.
// Дубликат email превращается в ErrEmailTaken через unique constraint.
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, first_name, email, password_hash, phone, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.FirstName, user.Email, user.PasswordHash,
		user.Phone, user.Role, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `
		SELECT id, name, first_name, email, password_hash, phone, role, created_at
		FROM users WHERE id = $1
	`

	var user entity.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.FirstName, &user.Email,
		&user.PasswordHash, &user.Phone, &user.Role, &user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// GetByEmail получает пользователя по email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT id, name, first_name, email, password_hash, phone, role, created_at
		FROM users WHERE email = $1
	`

	var user entity.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.FirstName, &user.Email,
		&user.PasswordHash, &user.Phone, &user.Role, &user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// Update обновляет профиль пользователя
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = $1, first_name = $2, phone = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query, user.Name, user.FirstName, user.Phone, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetRefsByIDs получает имя и email владельцев для админ-списка заказов
func (r *userRepository) GetRefsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.UserRef, error) {
	refs := make(map[uuid.UUID]entity.UserRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	query := `SELECT id, name, email FROM users WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get user refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref entity.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user ref: %w", err)
		}
		refs[ref.ID] = ref
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user refs: %w", err)
	}

	return refs, nil
}
