package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/jmoiron/sqlx"
)

var ErrDuplicateEmail = errors.New("email already registered")

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByEmail matches case-insensitively and returns nil when no user has
// the address.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email = ? COLLATE NOCASE
	`

	err := r.db.GetContext(ctx, &user, query, strings.TrimSpace(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Insert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (:id, :email, :name, :password_hash, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateEmail
	}
	return err
}
