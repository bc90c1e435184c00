package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"harf_sayi/internal/common"
	"harf_sayi/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type sqlUserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

// Create inserts user and fills in its generated id and created_at. An empty
// role is stored as model.RoleUser.
func (r *sqlUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	var id int64
	query := r.db.Rebind(`INSERT INTO users (username, password, role) VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &id, query, user.Username, user.Password, user.Role); err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user %q already exists: %w", user.Username, common.ErrConflict)
		}
		return fmt.Errorf("userRepository.Create: %w", err)
	}

	created, err := r.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("userRepository.Create: %w", err)
	}
	*user = *created
	return nil
}

func (r *sqlUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := r.db.Rebind(`SELECT id, username, password, role, created_at FROM users WHERE username = ?`)
	user := &model.User{}
	if err := r.db.GetContext(ctx, user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("userRepository.FindByUsername: %w", err)
	}
	return user, nil
}

func (r *sqlUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := r.db.Rebind(`SELECT id, username, password, role, created_at FROM users WHERE id = ?`)
	user := &model.User{}
	if err := r.db.GetContext(ctx, user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("userRepository.FindByID: %w", err)
	}
	return user, nil
}

// List returns every user without the password column, newest first.
func (r *sqlUserRepository) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	query := `SELECT id, username, role, created_at FROM users ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("userRepository.List: %w", err)
	}
	return users, nil
}
