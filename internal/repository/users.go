// Package repository implements the store interfaces on PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func (r *UserRepository) CreateUser(ctx context.Context, user *database.User) error {
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"operation": "create_user",
	})

	query := `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			logger.Info("Email or username already registered")
			return errors.NewConflictError("Email or username is already registered")
		}
		logger.WithError(err).Error("Failed to create user")
		return errors.NewDatabaseError("create_user", err)
	}

	logger.Info("User created")
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*database.User, error) {
	return r.getUser(ctx, "get_user_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	return r.getUser(ctx, "get_user_by_email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getUser(ctx context.Context, operation, query string, arg string) (*database.User, error) {
	user := &database.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("user")
		}
		telemetry.GetContextualLogger(ctx).
			WithField("operation", operation).
			WithError(err).
			Error("Failed to load user")
		return nil, errors.NewDatabaseError(operation, fmt.Errorf("failed to get user: %w", err))
	}
	return user, nil
}
