package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/erms/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	// Create inserts the account and, when engineer is non-nil, its engineer profile in one transaction.
	Create(ctx context.Context, user *domain.User, engineer *domain.Engineer) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User, engineer *domain.Engineer) error {
	const insertUser = `
        INSERT INTO users (name, email, password_hash, role, department)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	const insertEngineer = `
        INSERT INTO engineers (user_id, skills, seniority, max_capacity)
        VALUES ($1, $2, $3, $4)
        RETURNING updated_at`

	return translate(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertUser,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.Role,
			user.Department,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return err
		}
		if engineer == nil {
			return nil
		}
		engineer.ID = user.ID
		engineer.Name = user.Name
		engineer.Email = user.Email
		engineer.Department = user.Department
		engineer.CreatedAt = user.CreatedAt
		return tx.QueryRow(ctx, insertEngineer,
			engineer.ID,
			engineer.Skills,
			engineer.Seniority,
			engineer.MaxCapacity,
		).Scan(&engineer.UpdatedAt)
	}))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, department, created_at, updated_at
        FROM users WHERE id=$1`
	return r.scanOne(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, department, created_at, updated_at
        FROM users WHERE lower(email)=lower($1)`
	return r.scanOne(ctx, query, email)
}

func (r *userRepository) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Department,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
