package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/erms/internal/domain"
)

// EngineerRepository reads and removes engineer records. Updates go through
// AssignmentRepository.WithEngineerLock so they serialize with admissions.
type EngineerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Engineer, error)
	List(ctx context.Context, filter EngineerFilter) ([]domain.Engineer, error)
	Delete(ctx context.Context, id string) error
}

// EngineerFilter defines query params for engineer listing.
type EngineerFilter struct {
	// SearchTerm matches name or any skill, case-insensitively.
	SearchTerm *string
	Department *string
}

const engineerColumns = `
        u.id, u.name, u.email, u.department, e.skills, e.seniority, e.max_capacity, u.created_at, e.updated_at`

type engineerRepository struct {
	pool *pgxpool.Pool
}

// NewEngineerRepository instantiates the repository.
func NewEngineerRepository(pool *pgxpool.Pool) EngineerRepository {
	return &engineerRepository{pool: pool}
}

func (r *engineerRepository) GetByID(ctx context.Context, id string) (*domain.Engineer, error) {
	query := `SELECT` + engineerColumns + `
        FROM engineers e JOIN users u ON u.id = e.user_id
        WHERE u.id=$1`
	engineer, err := scanEngineer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return engineer, nil
}

func (r *engineerRepository) List(ctx context.Context, filter EngineerFilter) ([]domain.Engineer, error) {
	query := `SELECT` + engineerColumns + `
        FROM engineers e JOIN users u ON u.id = e.user_id
        WHERE TRUE`
	args := []any{}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		args = append(args, containsPattern(*filter.SearchTerm))
		query += fmt.Sprintf(` AND (u.name ILIKE $%[1]d ESCAPE '\' OR EXISTS (SELECT 1 FROM unnest(e.skills) s WHERE s ILIKE $%[1]d ESCAPE '\'))`, len(args))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		query += fmt.Sprintf(" AND u.department=$%d", len(args))
	}
	query += " ORDER BY u.name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Engineer
	for rows.Next() {
		engineer, err := scanEngineer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *engineer)
	}
	return result, rows.Err()
}

// Delete removes the engineer's account; assignments referencing it block the delete.
func (r *engineerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1 AND role='engineer'`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEngineer(row pgx.Row) (*domain.Engineer, error) {
	var engineer domain.Engineer
	if err := row.Scan(
		&engineer.ID,
		&engineer.Name,
		&engineer.Email,
		&engineer.Department,
		&engineer.Skills,
		&engineer.Seniority,
		&engineer.MaxCapacity,
		&engineer.CreatedAt,
		&engineer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &engineer, nil
}
