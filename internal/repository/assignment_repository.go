package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/erms/internal/domain"
)

// AssignmentFilter captures assignment listing parameters.
type AssignmentFilter struct {
	EngineerID    *string
	ProjectID     *string
	ProjectStatus *domain.ProjectStatus
	// SearchTerm matches engineer name, project name or role.
	SearchTerm *string
}

// LedgerTx is one engineer's slice of the ledger, held exclusively for the
// duration of AssignmentRepository.WithEngineerLock.
type LedgerTx interface {
	// Engineer returns the locked engineer as read at lock time.
	Engineer() *domain.Engineer
	Assignments(ctx context.Context) ([]domain.Assignment, error)
	InsertAssignment(ctx context.Context, assignment *domain.Assignment) error
	UpdateEngineer(ctx context.Context, engineer *domain.Engineer) error
}

// AssignmentRepository encapsulates assignment persistence.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]domain.AssignmentView, error)
	ListByEngineer(ctx context.Context, engineerID string) ([]domain.Assignment, error)
	Delete(ctx context.Context, id string) error
	// WithEngineerLock runs fn while holding an exclusive lock on the engineer.
	// Nothing fn writes is kept when it returns an error. Returns ErrNotFound
	// when the engineer does not exist.
	WithEngineerLock(ctx context.Context, engineerID string, fn func(ctx context.Context, tx LedgerTx) error) error
}

const assignmentColumns = `
        a.id, a.engineer_id, a.project_id, a.allocation_percentage, a.start_date, a.end_date, a.role, a.created_at`

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT` + assignmentColumns + ` FROM assignments a WHERE a.id=$1`
	var assignment domain.Assignment
	if err := scanAssignment(r.pool.QueryRow(ctx, query, id), &assignment); err != nil {
		return nil, translate(err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]domain.AssignmentView, error) {
	query := `SELECT` + assignmentColumns + `, u.name, p.name, p.status
        FROM assignments a
        JOIN users u ON u.id = a.engineer_id
        JOIN projects p ON p.id = a.project_id
        WHERE TRUE`
	args := []any{}
	if filter.EngineerID != nil {
		args = append(args, *filter.EngineerID)
		query += fmt.Sprintf(" AND a.engineer_id::text=$%d", len(args))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND a.project_id::text=$%d", len(args))
	}
	if filter.ProjectStatus != nil {
		args = append(args, *filter.ProjectStatus)
		query += fmt.Sprintf(" AND p.status=$%d", len(args))
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		args = append(args, containsPattern(*filter.SearchTerm))
		query += fmt.Sprintf(` AND (u.name ILIKE $%[1]d ESCAPE '\' OR p.name ILIKE $%[1]d ESCAPE '\' OR a.role ILIKE $%[1]d ESCAPE '\')`, len(args))
	}
	query += " ORDER BY a.start_date ASC, a.created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentView
	for rows.Next() {
		var view domain.AssignmentView
		a := &view.Assignment
		if err := rows.Scan(
			&a.ID,
			&a.EngineerID,
			&a.ProjectID,
			&a.AllocationPercentage,
			&a.StartDate,
			&a.EndDate,
			&a.Role,
			&a.CreatedAt,
			&view.EngineerName,
			&view.ProjectName,
			&view.ProjectStatus,
		); err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	return result, rows.Err()
}

func (r *assignmentRepository) ListByEngineer(ctx context.Context, engineerID string) ([]domain.Assignment, error) {
	return listAssignmentsByEngineer(ctx, r.pool, engineerID)
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// WithEngineerLock locks the engineer row FOR UPDATE inside a transaction, so
// concurrent admissions for the same engineer serialize across processes.
func (r *assignmentRepository) WithEngineerLock(ctx context.Context, engineerID string, fn func(ctx context.Context, tx LedgerTx) error) error {
	lockQuery := `SELECT` + engineerColumns + `
        FROM engineers e JOIN users u ON u.id = e.user_id
        WHERE e.user_id=$1
        FOR UPDATE OF e`

	return translate(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		engineer, err := scanEngineer(tx.QueryRow(ctx, lockQuery, engineerID))
		if err != nil {
			return err
		}
		return fn(ctx, &pgLedgerTx{tx: tx, engineer: engineer})
	}))
}

type pgLedgerTx struct {
	tx       pgx.Tx
	engineer *domain.Engineer
}

func (t *pgLedgerTx) Engineer() *domain.Engineer {
	return t.engineer
}

func (t *pgLedgerTx) Assignments(ctx context.Context) ([]domain.Assignment, error) {
	return listAssignmentsByEngineer(ctx, t.tx, t.engineer.ID)
}

func (t *pgLedgerTx) InsertAssignment(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (engineer_id, project_id, allocation_percentage, start_date, end_date, role)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return t.tx.QueryRow(ctx, query,
		t.engineer.ID,
		assignment.ProjectID,
		assignment.AllocationPercentage,
		assignment.StartDate,
		assignment.EndDate,
		assignment.Role,
	).Scan(&assignment.ID, &assignment.CreatedAt)
}

func (t *pgLedgerTx) UpdateEngineer(ctx context.Context, engineer *domain.Engineer) error {
	const updateProfile = `
        UPDATE engineers SET skills=$1, seniority=$2, max_capacity=$3, updated_at=NOW()
        WHERE user_id=$4
        RETURNING updated_at`
	const updateUser = `UPDATE users SET department=$1, updated_at=NOW() WHERE id=$2`

	if err := t.tx.QueryRow(ctx, updateProfile,
		engineer.Skills,
		engineer.Seniority,
		engineer.MaxCapacity,
		t.engineer.ID,
	).Scan(&engineer.UpdatedAt); err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, updateUser, engineer.Department, t.engineer.ID); err != nil {
		return err
	}
	t.engineer = engineer
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listAssignmentsByEngineer(ctx context.Context, q querier, engineerID string) ([]domain.Assignment, error) {
	query := `SELECT` + assignmentColumns + `
        FROM assignments a WHERE a.engineer_id=$1
        ORDER BY a.start_date ASC`
	rows, err := q.Query(ctx, query, engineerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := scanAssignment(rows, &assignment); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}

func scanAssignment(row pgx.Row, a *domain.Assignment) error {
	return row.Scan(
		&a.ID,
		&a.EngineerID,
		&a.ProjectID,
		&a.AllocationPercentage,
		&a.StartDate,
		&a.EndDate,
		&a.Role,
		&a.CreatedAt,
	)
}
