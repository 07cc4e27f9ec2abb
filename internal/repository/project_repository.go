package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/erms/internal/domain"
)

// ProjectFilter captures project search parameters.
type ProjectFilter struct {
	Status     *domain.ProjectStatus
	ManagerID  *string
	SearchTerm *string
}

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Delete(ctx context.Context, id string) error
}

const projectColumns = `
        id, name, description, required_skills, team_size, status, start_date, end_date, manager_id, created_at, updated_at`

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository instantiates repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (name, description, required_skills, team_size, status, start_date, end_date, manager_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return translate(r.pool.QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.RequiredSkills,
		project.TeamSize,
		project.Status,
		project.StartDate,
		project.EndDate,
		project.ManagerID,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt))
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET name=$1, description=$2, required_skills=$3, team_size=$4, status=$5,
            start_date=$6, end_date=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return translate(r.pool.QueryRow(ctx, query,
		project.Name,
		project.Description,
		project.RequiredSkills,
		project.TeamSize,
		project.Status,
		project.StartDate,
		project.EndDate,
		project.ID,
	).Scan(&project.UpdatedAt))
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT` + projectColumns + ` FROM projects WHERE id=$1`
	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	query := `SELECT` + projectColumns + ` FROM projects WHERE TRUE`
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if filter.ManagerID != nil {
		args = append(args, *filter.ManagerID)
		query += fmt.Sprintf(" AND manager_id::text=$%d", len(args))
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		args = append(args, containsPattern(*filter.SearchTerm))
		query += fmt.Sprintf(` AND (name ILIKE $%[1]d ESCAPE '\' OR description ILIKE $%[1]d ESCAPE '\'`+
			` OR EXISTS (SELECT 1 FROM unnest(required_skills) s WHERE s ILIKE $%[1]d ESCAPE '\'))`, len(args))
	}
	query += " ORDER BY start_date ASC, name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *project)
	}
	return result, rows.Err()
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.RequiredSkills,
		&project.TeamSize,
		&project.Status,
		&project.StartDate,
		&project.EndDate,
		&project.ManagerID,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}
