package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/dberrors"
)

var requirementColumns = []string{"requirement_id", "requirement_name", "description"}

const constraintRequirementName = "requirements_requirement_name_key"

// ErrRequirementNameTaken is returned when another requirement already uses a name
var ErrRequirementNameTaken = apperrors.NewConflictError("a requirement with this name already exists")

// RequirementRepository handles requirement definition operations
type RequirementRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewRequirementRepository creates a new RequirementRepository
func NewRequirementRepository(conn db.DBTX) *RequirementRepository {
	return &RequirementRepository{db: conn, sb: newStatementBuilder()}
}

func scanRequirements(rows pgx.Rows) ([]*models.Requirement, error) {
	defer rows.Close()
	requirements := []*models.Requirement{}
	for rows.Next() {
		req := &models.Requirement{}
		if err := rows.Scan(&req.ID, &req.Name, &req.Description); err != nil {
			return nil, fmt.Errorf("error scanning requirement row: %w", err)
		}
		requirements = append(requirements, req)
	}
	return requirements, rows.Err()
}

// ListRequirementSummaries lists every requirement with the number of scholarships using it
func (r *RequirementRepository) ListRequirementSummaries(ctx context.Context) ([]*models.RequirementSummary, error) {
	sql, args, err := r.sb.Select("r.requirement_id", "r.requirement_name", "r.description", "COUNT(sr.scholarship_id)").
		From("requirements r").
		LeftJoin("scholarship_requirements sr ON sr.requirement_id = r.requirement_id").
		GroupBy("r.requirement_id").
		OrderBy("r.requirement_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list requirements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying requirements: %w", err)
	}
	defer rows.Close()

	summaries := []*models.RequirementSummary{}
	for rows.Next() {
		s := &models.RequirementSummary{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.ScholarshipCount); err != nil {
			return nil, fmt.Errorf("error scanning requirement summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListByScholarship returns the requirements linked to a scholarship
func (r *RequirementRepository) ListByScholarship(ctx context.Context, scholarshipID int64) ([]*models.Requirement, error) {
	sql, args, err := r.sb.Select(prefixColumns("r", requirementColumns)...).
		From("requirements r").
		Join("scholarship_requirements sr ON sr.requirement_id = r.requirement_id").
		Where(squirrel.Eq{"sr.scholarship_id": scholarshipID}).
		OrderBy("r.requirement_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build scholarship requirements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying scholarship requirements: %w", err)
	}
	return scanRequirements(rows)
}

// GetRequirementByID retrieves a requirement by ID
func (r *RequirementRepository) GetRequirementByID(ctx context.Context, id int64) (*models.Requirement, error) {
	sql, args, err := r.sb.Select(requirementColumns...).
		From("requirements").
		Where(squirrel.Eq{"requirement_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get requirement query: %w", err)
	}

	req := &models.Requirement{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.Name, &req.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRequirementNotFound
		}
		return nil, fmt.Errorf("error getting requirement by ID: %w", err)
	}
	return req, nil
}

// CreateRequirement inserts a requirement definition and sets its ID
func (r *RequirementRepository) CreateRequirement(ctx context.Context, req *models.Requirement) (int64, error) {
	sql, args, err := r.sb.Insert("requirements").
		Columns("requirement_name", "description").
		Values(req.Name, req.Description).
		Suffix("RETURNING requirement_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create requirement query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintRequirementName) {
			return 0, ErrRequirementNameTaken
		}
		return 0, fmt.Errorf("error creating requirement: %w", err)
	}
	return req.ID, nil
}

// UpdateRequirement applies the non-nil fields of upd
func (r *RequirementRepository) UpdateRequirement(ctx context.Context, id int64, upd models.RequirementUpdate) (*models.Requirement, error) {
	set := map[string]interface{}{}
	if upd.Name != nil {
		set["requirement_name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if len(set) == 0 {
		return r.GetRequirementByID(ctx, id)
	}

	sql, args, err := r.sb.Update("requirements").
		SetMap(set).
		Where(squirrel.Eq{"requirement_id": id}).
		Suffix("RETURNING " + joinColumns(requirementColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update requirement query: %w", err)
	}

	req := &models.Requirement{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.Name, &req.Description); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrRequirementNotFound
		case dberrors.IsDuplicateConstraintError(err, constraintRequirementName):
			return nil, ErrRequirementNameTaken
		}
		return nil, fmt.Errorf("error updating requirement: %w", err)
	}
	return req, nil
}

// IsRequiredForApplication reports whether the application's scholarship lists the requirement
func (r *RequirementRepository) IsRequiredForApplication(ctx context.Context, applicationID, requirementID int64) (bool, error) {
	return existsRow(ctx, r.db, r.sb.Select("1").
		From("application a").
		Join("scholarship_requirements sr ON sr.scholarship_id = a.scholarship_id").
		Where(squirrel.Eq{"a.application_id": applicationID, "sr.requirement_id": requirementID}))
}

// HasOpenApplications reports whether any unfinished application holds a
// submission row for the requirement.
func (r *RequirementRepository) HasOpenApplications(ctx context.Context, requirementID int64) (bool, error) {
	return existsRow(ctx, r.db, r.sb.Select("1").
		From("submitted_requirements s").
		Join("application a ON a.application_id = s.application_id").
		Where(squirrel.Eq{"s.requirement_id": requirementID, "a.status": statusStrings(openStatuses)}))
}

// DeleteLinks removes the requirement from every scholarship
func (r *RequirementRepository) DeleteLinks(ctx context.Context, requirementID int64) (int64, error) {
	sql, args, err := r.sb.Delete("scholarship_requirements").
		Where(squirrel.Eq{"requirement_id": requirementID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete requirement links query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting requirement links: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteRequirement deletes a requirement definition
func (r *RequirementRepository) DeleteRequirement(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("requirements").Where(squirrel.Eq{"requirement_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete requirement query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrRequirementInUse
		}
		return fmt.Errorf("error deleting requirement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRequirementNotFound
	}
	return nil
}
