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
	"github.com/yigit/scholarhub/internal/pkg/logger"
)

var scholarshipColumns = []string{
	"scholarship_id", "scholarship_name", "type", "description", "sponsor", "eligibility_criteria",
}

const constraintScholarshipName = "scholarship_scholarship_name_key"

// ErrScholarshipNameTaken is returned when another scholarship already uses a name
var ErrScholarshipNameTaken = apperrors.NewConflictError("a scholarship with this name already exists")

// ScholarshipRepository handles scholarship and scholarship_requirements operations
type ScholarshipRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewScholarshipRepository creates a new ScholarshipRepository
func NewScholarshipRepository(conn db.DBTX) *ScholarshipRepository {
	return &ScholarshipRepository{db: conn, sb: newStatementBuilder()}
}

func scanScholarship(row pgx.Row, s *models.Scholarship) error {
	return row.Scan(&s.ID, &s.Name, &s.Type, &s.Description, &s.Sponsor, &s.EligibilityCriteria)
}

// ListScholarships returns the catalog ordered by name
func (r *ScholarshipRepository) ListScholarships(ctx context.Context) ([]*models.Scholarship, error) {
	sql, args, err := r.sb.Select(scholarshipColumns...).
		From("scholarship").
		OrderBy("scholarship_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list scholarships query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying scholarships: %w", err)
	}
	defer rows.Close()

	scholarships := []*models.Scholarship{}
	for rows.Next() {
		s := &models.Scholarship{}
		if err := scanScholarship(rows, s); err != nil {
			return nil, fmt.Errorf("error scanning scholarship row: %w", err)
		}
		scholarships = append(scholarships, s)
	}
	return scholarships, rows.Err()
}

// ListScholarshipSummaries returns every scholarship with its application and requirement counts
func (r *ScholarshipRepository) ListScholarshipSummaries(ctx context.Context) ([]*models.ScholarshipSummary, error) {
	query := `
		SELECT s.scholarship_id, s.scholarship_name, s.type, s.description, s.sponsor, s.eligibility_criteria,
			(SELECT COUNT(*) FROM application a WHERE a.scholarship_id = s.scholarship_id),
			(SELECT COUNT(*) FROM scholarship_requirements sr WHERE sr.scholarship_id = s.scholarship_id)
		FROM scholarship s
		ORDER BY s.scholarship_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying scholarship summaries: %w", err)
	}
	defer rows.Close()

	summaries := []*models.ScholarshipSummary{}
	for rows.Next() {
		s := &models.ScholarshipSummary{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.Description, &s.Sponsor, &s.EligibilityCriteria,
			&s.ApplicationCount, &s.RequirementCount); err != nil {
			return nil, fmt.Errorf("error scanning scholarship summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetScholarshipByID retrieves a scholarship by ID
func (r *ScholarshipRepository) GetScholarshipByID(ctx context.Context, id int64) (*models.Scholarship, error) {
	sql, args, err := r.sb.Select(scholarshipColumns...).
		From("scholarship").
		Where(squirrel.Eq{"scholarship_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get scholarship query: %w", err)
	}

	s := &models.Scholarship{}
	if err := scanScholarship(r.db.QueryRow(ctx, sql, args...), s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrScholarshipNotFound
		}
		return nil, fmt.Errorf("error getting scholarship by ID: %w", err)
	}
	return s, nil
}

// Exists checks if a scholarship exists
func (r *ScholarshipRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return existsRow(ctx, r.db, r.sb.Select("1").
		From("scholarship").
		Where(squirrel.Eq{"scholarship_id": id}))
}

// CreateScholarship inserts a scholarship and sets its ID
func (r *ScholarshipRepository) CreateScholarship(ctx context.Context, s *models.Scholarship) (int64, error) {
	sql, args, err := r.sb.Insert("scholarship").
		Columns("scholarship_name", "type", "description", "sponsor", "eligibility_criteria").
		Values(s.Name, s.Type, s.Description, s.Sponsor, s.EligibilityCriteria).
		Suffix("RETURNING scholarship_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create scholarship query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintScholarshipName) {
			return 0, ErrScholarshipNameTaken
		}
		logger.Error().Err(err).Str("name", s.Name).Msg("Error executing create scholarship query")
		return 0, fmt.Errorf("error creating scholarship: %w", err)
	}
	return s.ID, nil
}

// UpdateScholarship applies the non-nil scalar fields of upd. RequirementIDs is
// handled by ReplaceRequirements.
func (r *ScholarshipRepository) UpdateScholarship(ctx context.Context, id int64, upd models.ScholarshipUpdate) (*models.Scholarship, error) {
	set := map[string]interface{}{}
	if upd.Name != nil {
		set["scholarship_name"] = *upd.Name
	}
	if upd.Type != nil {
		set["type"] = *upd.Type
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Sponsor != nil {
		set["sponsor"] = *upd.Sponsor
	}
	if upd.EligibilityCriteria != nil {
		set["eligibility_criteria"] = *upd.EligibilityCriteria
	}
	if len(set) == 0 {
		return r.GetScholarshipByID(ctx, id)
	}

	sql, args, err := r.sb.Update("scholarship").
		SetMap(set).
		Where(squirrel.Eq{"scholarship_id": id}).
		Suffix("RETURNING " + joinColumns(scholarshipColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update scholarship query: %w", err)
	}

	s := &models.Scholarship{}
	if err := scanScholarship(r.db.QueryRow(ctx, sql, args...), s); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrScholarshipNotFound
		case dberrors.IsDuplicateConstraintError(err, constraintScholarshipName):
			return nil, ErrScholarshipNameTaken
		}
		return nil, fmt.Errorf("error updating scholarship: %w", err)
	}
	return s, nil
}

// DeleteScholarship deletes a scholarship. Its requirement links go with it.
func (r *ScholarshipRepository) DeleteScholarship(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("scholarship").Where(squirrel.Eq{"scholarship_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete scholarship query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrScholarshipHasApplications
		}
		return fmt.Errorf("error deleting scholarship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrScholarshipNotFound
	}
	return nil
}

// LinkRequirements attaches requirements to a scholarship
func (r *ScholarshipRepository) LinkRequirements(ctx context.Context, scholarshipID int64, requirementIDs []int64) error {
	if len(requirementIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("scholarship_requirements").Columns("scholarship_id", "requirement_id")
	seen := make(map[int64]struct{}, len(requirementIDs))
	for _, reqID := range requirementIDs {
		if _, dup := seen[reqID]; dup {
			continue
		}
		seen[reqID] = struct{}{}
		insert = insert.Values(scholarshipID, reqID)
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build link requirements query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err, "scholarship_requirements_requirement_id_fkey") {
			return apperrors.ErrRequirementNotFound
		}
		if dberrors.IsForeignKeyError(err, "scholarship_requirements_scholarship_id_fkey") {
			return apperrors.ErrScholarshipNotFound
		}
		return fmt.Errorf("error linking requirements: %w", err)
	}
	return nil
}

// ReplaceRequirements swaps the scholarship's requirement set for requirementIDs
func (r *ScholarshipRepository) ReplaceRequirements(ctx context.Context, scholarshipID int64, requirementIDs []int64) error {
	sql, args, err := r.sb.Delete("scholarship_requirements").
		Where(squirrel.Eq{"scholarship_id": scholarshipID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build unlink requirements query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error unlinking requirements: %w", err)
	}
	return r.LinkRequirements(ctx, scholarshipID, requirementIDs)
}

// CountScholarships counts all scholarships
func (r *ScholarshipRepository) CountScholarships(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("scholarship"))
}
