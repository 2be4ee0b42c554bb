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
)

var submissionColumns = []string{
	"submission_id", "application_id", "requirement_id", "status", "file_name", "file_path", "date_submitted",
}

// SubmissionRepository handles submitted_requirements operations
type SubmissionRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(conn db.DBTX) *SubmissionRepository {
	return &SubmissionRepository{db: conn, sb: newStatementBuilder()}
}

// CreatePlaceholders inserts a "Not Submitted" row for each requirement
func (r *SubmissionRepository) CreatePlaceholders(ctx context.Context, applicationID int64, requirementIDs []int64) (int64, error) {
	if len(requirementIDs) == 0 {
		return 0, nil
	}

	insert := r.sb.Insert("submitted_requirements").Columns("application_id", "requirement_id", "status")
	for _, reqID := range requirementIDs {
		insert = insert.Values(applicationID, reqID, string(models.SubmissionNotSubmitted))
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build placeholder insert: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error creating submission placeholders: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetForUpdate locks and returns the submission row of one requirement within
// an application. A missing row yields ErrSubmissionNotFound.
func (r *SubmissionRepository) GetForUpdate(ctx context.Context, applicationID, requirementID int64) (*models.SubmittedRequirement, error) {
	sql, args, err := r.sb.Select(submissionColumns...).
		From("submitted_requirements").
		Where(squirrel.Eq{"application_id": applicationID, "requirement_id": requirementID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get submission query: %w", err)
	}

	s := &models.SubmittedRequirement{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.ApplicationID, &s.RequirementID, &s.Status,
		&s.FileName, &s.FilePath, &s.DateSubmitted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("error getting submission: %w", err)
	}
	return s, nil
}

// UpsertSubmission records an uploaded file as Submitted, creating the row if
// the application predates the requirement link.
func (r *SubmissionRepository) UpsertSubmission(ctx context.Context, s *models.SubmittedRequirement) error {
	query := `
		INSERT INTO submitted_requirements (application_id, requirement_id, status, file_name, file_path, date_submitted)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (application_id, requirement_id) DO UPDATE
		SET status = EXCLUDED.status,
			file_name = EXCLUDED.file_name,
			file_path = EXCLUDED.file_path,
			date_submitted = EXCLUDED.date_submitted
		RETURNING submission_id, date_submitted
	`

	err := r.db.QueryRow(ctx, query,
		s.ApplicationID,
		s.RequirementID,
		string(s.Status),
		s.FileName,
		s.FilePath,
	).Scan(&s.ID, &s.DateSubmitted)
	if err != nil {
		return fmt.Errorf("error saving submission: %w", err)
	}
	return nil
}

// ListMissingRequirementNames returns the names of the scholarship's
// requirements whose row for the application is absent or still Not Submitted.
func (r *SubmissionRepository) ListMissingRequirementNames(ctx context.Context, applicationID int64) ([]string, error) {
	query := `
		SELECT r.requirement_name
		FROM application a
		JOIN scholarship_requirements sr ON sr.scholarship_id = a.scholarship_id
		JOIN requirements r ON r.requirement_id = sr.requirement_id
		LEFT JOIN submitted_requirements s
			ON s.application_id = a.application_id AND s.requirement_id = sr.requirement_id
		WHERE a.application_id = $1
			AND (s.submission_id IS NULL OR s.status = $2)
		ORDER BY r.requirement_id
	`

	names, err := collectStrings(ctx, r.db, query, applicationID, string(models.SubmissionNotSubmitted))
	if err != nil {
		return nil, fmt.Errorf("error listing missing requirements: %w", err)
	}
	return names, nil
}

// ListDetailsByApplication returns every submission row of an application with
// its requirement definition.
func (r *SubmissionRepository) ListDetailsByApplication(ctx context.Context, applicationID int64) ([]*models.SubmissionDetail, error) {
	sql, args, err := r.sb.Select("s.submission_id", "s.requirement_id", "r.requirement_name", "r.description",
		"s.status", "s.file_name", "s.date_submitted").
		From("submitted_requirements s").
		Join("requirements r ON r.requirement_id = s.requirement_id").
		Where(squirrel.Eq{"s.application_id": applicationID}).
		OrderBy("s.requirement_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build submission detail query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying submissions: %w", err)
	}
	defer rows.Close()

	details := []*models.SubmissionDetail{}
	for rows.Next() {
		d := &models.SubmissionDetail{}
		if err := rows.Scan(&d.SubmissionID, &d.RequirementID, &d.RequirementName, &d.Description,
			&d.Status, &d.FileName, &d.DateSubmitted); err != nil {
			return nil, fmt.Errorf("error scanning submission row: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *SubmissionRepository) listFilePaths(ctx context.Context, where squirrel.Sqlizer) ([]string, error) {
	sql, args, err := r.sb.Select("file_path").
		From("submitted_requirements").
		Where(where).
		Where("file_path IS NOT NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build file path query: %w", err)
	}

	paths, err := collectStrings(ctx, r.db, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing file paths: %w", err)
	}
	return paths, nil
}

// ListFilePathsByApplication returns the stored file paths of an application
func (r *SubmissionRepository) ListFilePathsByApplication(ctx context.Context, applicationID int64) ([]string, error) {
	return r.listFilePaths(ctx, squirrel.Eq{"application_id": applicationID})
}

// ListFilePathsByRequirement returns the stored file paths submitted for a requirement
func (r *SubmissionRepository) ListFilePathsByRequirement(ctx context.Context, requirementID int64) ([]string, error) {
	return r.listFilePaths(ctx, squirrel.Eq{"requirement_id": requirementID})
}

// ListAllFilePaths returns every file path still referenced by a submission
func (r *SubmissionRepository) ListAllFilePaths(ctx context.Context) ([]string, error) {
	return r.listFilePaths(ctx, squirrel.Expr("TRUE"))
}

func (r *SubmissionRepository) deleteWhere(ctx context.Context, where squirrel.Eq) (int64, error) {
	sql, args, err := r.sb.Delete("submitted_requirements").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete submissions query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting submissions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByApplication removes all submission rows of an application
func (r *SubmissionRepository) DeleteByApplication(ctx context.Context, applicationID int64) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"application_id": applicationID})
}

// DeleteByRequirement removes all submission rows for a requirement
func (r *SubmissionRepository) DeleteByRequirement(ctx context.Context, requirementID int64) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"requirement_id": requirementID})
}

// GetSubmissionFile locates the uploaded file of a submission and its owner
func (r *SubmissionRepository) GetSubmissionFile(ctx context.Context, submissionID int64) (*models.SubmissionFile, error) {
	sql, args, err := r.sb.Select("s.submission_id", "s.application_id", "a.student_id", "s.file_name", "s.file_path").
		From("submitted_requirements s").
		Join("application a ON a.application_id = s.application_id").
		Where(squirrel.Eq{"s.submission_id": submissionID}).
		Where("s.file_path IS NOT NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build submission file query: %w", err)
	}

	f := &models.SubmissionFile{}
	var fileName *string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&f.SubmissionID, &f.ApplicationID, &f.StudentID, &fileName, &f.FilePath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("error getting submission file: %w", err)
	}
	if fileName != nil {
		f.FileName = *fileName
	}
	return f, nil
}

// ListProgressByStudent returns the requirement rows of the student's most
// recent applications.
func (r *SubmissionRepository) ListProgressByStudent(ctx context.Context, studentID int64, applicationLimit int) ([]*models.RequirementProgress, error) {
	query := `
		SELECT a.application_id, sc.scholarship_name, r.requirement_id, r.requirement_name, s.status
		FROM (
			SELECT application_id, scholarship_id, date_applied
			FROM application
			WHERE student_id = $1
			ORDER BY date_applied DESC, application_id DESC
			LIMIT $2
		) a
		JOIN scholarship sc ON sc.scholarship_id = a.scholarship_id
		JOIN submitted_requirements s ON s.application_id = a.application_id
		JOIN requirements r ON r.requirement_id = s.requirement_id
		ORDER BY a.date_applied DESC, a.application_id DESC, r.requirement_id
	`

	rows, err := r.db.Query(ctx, query, studentID, applicationLimit)
	if err != nil {
		return nil, fmt.Errorf("error querying requirement progress: %w", err)
	}
	defer rows.Close()

	progress := []*models.RequirementProgress{}
	for rows.Next() {
		p := &models.RequirementProgress{}
		if err := rows.Scan(&p.ApplicationID, &p.ScholarshipName, &p.RequirementID, &p.RequirementName, &p.Status); err != nil {
			return nil, fmt.Errorf("error scanning requirement progress: %w", err)
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
