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

var applicationColumns = []string{
	"application_id", "student_id", "scholarship_id", "status", "remarks", "date_applied",
}

const (
	constraintOneActiveApplication = "application_one_active_idx"
	constraintApplicationStudent   = "application_student_id_fkey"
	constraintApplicationProgram   = "application_scholarship_id_fkey"
)

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(conn db.DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: conn, sb: newStatementBuilder()}
}

func scanApplication(row pgx.Row, a *models.Application) error {
	return row.Scan(&a.ID, &a.StudentID, &a.ScholarshipID, &a.Status, &a.Remarks, &a.DateApplied)
}

// HasActiveApplication reports whether the student holds a Draft or Pending
// application for the scholarship.
func (r *ApplicationRepository) HasActiveApplication(ctx context.Context, studentID, scholarshipID int64) (bool, error) {
	return existsRow(ctx, r.db, r.sb.Select("1").
		From("application").
		Where(squirrel.Eq{
			"student_id":     studentID,
			"scholarship_id": scholarshipID,
			"status":         statusStrings(models.ActiveStatuses),
		}))
}

// CreateApplication inserts an application and sets its ID and date
func (r *ApplicationRepository) CreateApplication(ctx context.Context, app *models.Application) (int64, error) {
	sql, args, err := r.sb.Insert("application").
		Columns("student_id", "scholarship_id", "status", "remarks").
		Values(app.StudentID, app.ScholarshipID, string(app.Status), app.Remarks).
		Suffix("RETURNING application_id, date_applied").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create application query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.DateApplied); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, constraintOneActiveApplication):
			return 0, apperrors.ErrDuplicateActiveApplication
		case dberrors.IsForeignKeyError(err, constraintApplicationStudent):
			return 0, apperrors.ErrStudentNotFound
		case dberrors.IsForeignKeyError(err, constraintApplicationProgram):
			return 0, apperrors.ErrScholarshipNotFound
		}
		logger.Error().Err(err).
			Int64("studentID", app.StudentID).
			Int64("scholarshipID", app.ScholarshipID).
			Msg("Error executing create application query")
		return 0, fmt.Errorf("error creating application: %w", err)
	}
	return app.ID, nil
}

func (r *ApplicationRepository) getApplication(ctx context.Context, id int64, forUpdate bool) (*models.Application, error) {
	query := r.sb.Select(applicationColumns...).
		From("application").
		Where(squirrel.Eq{"application_id": id})
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app := &models.Application{}
	if err := scanApplication(r.db.QueryRow(ctx, sql, args...), app); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error getting application by ID: %w", err)
	}
	return app, nil
}

// GetApplicationByID retrieves an application by ID
func (r *ApplicationRepository) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	return r.getApplication(ctx, id, false)
}

// GetApplicationForUpdate reads an application and locks its row until the
// surrounding transaction ends.
func (r *ApplicationRepository) GetApplicationForUpdate(ctx context.Context, id int64) (*models.Application, error) {
	return r.getApplication(ctx, id, true)
}

// GetApplicationView loads an application together with its student and scholarship
func (r *ApplicationRepository) GetApplicationView(ctx context.Context, id int64) (*models.ApplicationDetail, error) {
	cols := append(prefixColumns("a", applicationColumns), prefixColumns("s", studentColumns)...)
	cols = append(cols, prefixColumns("sc", scholarshipColumns)...)

	sql, args, err := r.sb.Select(cols...).
		From("application a").
		Join("student s ON s.student_id = a.student_id").
		Join("scholarship sc ON sc.scholarship_id = a.scholarship_id").
		Where(squirrel.Eq{"a.application_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build application view query: %w", err)
	}

	app, st, sc := &models.Application{}, &models.Student{}, &models.Scholarship{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&app.ID, &app.StudentID, &app.ScholarshipID, &app.Status, &app.Remarks, &app.DateApplied,
		&st.ID, &st.StudentNumber, &st.FirstName, &st.LastName, &st.Gender,
		&st.Birthdate, &st.Program, &st.YearLevel, &st.ContactNumber, &st.Email,
		&sc.ID, &sc.Name, &sc.Type, &sc.Description, &sc.Sponsor, &sc.EligibilityCriteria,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error getting application view: %w", err)
	}
	return &models.ApplicationDetail{Application: app, Student: st, Scholarship: sc}, nil
}

func (r *ApplicationRepository) listItemsQuery() squirrel.SelectBuilder {
	cols := append(prefixColumns("a", applicationColumns),
		"sc.scholarship_name",
		"s.first_name || ' ' || s.last_name",
		"s.student_number")
	return r.sb.Select(cols...).
		From("application a").
		Join("scholarship sc ON sc.scholarship_id = a.scholarship_id").
		Join("student s ON s.student_id = a.student_id")
}

func (r *ApplicationRepository) queryListItems(ctx context.Context, query squirrel.SelectBuilder) ([]*models.ApplicationListItem, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build application list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying applications: %w", err)
	}
	defer rows.Close()

	items := []*models.ApplicationListItem{}
	for rows.Next() {
		item := &models.ApplicationListItem{}
		if err := rows.Scan(&item.ID, &item.StudentID, &item.ScholarshipID, &item.Status, &item.Remarks,
			&item.DateApplied, &item.ScholarshipName, &item.StudentName, &item.StudentNumber); err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListApplications returns one page of applications, most recent first, and
// the total matching the filter.
func (r *ApplicationRepository) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.ApplicationListItem, int64, error) {
	where := squirrel.And{}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"a.status": string(*filter.Status)})
	}
	if filter.ScholarshipID != nil {
		where = append(where, squirrel.Eq{"a.scholarship_id": *filter.ScholarshipID})
	}

	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("application a").Where(where))
	if err != nil {
		return nil, 0, err
	}

	query := r.listItemsQuery().
		Where(where).
		OrderBy("a.date_applied DESC", "a.application_id DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	items, err := r.queryListItems(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByStudent returns the student's applications, most recent first. A
// positive limit caps the result.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID int64, limit int) ([]*models.ApplicationListItem, error) {
	query := r.listItemsQuery().
		Where(squirrel.Eq{"a.student_id": studentID}).
		OrderBy("a.date_applied DESC", "a.application_id DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return r.queryListItems(ctx, query)
}

// StatusCountsByStudent groups the student's applications by status
func (r *ApplicationRepository) StatusCountsByStudent(ctx context.Context, studentID int64) (map[models.ApplicationStatus]int64, error) {
	sql, args, err := r.sb.Select("status", "COUNT(*)").
		From("application").
		Where(squirrel.Eq{"student_id": studentID}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status count query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting applications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ApplicationStatus]int64, len(models.ApplicationStatuses))
	for _, s := range models.ApplicationStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status models.ApplicationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountByStudent counts all applications a student has ever made
func (r *ApplicationRepository) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").
		From("application").
		Where(squirrel.Eq{"student_id": studentID}))
}

// CountByScholarship counts the applications made to a scholarship
func (r *ApplicationRepository) CountByScholarship(ctx context.Context, scholarshipID int64) (int64, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").
		From("application").
		Where(squirrel.Eq{"scholarship_id": scholarshipID}))
}

// CountApplications counts applications, optionally restricted to one status
func (r *ApplicationRepository) CountApplications(ctx context.Context, status *models.ApplicationStatus) (int64, error) {
	query := r.sb.Select("COUNT(*)").From("application")
	if status != nil {
		query = query.Where(squirrel.Eq{"status": string(*status)})
	}
	return countRows(ctx, r.db, query)
}

// UpdateStatus sets status and remarks and returns the stored application
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus, remarks string) (*models.Application, error) {
	sql, args, err := r.sb.Update("application").
		Set("status", string(status)).
		Set("remarks", remarks).
		Where(squirrel.Eq{"application_id": id}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update status query: %w", err)
	}

	app := &models.Application{}
	if err := scanApplication(r.db.QueryRow(ctx, sql, args...), app); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error updating application status: %w", err)
	}
	return app, nil
}

// MarkSubmitted moves an application to Pending and refreshes its date
func (r *ApplicationRepository) MarkSubmitted(ctx context.Context, id int64) (*models.Application, error) {
	sql, args, err := r.sb.Update("application").
		Set("status", string(models.StatusPending)).
		Set("remarks", models.RemarksApplicationSubmitted).
		Set("date_applied", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"application_id": id}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build submit application query: %w", err)
	}

	app := &models.Application{}
	if err := scanApplication(r.db.QueryRow(ctx, sql, args...), app); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error submitting application: %w", err)
	}
	return app, nil
}

// TouchDateApplied sets date_applied to now
func (r *ApplicationRepository) TouchDateApplied(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("application").
		Set("date_applied", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"application_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build touch application query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error touching application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}

// DeleteApplication deletes an application row
func (r *ApplicationRepository) DeleteApplication(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("application").Where(squirrel.Eq{"application_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete application query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}
