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

var studentColumns = []string{
	"student_id", "student_number", "first_name", "last_name", "gender",
	"birthdate", "program", "year_level", "contact_number", "email_address",
}

const constraintStudentEmail = "student_email_address_key"

// ErrEmailInUse is returned when an email address belongs to another student
var ErrEmailInUse = apperrors.NewConflictError("email address already in use")

// StudentRepository handles student database operations
type StudentRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(conn db.DBTX) *StudentRepository {
	return &StudentRepository{db: conn, sb: newStatementBuilder()}
}

func scanStudent(row pgx.Row, s *models.Student) error {
	return row.Scan(&s.ID, &s.StudentNumber, &s.FirstName, &s.LastName, &s.Gender,
		&s.Birthdate, &s.Program, &s.YearLevel, &s.ContactNumber, &s.Email)
}

// CreateStudent inserts a student and sets its ID
func (r *StudentRepository) CreateStudent(ctx context.Context, s *models.Student) (int64, error) {
	sql, args, err := r.sb.Insert("student").
		Columns("student_number", "first_name", "last_name", "gender", "birthdate",
			"program", "year_level", "contact_number", "email_address").
		Values(s.StudentNumber, s.FirstName, s.LastName, s.Gender, s.Birthdate,
			s.Program, s.YearLevel, s.ContactNumber, s.Email).
		Suffix("RETURNING student_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintStudentEmail) {
			return 0, apperrors.ErrUsernameOrEmailTaken
		}
		logger.Error().Err(err).Msg("Error executing create student query")
		return 0, fmt.Errorf("error creating student: %w", err)
	}
	return s.ID, nil
}

// StudentNumberExists reports whether a student number is already assigned
func (r *StudentRepository) StudentNumberExists(ctx context.Context, number string) (bool, error) {
	return existsRow(ctx, r.db, r.sb.Select("1").
		From("student").
		Where(squirrel.Eq{"student_number": number}))
}

// GetStudentByID retrieves a student by ID
func (r *StudentRepository) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("student").
		Where(squirrel.Eq{"student_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student := &models.Student{}
	if err := scanStudent(r.db.QueryRow(ctx, sql, args...), student); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}
	return student, nil
}

// ListStudentSummaries lists all students, newest first, with their application counts
func (r *StudentRepository) ListStudentSummaries(ctx context.Context) ([]*models.StudentSummary, error) {
	cols := append(prefixColumns("s", studentColumns), "COUNT(a.application_id)")

	sql, args, err := r.sb.Select(cols...).
		From("student s").
		LeftJoin("application a ON a.student_id = s.student_id").
		GroupBy("s.student_id").
		OrderBy("s.student_id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	summaries := []*models.StudentSummary{}
	for rows.Next() {
		s := &models.StudentSummary{}
		if err := rows.Scan(&s.ID, &s.StudentNumber, &s.FirstName, &s.LastName, &s.Gender,
			&s.Birthdate, &s.Program, &s.YearLevel, &s.ContactNumber, &s.Email, &s.ApplicationCount); err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return summaries, nil
}

// UpdateStudent applies the non-nil fields of upd and returns the stored student
func (r *StudentRepository) UpdateStudent(ctx context.Context, id int64, upd models.StudentUpdate) (*models.Student, error) {
	if upd.IsEmpty() {
		return r.GetStudentByID(ctx, id)
	}

	set := map[string]interface{}{}
	if upd.FirstName != nil {
		set["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["last_name"] = *upd.LastName
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.Birthdate != nil {
		set["birthdate"] = *upd.Birthdate
	}
	if upd.Program != nil {
		set["program"] = *upd.Program
	}
	if upd.YearLevel != nil {
		set["year_level"] = *upd.YearLevel
	}
	if upd.ContactNumber != nil {
		set["contact_number"] = *upd.ContactNumber
	}
	if upd.Email != nil {
		set["email_address"] = *upd.Email
	}

	sql, args, err := r.sb.Update("student").
		SetMap(set).
		Where(squirrel.Eq{"student_id": id}).
		Suffix("RETURNING " + joinColumns(studentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update student query: %w", err)
	}

	student := &models.Student{}
	if err := scanStudent(r.db.QueryRow(ctx, sql, args...), student); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrStudentNotFound
		case dberrors.IsDuplicateConstraintError(err, constraintStudentEmail):
			return nil, ErrEmailInUse
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing update student query")
		return nil, fmt.Errorf("error updating student: %w", err)
	}
	return student, nil
}

// DeleteStudent deletes a student row
func (r *StudentRepository) DeleteStudent(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("student").Where(squirrel.Eq{"student_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrStudentHasApplications
		}
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// CountStudents counts all students
func (r *StudentRepository) CountStudents(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("student"))
}
