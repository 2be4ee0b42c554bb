package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
)

func TestReplaceRequirementsDeduplicates(t *testing.T) {
	mock := newMock(t)
	repo := NewScholarshipRepository(mock)

	mock.ExpectExec(`DELETE FROM scholarship_requirements WHERE scholarship_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO scholarship_requirements \(scholarship_id,requirement_id\) VALUES \(\$1,\$2\),\(\$3,\$4\)`).
		WithArgs(int64(1), int64(2), int64(1), int64(3)).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	err := repo.ReplaceRequirements(context.Background(), 1, []int64{2, 3, 2})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRequirementsUnknownRequirement(t *testing.T) {
	mock := newMock(t)
	repo := NewScholarshipRepository(mock)

	mock.ExpectExec("INSERT INTO scholarship_requirements").
		WithArgs(int64(1), int64(42)).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "scholarship_requirements_requirement_id_fkey"})

	err := repo.LinkRequirements(context.Background(), 1, []int64{42})
	assert.ErrorIs(t, err, apperrors.ErrRequirementNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScholarshipNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewScholarshipRepository(mock)

	mock.ExpectExec(`DELETE FROM scholarship WHERE scholarship_id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteScholarship(context.Background(), 5)
	assert.ErrorIs(t, err, apperrors.ErrScholarshipNotFound)
}

func TestListByScholarship(t *testing.T) {
	mock := newMock(t)
	repo := NewRequirementRepository(mock)

	mock.ExpectQuery(`FROM requirements r JOIN scholarship_requirements sr ON sr.requirement_id = r.requirement_id WHERE sr.scholarship_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(requirementColumns).
			AddRow(int64(1), "Form 138", "Report card").
			AddRow(int64(2), "Indigency", "Barangay certificate"))

	reqs, err := repo.ListByScholarship(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "Indigency", reqs[1].Name)
}

func TestHasOpenApplications(t *testing.T) {
	mock := newMock(t)
	repo := NewRequirementRepository(mock)

	mock.ExpectQuery(`SELECT EXISTS \( SELECT 1 FROM submitted_requirements s JOIN application a`).
		WithArgs("Draft", "Pending", "Under Review", int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	open, err := repo.HasOpenApplications(context.Background(), 2)

	require.NoError(t, err)
	assert.True(t, open)
}

func TestCreateRequirementDuplicateName(t *testing.T) {
	mock := newMock(t)
	repo := NewRequirementRepository(mock)

	mock.ExpectQuery("INSERT INTO requirements").
		WithArgs("Form 138", "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraintRequirementName})

	_, err := repo.CreateRequirement(context.Background(), &models.Requirement{Name: "Form 138"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdateStudentEmailTaken(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)
	email := "taken@example.com"

	mock.ExpectQuery(`UPDATE student SET email_address = \$1 WHERE student_id = \$2 RETURNING`).
		WithArgs(email, int64(3)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraintStudentEmail})

	_, err := repo.UpdateStudent(context.Background(), 3, models.StudentUpdate{Email: &email})

	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteStudentNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectExec(`DELETE FROM student WHERE student_id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteStudent(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestCreateEvaluationForMissingApplication(t *testing.T) {
	mock := newMock(t)
	repo := NewEvaluationRepository(mock)
	score := 88.5

	mock.ExpectQuery("INSERT INTO evaluation").
		WithArgs(int64(99), "admin", &score, "Strong essay").
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "evaluation_application_id_fkey"})

	_, err := repo.CreateEvaluation(context.Background(), &models.Evaluation{
		ApplicationID: 99,
		EvaluatorName: "admin",
		Score:         &score,
		Comments:      "Strong essay",
	})

	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestUpdateEvaluationCommentsOnly(t *testing.T) {
	mock := newMock(t)
	repo := NewEvaluationRepository(mock)
	comments := "Revised after interview"
	score := 90.0
	now := time.Now()

	mock.ExpectQuery(`UPDATE evaluation SET comments = \$1 WHERE evaluation_id = \$2 RETURNING`).
		WithArgs(comments, int64(4)).
		WillReturnRows(pgxmock.NewRows(evaluationColumns).
			AddRow(int64(4), int64(7), "admin", &score, comments, now))

	e, err := repo.UpdateEvaluation(context.Background(), 4, nil, &comments)

	require.NoError(t, err)
	assert.Equal(t, comments, e.Comments)
	assert.Equal(t, 90.0, *e.Score)
}

func TestGetByUsernameJoinsStudent(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	studentID := int64(3)
	first, last, email, number := "Maria", "Santos", "maria@example.com", "STU-2025-1234"

	mock.ExpectQuery(`LEFT JOIN student s ON s.student_id = u.student_id`).
		WithArgs("maria").
		WillReturnRows(pgxmock.NewRows([]string{
			"user_id", "username", "password_hash", "role", "student_id",
			"first_name", "last_name", "email_address", "student_number",
		}).AddRow(int64(1), "maria", "$2a$10$hash", models.RoleStudent, &studentID, &first, &last, &email, &number))

	u, err := repo.GetByUsername(context.Background(), "maria")

	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, u.Role)
	require.NotNil(t, u.StudentID)
	assert.Equal(t, int64(3), *u.StudentID)
	assert.Equal(t, "STU-2025-1234", *u.StudentNumber)
}

func TestRepositoriesWithTxRebinds(t *testing.T) {
	pool := newMock(t)
	tx := newMock(t)

	repos := NewRepositories(pool).WithTx(tx)

	tx.ExpectExec(`DELETE FROM evaluation WHERE application_id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := repos.EvaluationRepository.DeleteByApplication(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, tx.ExpectationsWereMet())
	assert.NoError(t, pool.ExpectationsWereMet())
}
