package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository     *StudentRepository
	ScholarshipRepository *ScholarshipRepository
	RequirementRepository *RequirementRepository
	ApplicationRepository *ApplicationRepository
	SubmissionRepository  *SubmissionRepository
	EvaluationRepository  *EvaluationRepository
	UserRepository        *UserRepository
}

// NewRepositories initializes all repositories on conn, which may be the pool
// or an open transaction.
func NewRepositories(conn db.DBTX) *Repositories {
	return &Repositories{
		StudentRepository:     NewStudentRepository(conn),
		ScholarshipRepository: NewScholarshipRepository(conn),
		RequirementRepository: NewRequirementRepository(conn),
		ApplicationRepository: NewApplicationRepository(conn),
		SubmissionRepository:  NewSubmissionRepository(conn),
		EvaluationRepository:  NewEvaluationRepository(conn),
		UserRepository:        NewUserRepository(conn),
	}
}

// WithTx returns a set of repositories bound to tx
func (r *Repositories) WithTx(tx db.DBTX) *Repositories {
	return NewRepositories(tx)
}

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func statusStrings(statuses []models.ApplicationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// openStatuses are the application states that still depend on their
// submission rows.
var openStatuses = []models.ApplicationStatus{
	models.StatusDraft, models.StatusPending, models.StatusUnderReview,
}
