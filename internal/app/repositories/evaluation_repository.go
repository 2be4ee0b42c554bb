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

var evaluationColumns = []string{
	"evaluation_id", "application_id", "evaluator_name", "score", "comments", "date_evaluated",
}

// EvaluationRepository handles evaluation database operations
type EvaluationRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewEvaluationRepository creates a new EvaluationRepository
func NewEvaluationRepository(conn db.DBTX) *EvaluationRepository {
	return &EvaluationRepository{db: conn, sb: newStatementBuilder()}
}

func scanEvaluation(row pgx.Row, e *models.Evaluation) error {
	return row.Scan(&e.ID, &e.ApplicationID, &e.EvaluatorName, &e.Score, &e.Comments, &e.DateEvaluated)
}

// CreateEvaluation inserts an evaluation and sets its ID and date
func (r *EvaluationRepository) CreateEvaluation(ctx context.Context, e *models.Evaluation) (int64, error) {
	sql, args, err := r.sb.Insert("evaluation").
		Columns("application_id", "evaluator_name", "score", "comments").
		Values(e.ApplicationID, e.EvaluatorName, e.Score, e.Comments).
		Suffix("RETURNING evaluation_id, date_evaluated").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create evaluation query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.DateEvaluated); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return 0, apperrors.ErrApplicationNotFound
		}
		return 0, fmt.Errorf("error creating evaluation: %w", err)
	}
	return e.ID, nil
}

// ListByApplication returns an application's evaluations, newest first
func (r *EvaluationRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Evaluation, error) {
	sql, args, err := r.sb.Select(evaluationColumns...).
		From("evaluation").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("date_evaluated DESC", "evaluation_id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list evaluations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := []*models.Evaluation{}
	for rows.Next() {
		e := &models.Evaluation{}
		if err := scanEvaluation(rows, e); err != nil {
			return nil, fmt.Errorf("error scanning evaluation row: %w", err)
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, rows.Err()
}

// GetEvaluationByID retrieves an evaluation by ID
func (r *EvaluationRepository) GetEvaluationByID(ctx context.Context, id int64) (*models.Evaluation, error) {
	sql, args, err := r.sb.Select(evaluationColumns...).
		From("evaluation").
		Where(squirrel.Eq{"evaluation_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get evaluation query: %w", err)
	}

	e := &models.Evaluation{}
	if err := scanEvaluation(r.db.QueryRow(ctx, sql, args...), e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("error getting evaluation: %w", err)
	}
	return e, nil
}

// UpdateEvaluation changes the score and/or comments of an evaluation
func (r *EvaluationRepository) UpdateEvaluation(ctx context.Context, id int64, score *float64, comments *string) (*models.Evaluation, error) {
	set := map[string]interface{}{}
	if score != nil {
		set["score"] = *score
	}
	if comments != nil {
		set["comments"] = *comments
	}
	if len(set) == 0 {
		return r.GetEvaluationByID(ctx, id)
	}

	sql, args, err := r.sb.Update("evaluation").
		SetMap(set).
		Where(squirrel.Eq{"evaluation_id": id}).
		Suffix("RETURNING " + joinColumns(evaluationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update evaluation query: %w", err)
	}

	e := &models.Evaluation{}
	if err := scanEvaluation(r.db.QueryRow(ctx, sql, args...), e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("error updating evaluation: %w", err)
	}
	return e, nil
}

// DeleteByApplication removes all evaluations of an application
func (r *EvaluationRepository) DeleteByApplication(ctx context.Context, applicationID int64) (int64, error) {
	sql, args, err := r.sb.Delete("evaluation").Where(squirrel.Eq{"application_id": applicationID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete evaluations query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting evaluations: %w", err)
	}
	return tag.RowsAffected(), nil
}
