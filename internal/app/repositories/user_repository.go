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

const constraintUsername = "user_account_username_key"

// UserRepository handles user_account operations
type UserRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn db.DBTX) *UserRepository {
	return &UserRepository{db: conn, sb: newStatementBuilder()}
}

// CreateUserAccount inserts a login account and sets its ID
func (r *UserRepository) CreateUserAccount(ctx context.Context, u *models.UserAccount) (int64, error) {
	sql, args, err := r.sb.Insert("user_account").
		Columns("username", "password_hash", "role", "student_id").
		Values(u.Username, u.PasswordHash, string(u.Role), u.StudentID).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintUsername) {
			return 0, apperrors.ErrUsernameOrEmailTaken
		}
		return 0, fmt.Errorf("error creating user account: %w", err)
	}
	return u.ID, nil
}

// GetByUsername retrieves an account and, for students, the linked profile fields
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.UserAccount, error) {
	query := `
		SELECT u.user_id, u.username, u.password_hash, u.role, u.student_id,
			s.first_name, s.last_name, s.email_address, s.student_number
		FROM user_account u
		LEFT JOIN student s ON s.student_id = u.student_id
		WHERE u.username = $1
	`

	u := &models.UserAccount{}
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.StudentID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.StudentNumber,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by username: %w", err)
	}
	return u, nil
}

// UsernameOrEmailTaken reports whether the username has an account or the
// email belongs to a student.
func (r *UserRepository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_account WHERE username = $1
			UNION ALL
			SELECT 1 FROM student WHERE email_address = $2
		)
	`

	var taken bool
	if err := r.db.QueryRow(ctx, query, username, email).Scan(&taken); err != nil {
		return false, fmt.Errorf("error checking username and email: %w", err)
	}
	return taken, nil
}

// UsernameExists checks if a username already has an account
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return existsRow(ctx, r.db, r.sb.Select("1").
		From("user_account").
		Where(squirrel.Eq{"username": username}))
}

// DeleteByStudentID removes the account linked to a student
func (r *UserRepository) DeleteByStudentID(ctx context.Context, studentID int64) (int64, error) {
	sql, args, err := r.sb.Delete("user_account").Where(squirrel.Eq{"student_id": studentID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting user account: %w", err)
	}
	return tag.RowsAffected(), nil
}
