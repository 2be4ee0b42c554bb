package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/app/models/dto"
	"github.com/yigit/scholarhub/internal/app/repositories"
	"github.com/yigit/scholarhub/internal/db"
	"github.com/yigit/scholarhub/internal/pkg/apperrors"
	"github.com/yigit/scholarhub/internal/pkg/auth"
)

const studentNumberAttempts = 5

// Define custom error types for auth service
var (
	ErrInvalidCredentials = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid username or password")
	ErrInvalidPassword    = apperrors.NewInvalidInputError("password must contain at least one letter and one digit")
	ErrStudentNumberSpace = errors.New("could not allocate a unique student number")
)

// AuthService handles registration and login
type AuthService struct {
	pool       db.Pool
	repos      *repositories.Repositories
	jwtService *auth.JWTService
	logger     zerolog.Logger
	// newStudentNumber returns a candidate student number
	newStudentNumber func() string
}

// NewAuthService creates a new AuthService
func NewAuthService(
	pool db.Pool,
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		pool:             pool,
		repos:            repos,
		jwtService:       jwtService,
		logger:           logger,
		newStudentNumber: randomStudentNumber,
	}
}

// randomStudentNumber formats STU-<year>-<four digits>
func randomStudentNumber() string {
	return fmt.Sprintf("STU-%d-%04d", time.Now().Year(), 1000+rand.Intn(9000))
}

// validatePassword checks if password meets requirements
func (s *AuthService) validatePassword(password string) error {
	hasLetter, hasDigit := false, false
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrInvalidPassword
	}
	return nil
}

// Register creates a student profile and its login account in one transaction
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.Student, error) {
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	birthdate, err := dto.ParseDate(req.Birthdate)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	student := &models.Student{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Gender:        req.Gender,
		Birthdate:     birthdate,
		Program:       strings.TrimSpace(req.Program),
		YearLevel:     req.YearLevel,
		ContactNumber: req.ContactNumber,
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
	}
	username := strings.TrimSpace(req.Username)

	err = runInTx(ctx, s.pool, s.repos, func(ctx context.Context, tx *repositories.Repositories) error {
		taken, err := tx.UserRepository.UsernameOrEmailTaken(ctx, username, student.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrUsernameOrEmailTaken
		}

		if student.StudentNumber, err = s.allocateStudentNumber(ctx, tx.StudentRepository); err != nil {
			return err
		}
		if _, err := tx.StudentRepository.CreateStudent(ctx, student); err != nil {
			return err
		}

		_, err = tx.UserRepository.CreateUserAccount(ctx, &models.UserAccount{
			Username:     username,
			PasswordHash: hashedPassword,
			Role:         models.RoleStudent,
			StudentID:    &student.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("studentID", student.ID).
		Str("studentNumber", student.StudentNumber).
		Msg("Student registered")
	return student, nil
}

func (s *AuthService) allocateStudentNumber(ctx context.Context, students *repositories.StudentRepository) (string, error) {
	for i := 0; i < studentNumberAttempts; i++ {
		candidate := s.newStudentNumber()
		exists, err := students.StudentNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrStudentNumberSpace
}

// Login authenticates a user and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repos.UserRepository.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("username", user.Username).Msg("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	accessToken, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: user,
	}, nil
}
