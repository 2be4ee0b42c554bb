package dto

import "github.com/yigit/scholarhub/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a student self-registration
type RegisterRequest struct {
	FirstName     string  `json:"firstName" binding:"required,max=100"`
	LastName      string  `json:"lastName" binding:"required,max=100"`
	Gender        *string `json:"gender" binding:"omitempty,max=20"`
	Birthdate     *string `json:"birthdate" binding:"omitempty,datetime=2006-01-02" example:"2004-05-17"`
	Program       string  `json:"program" binding:"required,max=150"`
	YearLevel     int     `json:"yearLevel" binding:"required,min=1,max=6"`
	ContactNumber *string `json:"contactNumber" binding:"omitempty,max=30"`
	Email         string  `json:"email" binding:"required,email,max=150"`
	Username      string  `json:"username" binding:"required,min=3,max=50"`
	Password      string  `json:"password" binding:"required,min=8,max=72"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
}

// AuthResponse represents a successful login
type AuthResponse struct {
	Token TokenResponse       `json:"token"`
	User  *models.UserAccount `json:"user"`
}
