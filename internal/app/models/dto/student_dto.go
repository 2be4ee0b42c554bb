package dto

import (
	"fmt"
	"time"

	"github.com/yigit/scholarhub/internal/app/models"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// UpdateStudentRequest is an admin edit of a student profile
type UpdateStudentRequest struct {
	FirstName     *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName      *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Gender        *string `json:"gender" binding:"omitempty,max=20"`
	Birthdate     *string `json:"birthdate" binding:"omitempty,datetime=2006-01-02"`
	Program       *string `json:"program" binding:"omitempty,min=1,max=150"`
	YearLevel     *int    `json:"yearLevel" binding:"omitempty,min=1,max=6"`
	ContactNumber *string `json:"contactNumber" binding:"omitempty,max=30"`
	Email         *string `json:"email" binding:"omitempty,email,max=150"`
}

// ToModel converts the request to a student update
func (r UpdateStudentRequest) ToModel() (models.StudentUpdate, error) {
	birthdate, err := ParseDate(r.Birthdate)
	if err != nil {
		return models.StudentUpdate{}, err
	}
	return models.StudentUpdate{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Gender:        r.Gender,
		Birthdate:     birthdate,
		Program:       r.Program,
		YearLevel:     r.YearLevel,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
	}, nil
}

// ParseDate parses an optional YYYY-MM-DD date
func ParseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *value, err)
	}
	return &t, nil
}
