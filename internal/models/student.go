package models

import (
	"strings"

	"gorm.io/gorm"
)

// StudentModel is a student identified by the code extracted from the
// identity page of a scanned submission.
type StudentModel struct {
	Base
	Code string `json:"code" gorm:"uniqueIndex;not null"`
	Name string `json:"name"`
}

func (StudentModel) TableName() string { return "students" }

// Codes are stored uppercase and trimmed regardless of how they arrive.
func (s *StudentModel) BeforeSave(tx *gorm.DB) error {
	s.Code = strings.ToUpper(strings.TrimSpace(s.Code))
	return nil
}
