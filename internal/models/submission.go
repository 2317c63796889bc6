package models

import "gorm.io/gorm"

// SubmissionModel is one graded exam submission. The composite unique
// index enforces at most one submission per student per course.
type SubmissionModel struct {
	Base
	CourseID       string              `json:"course_id"  gorm:"uniqueIndex:idx_course_student;not null"`
	StudentID      string              `json:"student_id" gorm:"uniqueIndex:idx_course_student;not null"`
	Student        *StudentModel       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Answers        []GradedAnswerModel `json:"answers"   gorm:"foreignKey:SubmissionID"`
	TotalMarks     int                 `json:"total_marks"`
	SourceDocument string              `json:"source_document"`
}

func (SubmissionModel) TableName() string { return "submissions" }

// BeforeSave keeps the total in sync with the per-answer teacher marks.
func (s *SubmissionModel) BeforeSave(tx *gorm.DB) error {
	s.RecalculateTotal()
	return nil
}

func (s *SubmissionModel) RecalculateTotal() {
	total := 0
	for _, a := range s.Answers {
		total += a.TeacherMark
	}
	s.TotalMarks = total
}

// GradedAnswerModel is one graded answer inside a submission. TeacherMark
// starts equal to AIMark and may be overridden later.
type GradedAnswerModel struct {
	Base
	SubmissionID      string `json:"-"                   gorm:"index;not null"`
	Position          int    `json:"position"            gorm:"not null"`
	QuestionNumber    string `json:"question_number"     gorm:"not null"`
	MaxMarks          int    `json:"max_marks"           gorm:"not null"`
	StudentAnswerText string `json:"student_answer_text" gorm:"type:longtext"`
	AIMark            int    `json:"ai_mark"`
	AIFeedback        string `json:"ai_feedback"`
	TeacherMark       int    `json:"teacher_mark"`
}

func (GradedAnswerModel) TableName() string { return "graded_answers" }
