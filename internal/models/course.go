package models

// CourseModel is a course owned by a teacher, carrying its answer key.
type CourseModel struct {
	Base
	CourseName string                `json:"course_name" gorm:"not null"`
	CourseCode string                `json:"course_code" gorm:"index;not null"`
	TeacherID  string                `json:"teacher_id"  gorm:"index;not null"`
	AnswerKey  []AnswerKeyEntryModel `json:"answer_key" gorm:"foreignKey:CourseID"`
}

func (CourseModel) TableName() string { return "courses" }

// AnswerKeyEntryModel is one reference answer in a course's answer key.
// Position preserves the order entries appeared in the source document.
type AnswerKeyEntryModel struct {
	Base
	CourseID       string `json:"-"               gorm:"index;not null"`
	Position       int    `json:"position"        gorm:"not null"`
	QuestionNumber string `json:"question_number" gorm:"not null"`
	MaxMarks       int    `json:"max_marks"       gorm:"not null"`
	ReferenceText  string `json:"reference_text"  gorm:"type:longtext"`
}

func (AnswerKeyEntryModel) TableName() string { return "answer_key_entries" }
