package course

import (
	"errors"
	"time"

	"github.com/adityanetrakar/handwritten-eval-system/internal/models"
)

type CreateCourseDTO struct {
	CourseName string `json:"course_name" binding:"required"`
	CourseCode string `json:"course_code"`
}

type AnswerKeyDTO struct {
	FilePath string `json:"file_path" binding:"required"`
}

type keyEntryResponse struct {
	ID             string `json:"id"`
	Position       int    `json:"position"`
	QuestionNumber string `json:"question_number"`
	MaxMarks       int    `json:"max_marks"`
	ReferenceText  string `json:"reference_text"`
}

type courseResponse struct {
	ID         string             `json:"id"`
	CourseName string             `json:"course_name"`
	CourseCode string             `json:"course_code"`
	TeacherID  string             `json:"teacher_id"`
	Created    time.Time          `json:"created"`
	AnswerKey  []keyEntryResponse `json:"answer_key,omitempty"`
	Questions  int                `json:"questions"`
}

func toResponse(course *models.CourseModel, includeKey bool) courseResponse {
	res := courseResponse{
		ID:         course.ID,
		CourseName: course.CourseName,
		CourseCode: course.CourseCode,
		TeacherID:  course.TeacherID,
		Created:    course.CreatedAt,
		Questions:  len(course.AnswerKey),
	}
	if includeKey {
		res.AnswerKey = make([]keyEntryResponse, 0, len(course.AnswerKey))
		for _, entry := range course.AnswerKey {
			res.AnswerKey = append(res.AnswerKey, keyEntryResponse{
				ID:             entry.ID,
				Position:       entry.Position,
				QuestionNumber: entry.QuestionNumber,
				MaxMarks:       entry.MaxMarks,
				ReferenceText:  entry.ReferenceText,
			})
		}
	}
	return res
}

var errCourseNotFound = errors.New("course not found")
