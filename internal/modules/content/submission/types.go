package submission

import (
	"errors"
	"time"

	"github.com/adityanetrakar/handwritten-eval-system/internal/models"
)

type GradeSubmissionDTO struct {
	FilePath string `json:"file_path" binding:"required"`
}

type UpdateMarksDTO struct {
	Marks []AnswerMarkDTO `json:"marks" binding:"required,min=1,dive"`
}

type AnswerMarkDTO struct {
	AnswerID string `json:"answer_id" binding:"required"`
	Marks    int    `json:"marks"`
}

type answerResponse struct {
	ID                string `json:"id"`
	Position          int    `json:"position"`
	QuestionNumber    string `json:"question_number"`
	MaxMarks          int    `json:"max_marks"`
	StudentAnswerText string `json:"student_answer_text"`
	AIMark            int    `json:"ai_mark"`
	AIFeedback        string `json:"ai_feedback"`
	TeacherMark       int    `json:"teacher_mark"`
}

type submissionResponse struct {
	ID          string           `json:"id"`
	CourseID    string           `json:"course_id"`
	StudentCode string           `json:"student_code"`
	StudentName string           `json:"student_name,omitempty"`
	TotalMarks  int              `json:"total_marks"`
	MaxMarks    int              `json:"max_marks"`
	Created     time.Time        `json:"created"`
	Answers     []answerResponse `json:"answers,omitempty"`
}

func toResponse(sub *models.SubmissionModel, includeAnswers bool) submissionResponse {
	res := submissionResponse{
		ID:         sub.ID,
		CourseID:   sub.CourseID,
		TotalMarks: sub.TotalMarks,
		Created:    sub.CreatedAt,
	}
	if sub.Student != nil {
		res.StudentCode = sub.Student.Code
		res.StudentName = sub.Student.Name
	}
	for _, answer := range sub.Answers {
		res.MaxMarks += answer.MaxMarks
	}
	if includeAnswers {
		res.Answers = make([]answerResponse, 0, len(sub.Answers))
		for _, answer := range sub.Answers {
			res.Answers = append(res.Answers, answerResponse{
				ID:                answer.ID,
				Position:          answer.Position,
				QuestionNumber:    answer.QuestionNumber,
				MaxMarks:          answer.MaxMarks,
				StudentAnswerText: answer.StudentAnswerText,
				AIMark:            answer.AIMark,
				AIFeedback:        answer.AIFeedback,
				TeacherMark:       answer.TeacherMark,
			})
		}
	}
	return res
}

var (
	errSubmissionNotFound = errors.New("submission not found")
	errCourseNotFound     = errors.New("course not found")
	errMarksOutOfRange    = errors.New("marks out of range")
)
