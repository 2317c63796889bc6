package submission

import (
	"errors"
	"strings"

	"github.com/adityanetrakar/handwritten-eval-system/internal/models"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/grading"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/pagination"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// FindOrCreate upserts a student by roll number.
func (s *Service) FindOrCreate(code, name string) (*models.StudentModel, error) {
	student := models.StudentModel{Code: strings.ToUpper(strings.TrimSpace(code)), Name: strings.TrimSpace(name)}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&student).Error
	if err != nil {
		return nil, err
	}
	// DoNothing leaves the model empty when the row already existed.
	var out models.StudentModel
	if err := s.db.First(&out, "code = ?", student.Code).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByCourseAndStudent loads the existing graded submission for the pair.
func (s *Service) FindByCourseAndStudent(courseID, studentID string) (*models.SubmissionModel, error) {
	var sub models.SubmissionModel
	err := s.db.Preload("Student").
		Preload("Answers", answerOrder).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// Create persists a graded submission with its answers. A unique-key clash on
// (course, student) surfaces as grading.ErrDuplicateSubmission.
func (s *Service) Create(sub *models.SubmissionModel) error {
	if err := s.db.Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return grading.ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

func (s *Service) ListByCourse(courseID string, q pagination.Query) ([]models.SubmissionModel, response.Pagination, error) {
	var subs []models.SubmissionModel
	query := s.db.Model(&models.SubmissionModel{}).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Preload("Student").
		Preload("Answers", answerOrder)
	meta, err := pagination.Paginate(query, q, &subs)
	return subs, meta, err
}

func (s *Service) GetByID(id string) (*models.SubmissionModel, error) {
	var sub models.SubmissionModel
	err := s.db.Preload("Student").
		Preload("Answers", answerOrder).
		First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// UpdateMarks applies teacher mark overrides and recalculates the total in
// one transaction.
func (s *Service) UpdateMarks(id string, dto *UpdateMarksDTO) (*models.SubmissionModel, error) {
	sub, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.GradedAnswerModel, len(sub.Answers))
	for i := range sub.Answers {
		byID[sub.Answers[i].ID] = &sub.Answers[i]
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, mark := range dto.Marks {
			answer, ok := byID[mark.AnswerID]
			if !ok || answer.SubmissionID != sub.ID {
				return errSubmissionNotFound
			}
			if mark.Marks < 0 || mark.Marks > answer.MaxMarks {
				return errMarksOutOfRange
			}
			if err := tx.Model(&models.GradedAnswerModel{}).
				Where("id = ?", answer.ID).
				Update("teacher_mark", mark.Marks).Error; err != nil {
				return err
			}
			answer.TeacherMark = mark.Marks
		}

		sub.RecalculateTotal()
		return tx.Model(&models.SubmissionModel{}).
			Where("id = ?", sub.ID).
			Update("total_marks", sub.TotalMarks).Error
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Delete(&models.GradedAnswerModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SubmissionModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errSubmissionNotFound
		}
		return nil
	})
}

// GetCourse loads a course with its ordered answer key.
func (s *Service) GetCourse(courseID string) (*models.CourseModel, error) {
	var course models.CourseModel
	err := s.db.Preload("AnswerKey", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&course, "id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func answerOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
