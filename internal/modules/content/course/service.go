package course

import (
	"errors"
	"strings"

	"github.com/adityanetrakar/handwritten-eval-system/internal/models"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/inference"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/pagination"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Create(teacherID string, dto *CreateCourseDTO) (*models.CourseModel, error) {
	course := models.CourseModel{
		CourseName: strings.TrimSpace(dto.CourseName),
		CourseCode: strings.ToUpper(strings.TrimSpace(dto.CourseCode)),
		TeacherID:  teacherID,
	}
	return &course, s.db.Create(&course).Error
}

func (s *Service) List(teacherID string, q pagination.Query) ([]models.CourseModel, response.Pagination, error) {
	var courses []models.CourseModel
	query := s.db.Model(&models.CourseModel{}).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Preload("AnswerKey", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	meta, err := pagination.Paginate(query, q, &courses)
	return courses, meta, err
}

// GetByID loads a course with its answer key ordered by position.
func (s *Service) GetByID(id string) (*models.CourseModel, error) {
	var course models.CourseModel
	err := s.db.Preload("AnswerKey", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// Delete removes the course together with its answer key and every graded
// submission.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.AnswerKeyEntryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id IN (?)",
			tx.Model(&models.SubmissionModel{}).Select("id").Where("course_id = ?", id),
		).Delete(&models.GradedAnswerModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.SubmissionModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CourseModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errCourseNotFound
		}
		return nil
	})
}

// ReplaceAnswerKey swaps the course's answer key for the freshly structured
// entries in one transaction, preserving their order as positions.
func (s *Service) ReplaceAnswerKey(courseID string, entries []inference.KeyEntry) ([]models.AnswerKeyEntryModel, error) {
	rows := make([]models.AnswerKeyEntryModel, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, models.AnswerKeyEntryModel{
			CourseID:       courseID,
			Position:       i,
			QuestionNumber: entry.QuestionNumber,
			MaxMarks:       entry.MaxMarks,
			ReferenceText:  entry.ReferenceText,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&models.AnswerKeyEntryModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
