package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adityanetrakar/handwritten-eval-system/internal/models"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/inference"
	"go.uber.org/zap"
)

// ErrDuplicateSubmission means the course already holds a graded submission
// for this student.
var ErrDuplicateSubmission = errors.New("submission already graded for this student")

// Rasterizer renders a PDF into per-page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string) ([]string, error)
}

// Transcriber reads handwritten pages.
type Transcriber interface {
	TranscribePage(ctx context.Context, imagePath string) string
	ExtractIdentifier(ctx context.Context, imagePath string) string
}

// Structurer turns raw transcripts into structured data.
type Structurer interface {
	StructureAnswerKey(ctx context.Context, rawKey string) ([]inference.KeyEntry, error)
	SegmentAnswers(ctx context.Context, transcript string, labels []string) map[string]string
}

// Grader scores one answer against its reference.
type Grader interface {
	Grade(ctx context.Context, reference, student string, maxMarks int) (int, string)
}

// StudentStore resolves roll numbers to student records.
type StudentStore interface {
	FindOrCreate(code, name string) (*models.StudentModel, error)
}

// SubmissionStore persists graded submissions. Create returns
// ErrDuplicateSubmission when the course/student pair already exists.
type SubmissionStore interface {
	FindByCourseAndStudent(courseID, studentID string) (*models.SubmissionModel, error)
	Create(sub *models.SubmissionModel) error
}

// Pipeline runs a submission PDF end to end: rasterize, identify, transcribe,
// segment, grade, persist.
type Pipeline struct {
	rasterizer  Rasterizer
	transcriber Transcriber
	structurer  Structurer
	grader      Grader
	students    StudentStore
	submissions SubmissionStore
	logger      *zap.Logger
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(
	rasterizer Rasterizer,
	transcriber Transcriber,
	structurer Structurer,
	grader Grader,
	students StudentStore,
	submissions SubmissionStore,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		rasterizer:  rasterizer,
		transcriber: transcriber,
		structurer:  structurer,
		grader:      grader,
		students:    students,
		submissions: submissions,
		logger:      logger,
	}
}

// Run grades pdfPath against the course's answer key. The course must carry
// its AnswerKey entries. When the student already has a graded submission the
// existing record is returned with duplicate set to true. Page images are
// always removed before Run returns.
func (p *Pipeline) Run(ctx context.Context, course *models.CourseModel, pdfPath string) (sub *models.SubmissionModel, duplicate bool, err error) {
	if course == nil {
		return nil, false, errors.New("grading: course is required")
	}
	if len(course.AnswerKey) == 0 {
		return nil, false, fmt.Errorf("grading: course %s has no answer key", course.ID)
	}

	p.logger.Info("rasterizing submission", zap.String("course_id", course.ID), zap.String("document", pdfPath))
	images, err := p.rasterizer.Rasterize(ctx, pdfPath)
	if err != nil {
		return nil, false, err
	}
	defer ReleaseArtifacts(images, p.logger)

	code := p.transcriber.ExtractIdentifier(ctx, images[0])
	if code == inference.UnknownIdentifier {
		code = inference.PlaceholderIdentifier()
		p.logger.Warn("roll number unreadable, using placeholder",
			zap.String("course_id", course.ID), zap.String("placeholder", code))
	}

	student, err := p.students.FindOrCreate(code, "")
	if err != nil {
		return nil, false, fmt.Errorf("resolve student %s: %w", code, err)
	}

	if existing, findErr := p.submissions.FindByCourseAndStudent(course.ID, student.ID); findErr == nil && existing != nil {
		p.logger.Info("duplicate submission",
			zap.String("course_id", course.ID), zap.String("student_code", student.Code))
		return existing, true, nil
	}

	transcript := p.transcribeAnswerPages(ctx, images)

	labels := make([]string, 0, len(course.AnswerKey))
	for _, entry := range course.AnswerKey {
		labels = append(labels, entry.QuestionNumber)
	}

	var answers map[string]string
	if strings.TrimSpace(transcript) == "" {
		p.logger.Warn("empty transcript, grading all questions as unanswered",
			zap.String("course_id", course.ID), zap.String("student_code", student.Code))
		answers = make(map[string]string, len(labels))
		for _, label := range labels {
			answers[label] = ""
		}
	} else {
		answers = p.structurer.SegmentAnswers(ctx, transcript, labels)
	}

	graded := make([]models.GradedAnswerModel, 0, len(course.AnswerKey))
	for _, entry := range course.AnswerKey {
		studentAnswer := answers[entry.QuestionNumber]
		marks, feedback := p.grader.Grade(ctx, entry.ReferenceText, studentAnswer, entry.MaxMarks)
		graded = append(graded, models.GradedAnswerModel{
			Position:          entry.Position,
			QuestionNumber:    entry.QuestionNumber,
			MaxMarks:          entry.MaxMarks,
			StudentAnswerText: studentAnswer,
			AIMark:            marks,
			AIFeedback:        feedback,
			TeacherMark:       marks,
		})
	}

	sub = &models.SubmissionModel{
		CourseID:       course.ID,
		StudentID:      student.ID,
		Answers:        graded,
		SourceDocument: pdfPath,
	}
	if err := p.submissions.Create(sub); err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			if existing, findErr := p.submissions.FindByCourseAndStudent(course.ID, student.ID); findErr == nil && existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, fmt.Errorf("persist submission: %w", err)
	}
	sub.Student = student

	p.logger.Info("submission graded",
		zap.String("course_id", course.ID),
		zap.String("student_code", student.Code),
		zap.Int("total_marks", sub.TotalMarks),
		zap.Int("questions", len(graded)))
	return sub, false, nil
}

// transcribeAnswerPages transcribes every page after the cover page and joins
// them in order.
func (p *Pipeline) transcribeAnswerPages(ctx context.Context, images []string) string {
	if len(images) < 2 {
		return ""
	}
	pages := make([]string, 0, len(images)-1)
	for _, image := range images[1:] {
		if text := p.transcriber.TranscribePage(ctx, image); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n")
}
