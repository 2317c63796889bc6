package grading

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adityanetrakar/handwritten-eval-system/internal/models"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/inference"
)

type fakeRasterizer struct {
	dir   string
	pages int
	err   error

	produced []string
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	paths := make([]string, 0, f.pages)
	for i := 0; i < f.pages; i++ {
		path := filepath.Join(f.dir, fmt.Sprintf("page-%d.png", i))
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	f.produced = paths
	return paths, nil
}

type fakeTranscriber struct {
	identifier string
	pageText   map[string]string
}

func (f *fakeTranscriber) TranscribePage(_ context.Context, imagePath string) string {
	return f.pageText[filepath.Base(imagePath)]
}

func (f *fakeTranscriber) ExtractIdentifier(_ context.Context, _ string) string {
	return f.identifier
}

type fakeStructurer struct {
	answers       map[string]string
	segmentCalls  int
	gotTranscript string
}

func (f *fakeStructurer) StructureAnswerKey(_ context.Context, _ string) ([]inference.KeyEntry, error) {
	return nil, errors.New("not used")
}

func (f *fakeStructurer) SegmentAnswers(_ context.Context, transcript string, labels []string) map[string]string {
	f.segmentCalls++
	f.gotTranscript = transcript
	out := make(map[string]string, len(labels))
	for _, label := range labels {
		out[label] = f.answers[label]
	}
	return out
}

type fakeGrader struct{}

func (fakeGrader) Grade(_ context.Context, _, student string, maxMarks int) (int, string) {
	if strings.TrimSpace(student) == "" {
		return 0, "No answer"
	}
	return maxMarks, "Excellent"
}

type memStudentStore struct {
	students map[string]*models.StudentModel
}

func (s *memStudentStore) FindOrCreate(code, name string) (*models.StudentModel, error) {
	if s.students == nil {
		s.students = make(map[string]*models.StudentModel)
	}
	if existing, ok := s.students[code]; ok {
		return existing, nil
	}
	student := &models.StudentModel{Code: code, Name: name}
	student.ID = "student-" + code
	s.students[code] = student
	return student, nil
}

type memSubmissionStore struct {
	existing  *models.SubmissionModel
	createErr error
	created   []*models.SubmissionModel
}

func (s *memSubmissionStore) FindByCourseAndStudent(courseID, studentID string) (*models.SubmissionModel, error) {
	if s.existing != nil && s.existing.CourseID == courseID && s.existing.StudentID == studentID {
		return s.existing, nil
	}
	return nil, errors.New("not found")
}

func (s *memSubmissionStore) Create(sub *models.SubmissionModel) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, sub)
	for _, answer := range sub.Answers {
		sub.TotalMarks += answer.TeacherMark
	}
	return nil
}

func testCourse() *models.CourseModel {
	course := &models.CourseModel{CourseName: "Biology", CourseCode: "BIO101"}
	course.ID = "course-1"
	course.AnswerKey = []models.AnswerKeyEntryModel{
		{CourseID: course.ID, Position: 0, QuestionNumber: "1a", MaxMarks: 5, ReferenceText: "The cell membrane controls transport."},
		{CourseID: course.ID, Position: 1, QuestionNumber: "1b", MaxMarks: 10, ReferenceText: "Mitochondria produce ATP."},
	}
	return course
}

func TestPipelineRunGradesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	rasterizer := &fakeRasterizer{dir: dir, pages: 3}
	transcriber := &fakeTranscriber{
		identifier: "21CS042",
		pageText: map[string]string{
			"page-1.png": "1a) The cell membrane controls transport.",
			"page-2.png": "1b) Mitochondria produce ATP.",
		},
	}
	structurer := &fakeStructurer{answers: map[string]string{
		"1a": "The cell membrane controls transport.",
		"1b": "Mitochondria produce ATP.",
	}}
	students := &memStudentStore{}
	submissions := &memSubmissionStore{}

	p := NewPipeline(rasterizer, transcriber, structurer, fakeGrader{}, students, submissions, nil)
	sub, duplicate, err := p.Run(context.Background(), testCourse(), "/tmp/script.pdf")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if duplicate {
		t.Error("Run() duplicate = true, want false")
	}
	if sub.StudentID != "student-21CS042" {
		t.Errorf("StudentID = %q, want student-21CS042", sub.StudentID)
	}
	if len(sub.Answers) != 2 {
		t.Fatalf("Run() produced %d answers, want 2", len(sub.Answers))
	}
	if sub.Answers[0].AIMark != 5 || sub.Answers[1].AIMark != 10 {
		t.Errorf("AI marks = %d, %d, want 5, 10", sub.Answers[0].AIMark, sub.Answers[1].AIMark)
	}
	if sub.TotalMarks != 15 {
		t.Errorf("TotalMarks = %d, want 15", sub.TotalMarks)
	}

	if structurer.gotTranscript != "1a) The cell membrane controls transport.\n\n1b) Mitochondria produce ATP." {
		t.Errorf("transcript = %q, cover page must be excluded and pages joined", structurer.gotTranscript)
	}

	for _, path := range rasterizer.produced {
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Errorf("page image %s was not released", path)
		}
	}
}

func TestPipelineRunDuplicatePreCheck(t *testing.T) {
	course := testCourse()
	existing := &models.SubmissionModel{CourseID: course.ID, StudentID: "student-21CS042", TotalMarks: 12}
	existing.ID = "submission-1"

	rasterizer := &fakeRasterizer{dir: t.TempDir(), pages: 2}
	submissions := &memSubmissionStore{existing: existing}
	p := NewPipeline(rasterizer, &fakeTranscriber{identifier: "21CS042"}, &fakeStructurer{}, fakeGrader{}, &memStudentStore{}, submissions, nil)

	sub, duplicate, err := p.Run(context.Background(), course, "/tmp/script.pdf")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !duplicate {
		t.Error("Run() duplicate = false, want true")
	}
	if sub.ID != "submission-1" {
		t.Errorf("Run() returned %q, want the existing submission", sub.ID)
	}
	if len(submissions.created) != 0 {
		t.Error("Run() created a submission despite the duplicate")
	}
	for _, path := range rasterizer.produced {
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Errorf("page image %s was not released", path)
		}
	}
}

func TestPipelineRunDuplicateAtInsert(t *testing.T) {
	course := testCourse()
	existing := &models.SubmissionModel{CourseID: course.ID, StudentID: "student-21CS042", TotalMarks: 9}
	existing.ID = "submission-2"

	// The store misses the pre-check but rejects the insert, as happens when
	// two runs race.
	submissions := &racingSubmissionStore{existing: existing}
	p := NewPipeline(&fakeRasterizer{dir: t.TempDir(), pages: 2}, &fakeTranscriber{identifier: "21CS042"}, &fakeStructurer{}, fakeGrader{}, &memStudentStore{}, submissions, nil)

	sub, duplicate, err := p.Run(context.Background(), course, "/tmp/script.pdf")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !duplicate {
		t.Error("Run() duplicate = false, want true")
	}
	if sub.ID != "submission-2" {
		t.Errorf("Run() returned %q, want the existing submission", sub.ID)
	}
}

type racingSubmissionStore struct {
	existing *models.SubmissionModel
	checked  bool
}

func (s *racingSubmissionStore) FindByCourseAndStudent(_, _ string) (*models.SubmissionModel, error) {
	if !s.checked {
		s.checked = true
		return nil, errors.New("not found")
	}
	return s.existing, nil
}

func (s *racingSubmissionStore) Create(_ *models.SubmissionModel) error {
	return ErrDuplicateSubmission
}

func TestPipelineRunEmptyTranscript(t *testing.T) {
	structurer := &fakeStructurer{}
	p := NewPipeline(
		&fakeRasterizer{dir: t.TempDir(), pages: 3},
		&fakeTranscriber{identifier: "21CS042"},
		structurer,
		fakeGrader{},
		&memStudentStore{},
		&memSubmissionStore{},
		nil,
	)

	sub, _, err := p.Run(context.Background(), testCourse(), "/tmp/blank.pdf")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if structurer.segmentCalls != 0 {
		t.Errorf("SegmentAnswers called %d times for an empty transcript, want 0", structurer.segmentCalls)
	}
	for _, answer := range sub.Answers {
		if answer.StudentAnswerText != "" || answer.AIMark != 0 {
			t.Errorf("answer %s = (%q, %d), want empty and zero", answer.QuestionNumber, answer.StudentAnswerText, answer.AIMark)
		}
	}
	if sub.TotalMarks != 0 {
		t.Errorf("TotalMarks = %d, want 0", sub.TotalMarks)
	}
}

func TestPipelineRunPlaceholderIdentifier(t *testing.T) {
	students := &memStudentStore{}
	p := NewPipeline(
		&fakeRasterizer{dir: t.TempDir(), pages: 2},
		&fakeTranscriber{identifier: inference.UnknownIdentifier},
		&fakeStructurer{},
		fakeGrader{},
		students,
		&memSubmissionStore{},
		nil,
	)

	if _, _, err := p.Run(context.Background(), testCourse(), "/tmp/script.pdf"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(students.students) != 1 {
		t.Fatalf("created %d students, want 1", len(students.students))
	}
	for code := range students.students {
		if !strings.HasPrefix(code, "TEMP-") {
			t.Errorf("student code = %q, want TEMP- placeholder", code)
		}
	}
}

func TestPipelineRunReleasesArtifactsOnPersistFailure(t *testing.T) {
	rasterizer := &fakeRasterizer{dir: t.TempDir(), pages: 2}
	p := NewPipeline(
		rasterizer,
		&fakeTranscriber{identifier: "21CS042"},
		&fakeStructurer{},
		fakeGrader{},
		&memStudentStore{},
		&memSubmissionStore{createErr: errors.New("db gone")},
		nil,
	)

	if _, _, err := p.Run(context.Background(), testCourse(), "/tmp/script.pdf"); err == nil {
		t.Fatal("Run() error = nil, want persistence failure")
	}
	for _, path := range rasterizer.produced {
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Errorf("page image %s was not released", path)
		}
	}
}

func TestPipelineRunNoAnswerKey(t *testing.T) {
	course := &models.CourseModel{CourseName: "Empty"}
	course.ID = "course-2"

	p := NewPipeline(&fakeRasterizer{dir: t.TempDir(), pages: 2}, &fakeTranscriber{}, &fakeStructurer{}, fakeGrader{}, &memStudentStore{}, &memSubmissionStore{}, nil)
	if _, _, err := p.Run(context.Background(), course, "/tmp/script.pdf"); err == nil {
		t.Fatal("Run() error = nil, want missing answer key failure")
	}
}
