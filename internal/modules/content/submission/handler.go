package submission

import (
	"context"
	"errors"

	"github.com/adityanetrakar/handwritten-eval-system/internal/middleware"
	"github.com/adityanetrakar/handwritten-eval-system/internal/models"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/storage/upload"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/pagination"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Pipeline grades one submission PDF end to end.
type Pipeline interface {
	Run(ctx context.Context, course *models.CourseModel, pdfPath string) (*models.SubmissionModel, bool, error)
}

type Handler struct {
	svc       *Service
	pipeline  Pipeline
	documents *upload.Store
}

func NewHandler(svc *Service, pipeline Pipeline, documents *upload.Store) *Handler {
	return &Handler{svc: svc, pipeline: pipeline, documents: documents}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("", authMW)

	g.POST("/courses/:id/submissions", h.grade)
	g.GET("/courses/:id/submissions", h.listByCourse)
	g.GET("/submissions/:id", h.get)
	g.PUT("/submissions/:id/marks", h.updateMarks)
	g.DELETE("/submissions/:id", h.delete)
}

// POST /courses/:id/submissions
func (h *Handler) grade(c *gin.Context) {
	course, ok := h.loadOwnedCourse(c)
	if !ok {
		return
	}

	var dto GradeSubmissionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pdfPath, err := h.documents.Resolve(dto.FilePath)
	if err != nil {
		response.BadRequest(c, "file_path does not reference an uploaded document")
		return
	}

	sub, duplicate, err := h.pipeline.Run(c.Request.Context(), course, pdfPath)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}
	if duplicate {
		response.ConflictData(c, "submission already graded for this student", toResponse(sub, true))
		return
	}
	response.Created(c, toResponse(sub, true))
}

// GET /courses/:id/submissions
func (h *Handler) listByCourse(c *gin.Context) {
	course, ok := h.loadOwnedCourse(c)
	if !ok {
		return
	}

	subs, meta, err := h.svc.ListByCourse(course.ID, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	data := make([]submissionResponse, 0, len(subs))
	for i := range subs {
		data = append(data, toResponse(&subs[i], false))
	}
	response.Paged(c, data, meta)
}

// GET /submissions/:id
func (h *Handler) get(c *gin.Context) {
	sub, ok := h.loadOwnedSubmission(c)
	if !ok {
		return
	}
	response.OK(c, toResponse(sub, true))
}

// PUT /submissions/:id/marks
func (h *Handler) updateMarks(c *gin.Context) {
	sub, ok := h.loadOwnedSubmission(c)
	if !ok {
		return
	}

	var dto UpdateMarksDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.svc.UpdateMarks(sub.ID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, errMarksOutOfRange):
			response.UnprocessableEntity(c, "marks must lie between 0 and the question's max marks")
		case errors.Is(err, errSubmissionNotFound):
			response.NotFoundMsg(c, "answer does not belong to this submission")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, toResponse(updated, true))
}

// DELETE /submissions/:id
func (h *Handler) delete(c *gin.Context) {
	sub, ok := h.loadOwnedSubmission(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(sub.ID); err != nil {
		if errors.Is(err, errSubmissionNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) loadOwnedCourse(c *gin.Context) (*models.CourseModel, bool) {
	course, err := h.svc.GetCourse(c.Param("id"))
	if err != nil {
		if errors.Is(err, errCourseNotFound) {
			response.NotFound(c)
		} else {
			response.InternalError(c, err)
		}
		return nil, false
	}
	if course.TeacherID != middleware.CurrentUserID(c) {
		response.Forbidden(c)
		return nil, false
	}
	return course, true
}

func (h *Handler) loadOwnedSubmission(c *gin.Context) (*models.SubmissionModel, bool) {
	sub, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, errSubmissionNotFound) {
			response.NotFound(c)
		} else {
			response.InternalError(c, err)
		}
		return nil, false
	}

	course, err := h.svc.GetCourse(sub.CourseID)
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	if course.TeacherID != middleware.CurrentUserID(c) {
		response.Forbidden(c)
		return nil, false
	}
	return sub, true
}
