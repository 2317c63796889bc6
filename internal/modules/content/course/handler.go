package course

import (
	"context"
	"errors"

	"github.com/adityanetrakar/handwritten-eval-system/internal/middleware"
	"github.com/adityanetrakar/handwritten-eval-system/internal/models"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/inference"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/storage/upload"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/pagination"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// KeyProcessor turns an answer-key PDF into structured entries.
type KeyProcessor interface {
	ProcessAnswerKey(ctx context.Context, pdfPath string) ([]inference.KeyEntry, error)
}

type Handler struct {
	svc       *Service
	keys      KeyProcessor
	documents *upload.Store
}

func NewHandler(svc *Service, keys KeyProcessor, documents *upload.Store) *Handler {
	return &Handler{svc: svc, keys: keys, documents: documents}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/courses", authMW)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/answer-key", h.uploadAnswerKey)
}

// POST /courses
func (h *Handler) create(c *gin.Context) {
	var dto CreateCourseDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	course, err := h.svc.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(course, false))
}

// GET /courses
func (h *Handler) list(c *gin.Context) {
	courses, meta, err := h.svc.List(middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	data := make([]courseResponse, 0, len(courses))
	for i := range courses {
		data = append(data, toResponse(&courses[i], false))
	}
	response.Paged(c, data, meta)
}

// GET /courses/:id
func (h *Handler) get(c *gin.Context) {
	course, err := h.loadOwned(c)
	if err != nil {
		return
	}
	response.OK(c, toResponse(course, true))
}

// DELETE /courses/:id
func (h *Handler) delete(c *gin.Context) {
	if _, err := h.loadOwned(c); err != nil {
		return
	}
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, errCourseNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// POST /courses/:id/answer-key
func (h *Handler) uploadAnswerKey(c *gin.Context) {
	course, err := h.loadOwned(c)
	if err != nil {
		return
	}

	var dto AnswerKeyDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pdfPath, err := h.documents.Resolve(dto.FilePath)
	if err != nil {
		response.BadRequest(c, "file_path does not reference an uploaded document")
		return
	}

	entries, err := h.keys.ProcessAnswerKey(c.Request.Context(), pdfPath)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	rows, err := h.svc.ReplaceAnswerKey(course.ID, entries)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	course.AnswerKey = rows
	response.OK(c, toResponse(course, true))
}

// loadOwned fetches the course from the path parameter and enforces that the
// caller owns it. It writes the error response itself.
func (h *Handler) loadOwned(c *gin.Context) (*models.CourseModel, error) {
	course, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, errCourseNotFound) {
			response.NotFound(c)
		} else {
			response.InternalError(c, err)
		}
		return nil, err
	}
	if course.TeacherID != middleware.CurrentUserID(c) {
		response.Forbidden(c)
		return nil, errors.New("forbidden")
	}
	return course, nil
}
