package app

import (
	"fmt"

	"github.com/adityanetrakar/handwritten-eval-system/internal/middleware"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/auth/user"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/content/course"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/content/submission"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/grading"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/embedding"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/ensemble"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/inference"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/rasterize"
	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/storage/upload"
	pkgredis "github.com/adityanetrakar/handwritten-eval-system/internal/pkg/redis"
	"github.com/adityanetrakar/handwritten-eval-system/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(rc *pkgredis.Client) error {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	if rc != nil {
		// OptionalAuth runs first so authenticated clients bypass the limiter.
		r.Use(middleware.OptionalAuth())
		r.Use(middleware.RateLimit(rc.Raw()))
		r.Use(middleware.Idempotence(rc.Raw()))
	}

	// Processing stack shared by the answer-key and submission flows.
	converter, err := rasterize.New(a.cfg.Rasterizer.Binary, a.cfg.Rasterizer.Density, a.cfg.Rasterizer.TimeoutSeconds, a.cfg.ArtifactDir())
	if err != nil {
		return fmt.Errorf("rasterizer: %w", err)
	}
	vision, err := inference.NewClient(inference.Config{
		APIKey:         a.cfg.Gemini.APIKey,
		Model:          a.cfg.Gemini.Model,
		TimeoutSeconds: a.cfg.Gemini.TimeoutSeconds,
	})
	if err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	embedder := embedding.NewProvider(embedding.Config{
		APIKey:         a.cfg.Embedding.APIKey,
		BaseURL:        a.cfg.Embedding.BaseURL,
		Model:          a.cfg.Embedding.Model,
		TimeoutSeconds: a.cfg.Embedding.TimeoutSeconds,
	})
	grader := ensemble.New(embedder)

	mirror, err := upload.NewMirror(a.cfg.S3)
	if err != nil {
		return fmt.Errorf("s3 mirror: %w", err)
	}
	documents, err := upload.NewStore(a.cfg.UploadDir(), mirror, a.logger)
	if err != nil {
		return fmt.Errorf("upload store: %w", err)
	}

	submissionSvc := submission.NewService(db)
	pipeline := grading.NewPipeline(converter, vision, vision, grader, submissionSvc, submissionSvc, a.logger)
	keys := grading.NewKeyProcessor(converter, vision, vision, a.logger)

	api := r.Group("/api/v1")

	user.NewHandler(user.NewService(db)).RegisterRoutes(api, authMW)
	course.NewHandler(course.NewService(db), keys, documents).RegisterRoutes(api, authMW)
	submission.NewHandler(submissionSvc, pipeline, documents).RegisterRoutes(api, authMW)
	upload.NewHandler(documents).RegisterRoutes(api, authMW)

	return nil
}
