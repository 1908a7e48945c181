package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/apiserver/handlers"
	"github.com/stagegate/stagegate/pkg/apiserver/middleware"
	"github.com/stagegate/stagegate/pkg/auth"
	"github.com/stagegate/stagegate/pkg/config"
	"github.com/stagegate/stagegate/pkg/workflow"
)

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	logger *zap.Logger
}

func NewServer(
	workflows *workflow.WorkflowService,
	submissions *workflow.SubmissionService,
	activities handlers.ActivityReader,
	tokens *auth.TokenManager,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{cfg: cfg, logger: logger}
	s.setupRouter(workflows, submissions, activities, tokens)
	return s
}

func (s *Server) setupRouter(
	workflows *workflow.WorkflowService,
	submissions *workflow.SubmissionService,
	activities handlers.ActivityReader,
	tokens *auth.TokenManager,
) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.Use(middleware.Auth(tokens))

		workflowHandler := handlers.NewWorkflowHandler(workflows, s.logger)
		api.POST("/workflows", workflowHandler.Create)
		api.GET("/workflows", workflowHandler.List)
		api.GET("/workflows/:id", workflowHandler.Get)
		api.DELETE("/workflows/:id", workflowHandler.Deactivate)

		submissionHandler := handlers.NewSubmissionHandler(submissions, s.logger)
		api.POST("/submissions", submissionHandler.Submit)
		api.GET("/submissions", submissionHandler.List)
		api.GET("/submissions/pending", submissionHandler.ListPending)
		api.GET("/submissions/:id", submissionHandler.Get)
		api.POST("/submissions/:id/approve", submissionHandler.Approve)
		api.POST("/submissions/:id/reject", submissionHandler.Reject)
		api.POST("/submissions/:id/request-changes", submissionHandler.RequestChanges)
		api.POST("/submissions/:id/publish", submissionHandler.Publish)

		activityHandler := handlers.NewActivityHandler(activities, s.logger)
		api.GET("/activity", activityHandler.List)
	}

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
