package api

import (
	analysisDelivery "coachly-backend/internal/analysis/delivery"
	analysisRepo "coachly-backend/internal/analysis/repository"
	analysisUsecasePkg "coachly-backend/internal/analysis/usecase"
	authUsecasePkg "coachly-backend/internal/auth/usecase"
	"coachly-backend/internal/board"
	boardDelivery "coachly-backend/internal/board/delivery"
	examDelivery "coachly-backend/internal/exam/delivery"
	examUsecasePkg "coachly-backend/internal/exam/usecase"
	habitDelivery "coachly-backend/internal/habit/delivery"
	habitUsecasePkg "coachly-backend/internal/habit/usecase"
	notifDelivery "coachly-backend/internal/notification/delivery"
	notifRepo "coachly-backend/internal/notification/repository"
	programDelivery "coachly-backend/internal/program/delivery"
	programUsecasePkg "coachly-backend/internal/program/usecase"
	projectDelivery "coachly-backend/internal/project/delivery"
	projectUsecasePkg "coachly-backend/internal/project/usecase"
	resourceDelivery "coachly-backend/internal/resource/delivery"
	resourceRepo "coachly-backend/internal/resource/repository"
	taskDelivery "coachly-backend/internal/task/delivery"
	taskRepo "coachly-backend/internal/task/repository"
	taskUsecasePkg "coachly-backend/internal/task/usecase"
	"coachly-backend/pkg/ai"
	"coachly-backend/pkg/cache"
	"coachly-backend/pkg/config"
	"coachly-backend/pkg/metrics"
	"coachly-backend/pkg/middleware"
	"coachly-backend/pkg/sse"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	authUsecase     authUsecasePkg.AuthUsecase
	analysisUsecase analysisUsecasePkg.AnalysisUsecase
	sseManager      *sse.Manager
	config          *config.Config
	logger          *zap.Logger

	taskHandler         *taskDelivery.TaskHandler
	boardHandler        *boardDelivery.BoardHandler
	projectHandler      *projectDelivery.ProjectHandler
	habitHandler        *habitDelivery.HabitHandler
	examHandler         *examDelivery.ExamHandler
	programHandler      *programDelivery.ProgramHandler
	analysisHandler     *analysisDelivery.AnalysisHandler
	notificationHandler *notifDelivery.NotificationHandler
	resourceHandler     *resourceDelivery.ResourceHandler
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	taskUc taskUsecasePkg.TaskUsecase,
	projectUc projectUsecasePkg.ProjectUsecase,
	habitUc habitUsecasePkg.HabitUsecase,
	examUc examUsecasePkg.ExamUsecase,
	programUc programUsecasePkg.ProgramUsecase,
	taskRepository taskRepo.TaskRepository,
	reportRepository analysisRepo.ReportRepository,
	tokenRepository notifRepo.DeviceTokenRepository,
	resourceRepository resourceRepo.ResourceRepository,
	sseManager *sse.Manager,
	cacheClient *cache.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *Handler {
	aiService, err := ai.NewAnalyzerService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		logger.Warn("ai provider unavailable, analysis falls back to static summaries", zap.Error(err))
		aiService, _ = ai.NewAnalyzerService(ai.Config{Provider: ai.ProviderNone})
	}

	analysisUc := analysisUsecasePkg.NewAnalysisUsecase(
		reportRepository, taskRepository, habitUc, examUc,
		aiService, sseManager, cacheClient, authUc, logger, 2,
	)
	analysisUc.Start()
	logger.Info("analysis workers started")

	return &Handler{
		authUsecase:         authUc,
		analysisUsecase:     analysisUc,
		sseManager:          sseManager,
		config:              cfg,
		logger:              logger,
		taskHandler:         taskDelivery.NewTaskHandler(taskUc),
		boardHandler:        boardDelivery.NewBoardHandler(board.NewManager(), taskUc),
		projectHandler:      projectDelivery.NewProjectHandler(projectUc),
		habitHandler:        habitDelivery.NewHabitHandler(habitUc),
		examHandler:         examDelivery.NewExamHandler(examUc),
		programHandler:      programDelivery.NewProgramHandler(programUc),
		analysisHandler:     analysisDelivery.NewAnalysisHandler(analysisUc),
		notificationHandler: notifDelivery.NewNotificationHandler(tokenRepository),
		resourceHandler:     resourceDelivery.NewResourceHandler(resourceRepository, cfg.UploadDir, cfg.PublicBaseURL),
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestLogger(h.logger))
	r.Use(metrics.Middleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Uploaded resources are served directly from disk.
	r.Static("/files", h.config.UploadDir)

	SetupRoutes(r, h)

	return r.Run(addr)
}
