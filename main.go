package main

import (
	"context"
	"log"

	api "coachly-backend/cmd/api"
	analysisdomain "coachly-backend/internal/analysis/domain"
	analysisRepo "coachly-backend/internal/analysis/repository"
	authdomain "coachly-backend/internal/auth/domain"
	authRepo "coachly-backend/internal/auth/repository"
	authUsecase "coachly-backend/internal/auth/usecase"
	examdomain "coachly-backend/internal/exam/domain"
	examRepo "coachly-backend/internal/exam/repository"
	examUsecase "coachly-backend/internal/exam/usecase"
	habitdomain "coachly-backend/internal/habit/domain"
	habitRepo "coachly-backend/internal/habit/repository"
	habitUsecase "coachly-backend/internal/habit/usecase"
	notifdomain "coachly-backend/internal/notification/domain"
	notifRepo "coachly-backend/internal/notification/repository"
	programdomain "coachly-backend/internal/program/domain"
	programRepo "coachly-backend/internal/program/repository"
	programUsecase "coachly-backend/internal/program/usecase"
	projectdomain "coachly-backend/internal/project/domain"
	projectRepo "coachly-backend/internal/project/repository"
	projectUsecase "coachly-backend/internal/project/usecase"
	resourcedomain "coachly-backend/internal/resource/domain"
	resourceRepo "coachly-backend/internal/resource/repository"
	"coachly-backend/internal/sync"
	taskdomain "coachly-backend/internal/task/domain"
	taskRepo "coachly-backend/internal/task/repository"
	"coachly-backend/internal/task/scheduler"
	taskUsecase "coachly-backend/internal/task/usecase"
	"coachly-backend/pkg/cache"
	"coachly-backend/pkg/config"
	"coachly-backend/pkg/database"
	"coachly-backend/pkg/fcm"
	"coachly-backend/pkg/localstore"
	"coachly-backend/pkg/logger"
	"coachly-backend/pkg/metrics"
	"coachly-backend/pkg/sse"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger := logger.New()
	defer appLogger.Sync()

	metrics.Init()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.CoachStudent{},
		&notifdomain.DeviceToken{},
		&taskdomain.Task{}, &projectdomain.Project{},
		&habitdomain.Habit{}, &habitdomain.HabitCompletion{},
		&examdomain.ExamTemplate{}, &examdomain.ExamSection{}, &examdomain.ExamResult{},
		&programdomain.ProgramTemplate{},
		&analysisdomain.Report{},
		&resourcedomain.Resource{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Open the local mirror that backs offline habit reads and the outbox
	store, err := localstore.Open(cfg.MirrorPath)
	if err != nil {
		log.Fatal("Failed to open local mirror:", err)
	}
	defer store.Close()

	// Redis cache is optional, everything degrades to direct reads without it
	cacheClient, err := cache.New(cfg.RedisHost, cfg.RedisPort, appLogger)
	if err != nil {
		appLogger.Warn("redis unavailable, caching disabled", zap.Error(err))
		cacheClient = nil
	}

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	coachRepository := authRepo.NewCoachStudentRepository(db)
	tokenRepository := notifRepo.NewDeviceTokenRepository(db)
	taskRepository := taskRepo.NewTaskRepository(db)
	projectRepository := projectRepo.NewProjectRepository(db)
	habitRepository := habitRepo.NewHabitRepository(db)
	examRepository := examRepo.NewExamRepository(db)
	programRepository := programRepo.NewProgramRepository(db)
	reportRepository := analysisRepo.NewReportRepository(db)
	resourceRepository := resourceRepo.NewResourceRepository(db)

	// Outbox drains local habit writes to Postgres in the background
	outbox := sync.NewOutbox(store, sync.NewHabitWriter(habitRepository), sseManager, appLogger)
	if cfg.GoogleProjectID != "" {
		publisher, err := sync.NewPubSubPublisher(context.Background(), cfg.GoogleProjectID, cfg.PubSubTopic)
		if err != nil {
			appLogger.Warn("pubsub unavailable, mutation events disabled", zap.Error(err))
		} else {
			outbox.SetPublisher(publisher)
			defer publisher.Close()
		}
	}
	if err := outbox.Start(); err != nil {
		log.Fatal("Failed to start sync outbox:", err)
	}
	defer outbox.Stop()

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(userRepository, coachRepository, cfg)
	taskUc := taskUsecase.NewTaskUsecase(taskRepository, authUc)
	projectUc := projectUsecase.NewProjectUsecase(projectRepository, taskRepository, authUc)
	habitUc := habitUsecase.NewHabitUsecase(store, habitRepository, outbox, cacheClient, authUc, appLogger)
	examUc := examUsecase.NewExamUsecase(examRepository, authUc)
	programUc := programUsecase.NewProgramUsecase(programRepository, taskRepository, authUc)

	if err := programUsecase.Seed(programRepository, appLogger); err != nil {
		appLogger.Warn("failed to seed builtin programs", zap.Error(err))
	}

	// Push reminders (optional, needs Firebase credentials)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			appLogger.Warn("fcm unavailable, push reminders disabled", zap.Error(err))
			fcmClient = nil
		}
	}
	reminderScheduler := scheduler.NewTaskReminderScheduler(taskRepository, tokenRepository, fcmClient, appLogger)
	reminderScheduler.Start()
	defer reminderScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(
		authUc, taskUc, projectUc, habitUc, examUc, programUc,
		taskRepository, reportRepository, tokenRepository, resourceRepository,
		sseManager, cacheClient, cfg, appLogger,
	)

	appLogger.Info("server starting", zap.String("port", cfg.Port))
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
