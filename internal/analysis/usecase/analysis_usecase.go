package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"coachly-backend/internal/analysis/domain"
	"coachly-backend/internal/analysis/repository"
	examuc "coachly-backend/internal/exam/usecase"
	habituc "coachly-backend/internal/habit/usecase"
	taskdomain "coachly-backend/internal/task/domain"
	"coachly-backend/pkg/ai"
	"coachly-backend/pkg/cache"
	"coachly-backend/pkg/sse"
)

const reportCacheTTL = 30 * time.Minute

// AccessChecker answers whether an actor may touch a student's data.
type AccessChecker interface {
	CanAccessStudent(actorID, studentID string) (bool, error)
}

// TaskSource supplies the tasks of the analyzed period.
type TaskSource interface {
	FindRange(userID string, from, to time.Time) ([]*taskdomain.Task, error)
}

// HabitSource supplies per-habit summaries.
type HabitSource interface {
	Stats(actorID, userID string) ([]*habituc.HabitStats, error)
}

// ExamSource supplies per-template exam averages.
type ExamSource interface {
	Averages(actorID, userID string) ([]*examuc.TemplateAverage, error)
}

// ReportJob is one queued analysis run.
type ReportJob struct {
	ReportID string
	UserID   string
	From     string
	To       string
}

// AnalysisUsecase generates progress reports in the background: a request
// creates a pending report, workers gather the student's data, run it
// through the analyzer and flip the report to ready.
type AnalysisUsecase interface {
	RequestReport(actorID, userID, from, to string) (*domain.Report, error)
	GetReport(actorID, reportID string) (*domain.Report, error)
	ListReports(actorID, userID string, limit int) ([]*domain.Report, error)
	Start()
	Stop()
}

type analysisUsecase struct {
	reportRepo repository.ReportRepository
	tasks      TaskSource
	habits     HabitSource
	exams      ExamSource
	analyzer   ai.AnalyzerService
	events     *sse.Manager
	cache      *cache.Client
	access     AccessChecker
	logger     *zap.Logger

	jobQueue    chan ReportJob
	workerWg    gosync.WaitGroup
	workerCount int
	started     bool
	mu          gosync.Mutex
}

// NewAnalysisUsecase creates a new instance of AnalysisUsecase
func NewAnalysisUsecase(
	reportRepo repository.ReportRepository,
	tasks TaskSource,
	habits HabitSource,
	exams ExamSource,
	analyzer ai.AnalyzerService,
	events *sse.Manager,
	cacheClient *cache.Client,
	access AccessChecker,
	logger *zap.Logger,
	workerCount int,
) AnalysisUsecase {
	if workerCount <= 0 {
		workerCount = 2
	}
	return &analysisUsecase{
		reportRepo:  reportRepo,
		tasks:       tasks,
		habits:      habits,
		exams:       exams,
		analyzer:    analyzer,
		events:      events,
		cache:       cacheClient,
		access:      access,
		logger:      logger,
		jobQueue:    make(chan ReportJob, 100),
		workerCount: workerCount,
	}
}

// Start launches the report workers
func (u *analysisUsecase) Start() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.started {
		return
	}
	for i := 0; i < u.workerCount; i++ {
		u.workerWg.Add(1)
		go u.worker()
	}
	u.started = true
	u.logger.Info("analysis workers started", zap.Int("count", u.workerCount))
}

// Stop drains the queue and stops the workers
func (u *analysisUsecase) Stop() {
	close(u.jobQueue)
	u.workerWg.Wait()
}

func (u *analysisUsecase) authorize(actorID, ownerID string) error {
	ok, err := u.access.CanAccessStudent(actorID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("unauthorized")
	}
	return nil
}

func (u *analysisUsecase) RequestReport(actorID, userID, from, to string) (*domain.Report, error) {
	if userID == "" {
		userID = actorID
	}
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}
	start, err := taskdomain.ParseDate(from)
	if err != nil {
		return nil, errors.New("invalid date")
	}
	end, err := taskdomain.ParseDate(to)
	if err != nil {
		return nil, errors.New("invalid date")
	}
	if end.Before(start) {
		return nil, errors.New("invalid date range")
	}

	report := &domain.Report{
		UserID:      userID,
		RequestedBy: actorID,
		From:        from,
		To:          to,
		Status:      domain.StatusPending,
	}
	if err := u.reportRepo.Create(report); err != nil {
		return nil, err
	}

	job := ReportJob{ReportID: report.ID, UserID: userID, From: from, To: to}
	select {
	case u.jobQueue <- job:
	default:
		report.Status = domain.StatusFailed
		report.Error = "analysis queue is full"
		u.reportRepo.Update(report)
		return nil, errors.New("analysis queue is full")
	}
	return report, nil
}

func (u *analysisUsecase) GetReport(actorID, reportID string) (*domain.Report, error) {
	var cached domain.Report
	if err := u.cache.Get("analysis_report:"+reportID, &cached); err == nil {
		if err := u.authorize(actorID, cached.UserID); err != nil {
			return nil, err
		}
		return &cached, nil
	}

	report, err := u.reportRepo.FindByID(reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, errors.New("report not found")
	}
	if err := u.authorize(actorID, report.UserID); err != nil {
		return nil, err
	}
	return report, nil
}

func (u *analysisUsecase) ListReports(actorID, userID string, limit int) ([]*domain.Report, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}
	return u.reportRepo.FindByUser(userID, limit)
}

func (u *analysisUsecase) worker() {
	defer u.workerWg.Done()
	for job := range u.jobQueue {
		u.processJob(job)
	}
}

func (u *analysisUsecase) processJob(job ReportJob) {
	report, err := u.reportRepo.FindByID(job.ReportID)
	if err != nil || report == nil {
		u.logger.Error("loading queued report", zap.String("report_id", job.ReportID), zap.Error(err))
		return
	}

	summary, err := u.buildSummary(job)
	if err != nil {
		u.fail(report, err)
		return
	}
	report.Summary = summary

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	analysis, err := u.analyzer.AnalyzeProgress(ctx, summary)
	if err != nil {
		u.fail(report, err)
		return
	}
	suggestions, err := u.analyzer.SuggestTasks(ctx, summary)
	if err != nil {
		u.logger.Warn("task suggestions failed", zap.String("report_id", report.ID), zap.Error(err))
		suggestions = nil
	}

	report.Status = domain.StatusReady
	report.Analysis = analysis
	report.Suggestions = suggestions
	report.Error = ""
	if err := u.reportRepo.Update(report); err != nil {
		u.logger.Error("saving report", zap.String("report_id", report.ID), zap.Error(err))
		return
	}

	if err := u.cache.Set("analysis_report:"+report.ID, report, reportCacheTTL); err != nil {
		u.logger.Warn("caching report", zap.Error(err))
	}
	u.events.Send(report.UserID, "report_ready", map[string]string{"report_id": report.ID})
	u.logger.Info("report generated", zap.String("report_id", report.ID))
}

func (u *analysisUsecase) fail(report *domain.Report, err error) {
	u.logger.Error("report generation failed", zap.String("report_id", report.ID), zap.Error(err))
	report.Status = domain.StatusFailed
	report.Error = err.Error()
	if uerr := u.reportRepo.Update(report); uerr != nil {
		u.logger.Error("saving failed report", zap.String("report_id", report.ID), zap.Error(uerr))
	}
	u.events.Send(report.UserID, "report_failed", map[string]string{"report_id": report.ID})
}

// buildSummary condenses the period's tasks, habits and exams into the
// plain-text digest the analyzer prompts are built from.
func (u *analysisUsecase) buildSummary(job ReportJob) (string, error) {
	start, err := taskdomain.ParseDate(job.From)
	if err != nil {
		return "", err
	}
	end, err := taskdomain.ParseDate(job.To)
	if err != nil {
		return "", err
	}

	tasks, err := u.tasks.FindRange(job.UserID, start, end)
	if err != nil {
		return "", err
	}
	completed := 0
	byType := make(map[taskdomain.TaskType]int)
	for _, t := range tasks {
		byType[t.Type]++
		if t.Completed {
			completed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Period: %s to %s\n", job.From, job.To)
	fmt.Fprintf(&b, "Tasks: %d total, %d completed\n", len(tasks), completed)
	for taskType, count := range byType {
		fmt.Fprintf(&b, "- %s tasks: %d\n", taskType, count)
	}

	stats, err := u.habits.Stats(job.UserID, job.UserID)
	if err != nil {
		return "", err
	}
	if len(stats) > 0 {
		b.WriteString("Habits:\n")
		for _, s := range stats {
			fmt.Fprintf(&b, "- %s: streak %d (best %d), %d total completions\n",
				s.Name, s.CurrentStreak, s.LongestStreak, s.Total)
		}
	}

	averages, err := u.exams.Averages(job.UserID, job.UserID)
	if err != nil {
		return "", err
	}
	if len(averages) > 0 {
		b.WriteString("Exams:\n")
		for _, a := range averages {
			fmt.Fprintf(&b, "- %s: %d attempts, average net %.2f, best %.2f\n",
				a.Name, a.Attempts, a.AverageNet, a.BestNet)
		}
	}

	return b.String(), nil
}
