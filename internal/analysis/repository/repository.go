package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coachly-backend/internal/analysis/domain"
)

// ReportRepository defines the interface for analysis report data access
type ReportRepository interface {
	Create(report *domain.Report) error
	FindByID(id string) (*domain.Report, error)
	FindByUser(userID string, limit int) ([]*domain.Report, error)
	Update(report *domain.Report) error
	Delete(id string) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *domain.Report) error {
	report.ID = uuid.New().String()
	report.CreatedAt = time.Now()
	report.UpdatedAt = time.Now()
	return r.db.Create(report).Error
}

func (r *reportRepository) FindByID(id string) (*domain.Report, error) {
	var report domain.Report
	err := r.db.Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindByUser(userID string, limit int) ([]*domain.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	var reports []*domain.Report
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) Update(report *domain.Report) error {
	report.UpdatedAt = time.Now()
	return r.db.Save(report).Error
}

func (r *reportRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.Report{}).Error
}
