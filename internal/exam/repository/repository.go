package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coachly-backend/internal/exam/domain"
)

// ExamRepository defines the interface for exam data access
type ExamRepository interface {
	CreateTemplate(template *domain.ExamTemplate) error
	FindTemplateByID(id string) (*domain.ExamTemplate, error)
	FindTemplates() ([]*domain.ExamTemplate, error)
	DeleteTemplate(id string) error

	CreateResult(result *domain.ExamResult) error
	FindResultByID(id string) (*domain.ExamResult, error)
	FindResultsByUser(userID string) ([]*domain.ExamResult, error)
	FindResultsByUserAndTemplate(userID, templateID string) ([]*domain.ExamResult, error)
	DeleteResult(id string) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository creates a new instance of ExamRepository
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) CreateTemplate(template *domain.ExamTemplate) error {
	template.ID = uuid.New().String()
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	for i := range template.Sections {
		template.Sections[i].ID = uuid.New().String()
		template.Sections[i].TemplateID = template.ID
		template.Sections[i].SortOrder = i
	}
	return r.db.Create(template).Error
}

func (r *examRepository) FindTemplateByID(id string) (*domain.ExamTemplate, error) {
	var template domain.ExamTemplate
	err := r.db.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *examRepository) FindTemplates() ([]*domain.ExamTemplate, error) {
	var templates []*domain.ExamTemplate
	err := r.db.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Order("created_at ASC").Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *examRepository) DeleteTemplate(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&domain.ExamSection{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.ExamTemplate{}).Error
	})
}

func (r *examRepository) CreateResult(result *domain.ExamResult) error {
	result.ID = uuid.New().String()
	result.CreatedAt = time.Now()
	result.UpdatedAt = time.Now()
	return r.db.Create(result).Error
}

func (r *examRepository) FindResultByID(id string) (*domain.ExamResult, error) {
	var result domain.ExamResult
	err := r.db.Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *examRepository) FindResultsByUser(userID string) ([]*domain.ExamResult, error) {
	var results []*domain.ExamResult
	err := r.db.Where("user_id = ?", userID).Order("date ASC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examRepository) FindResultsByUserAndTemplate(userID, templateID string) ([]*domain.ExamResult, error) {
	var results []*domain.ExamResult
	err := r.db.Where("user_id = ? AND template_id = ?", userID, templateID).
		Order("date ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *examRepository) DeleteResult(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.ExamResult{}).Error
}
