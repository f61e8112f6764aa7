package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coachly-backend/internal/program/domain"
)

// ProgramRepository defines the interface for program template data access
type ProgramRepository interface {
	Create(template *domain.ProgramTemplate) error
	FindByID(id string) (*domain.ProgramTemplate, error)
	FindAll() ([]*domain.ProgramTemplate, error)
	Update(template *domain.ProgramTemplate) error
	Delete(id string) error
	CountBuiltins() (int64, error)
}

type programRepository struct {
	db *gorm.DB
}

// NewProgramRepository creates a new instance of ProgramRepository
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) Create(template *domain.ProgramTemplate) error {
	if template.ID == "" {
		template.ID = uuid.New().String()
	}
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	return r.db.Create(template).Error
}

func (r *programRepository) FindByID(id string) (*domain.ProgramTemplate, error) {
	var template domain.ProgramTemplate
	err := r.db.Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *programRepository) FindAll() ([]*domain.ProgramTemplate, error) {
	var templates []*domain.ProgramTemplate
	err := r.db.Order("builtin DESC, created_at ASC").Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *programRepository) Update(template *domain.ProgramTemplate) error {
	template.UpdatedAt = time.Now()
	return r.db.Save(template).Error
}

func (r *programRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.ProgramTemplate{}).Error
}

func (r *programRepository) CountBuiltins() (int64, error) {
	var count int64
	err := r.db.Model(&domain.ProgramTemplate{}).Where("builtin = ?", true).Count(&count).Error
	return count, err
}
