package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coachly-backend/internal/resource/domain"
)

// ResourceRepository defines the interface for resource metadata access
type ResourceRepository interface {
	Create(resource *domain.Resource) error
	FindByID(id string) (*domain.Resource, error)
	FindAll() ([]*domain.Resource, error)
	Delete(id string) error
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new instance of ResourceRepository
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(resource *domain.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.New().String()
	}
	resource.CreatedAt = time.Now()
	return r.db.Create(resource).Error
}

func (r *resourceRepository) FindByID(id string) (*domain.Resource, error) {
	var resource domain.Resource
	err := r.db.Where("id = ?", id).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) FindAll() ([]*domain.Resource, error) {
	var resources []*domain.Resource
	err := r.db.Order("created_at DESC").Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.Resource{}).Error
}
