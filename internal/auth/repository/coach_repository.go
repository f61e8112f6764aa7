package repository

import (
	"time"

	authdomain "coachly-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// coachStudentRepository implements CoachStudentRepository interface
type coachStudentRepository struct {
	db *gorm.DB
}

// NewCoachStudentRepository creates a new instance of coachStudentRepository
func NewCoachStudentRepository(db *gorm.DB) CoachStudentRepository {
	return &coachStudentRepository{
		db: db,
	}
}

func (r *coachStudentRepository) Create(link *authdomain.CoachStudent) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	link.CreatedAt = time.Now()
	return r.db.Create(link).Error
}

func (r *coachStudentRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&authdomain.CoachStudent{}).Error
}

func (r *coachStudentRepository) FindByStudent(studentID string) ([]*authdomain.CoachStudent, error) {
	var links []*authdomain.CoachStudent
	err := r.db.Where("student_id = ?", studentID).Find(&links).Error
	return links, err
}

func (r *coachStudentRepository) FindByCoach(coachID string) ([]*authdomain.CoachStudent, error) {
	var links []*authdomain.CoachStudent
	err := r.db.Where("coach_id = ?", coachID).Find(&links).Error
	return links, err
}

func (r *coachStudentRepository) Exists(coachID, studentID string) (bool, error) {
	var count int64
	err := r.db.Model(&authdomain.CoachStudent{}).
		Where("coach_id = ? AND student_id = ?", coachID, studentID).
		Count(&count).Error
	return count > 0, err
}
