package repository

import authdomain "coachly-backend/internal/auth/domain"

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	FindAll(limit, offset int) ([]*authdomain.User, int64, error)
	Update(user *authdomain.User) error

	SaveRefreshToken(token *authdomain.RefreshToken) error
	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
	DeleteRefreshTokensByUser(userID string) error
}

// CoachStudentRepository manages coach-student link records
type CoachStudentRepository interface {
	Create(link *authdomain.CoachStudent) error
	Delete(id string) error
	FindByStudent(studentID string) ([]*authdomain.CoachStudent, error)
	FindByCoach(coachID string) ([]*authdomain.CoachStudent, error)

	// Exists reports whether the coach is linked to the student.
	Exists(coachID, studentID string) (bool, error)
}
