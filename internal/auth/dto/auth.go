package dto

import authdomain "coachly-backend/internal/auth/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type GoogleSignInRequest struct {
	Token string `json:"token" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *authdomain.User `json:"user"`
}

type UpdateRolesRequest struct {
	Roles       []string `json:"roles" binding:"required"`
	Specialties []string `json:"specialties"`
}

type AssignCoachRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	CoachID   string `json:"coach_id" binding:"required"`
	Label     string `json:"label"`
}
