package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	authdomain "coachly-backend/internal/auth/domain"
	authdto "coachly-backend/internal/auth/dto"
	"coachly-backend/internal/auth/repository"
	"coachly-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthUsecase defines the interface for authentication and user management
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	GoogleSignIn(idToken string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	SetPassword(userID, password string) error
	ValidateToken(tokenString string) (*authdomain.User, error)

	// Admin user management
	ListUsers(limit, offset int) ([]*authdomain.User, int64, error)
	UpdateRoles(userID string, roles, specialties []string) (*authdomain.User, error)
	AssignCoach(studentID, coachID, label string) (*authdomain.CoachStudent, error)
	RemoveCoach(linkID string) error

	// Coach roster
	StudentsOfCoach(coachID string) ([]*authdomain.User, error)
	CoachesOfStudent(studentID string) ([]*authdomain.CoachStudent, error)

	// CanAccessStudent reports whether actorID may operate on the student's
	// data: the student themself, a linked coach, or an admin.
	CanAccessStudent(actorID, studentID string) (bool, error)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo  repository.UserRepository
	coachRepo repository.CoachStudentRepository
	config    *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, coachRepo repository.CoachStudentRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:  userRepo,
		coachRepo: coachRepo,
		config:    cfg,
	}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("invalid email or password")
	}

	if user.Provider != "email" {
		return nil, errors.New("please use Google Sign-In for this account")
	}

	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, errors.New("invalid email or password")
	}

	return u.generateTokens(user)
}

func (u *authUsecase) Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	existing, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		Email:    req.Email,
		Password: hashedPassword,
		Name:     req.Name,
		Provider: "email",
		Roles:    authdomain.StringArray{authdomain.RoleStudent},
	}

	if err := u.userRepo.Create(user); err != nil {
		return nil, err
	}

	return u.generateTokens(user)
}

// GoogleTokenInfo represents the response from Google's tokeninfo endpoint
type GoogleTokenInfo struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified string `json:"email_verified"` // Google returns this as string "true" or "false"
	Sub           string `json:"sub"`
}

func (u *authUsecase) GoogleSignIn(idToken string) (*authdto.TokenResponse, error) {
	// Verify ID token by calling Google's tokeninfo endpoint
	url := fmt.Sprintf("https://oauth2.googleapis.com/tokeninfo?id_token=%s", idToken)

	resp, err := http.Get(url)
	if err != nil {
		return nil, errors.New("failed to verify Google token: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to verify Google token: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tokenInfo GoogleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&tokenInfo); err != nil {
		return nil, errors.New("failed to decode Google token info: " + err.Error())
	}

	if tokenInfo.EmailVerified != "true" {
		return nil, errors.New("google email is not verified")
	}

	// Find or create user
	user, err := u.userRepo.FindByEmail(tokenInfo.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &authdomain.User{
			Email:     tokenInfo.Email,
			Name:      tokenInfo.Name,
			AvatarURL: tokenInfo.Picture,
			Provider:  "google",
			Roles:     authdomain.StringArray{authdomain.RoleStudent},
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
	} else {
		user.Name = tokenInfo.Name
		user.AvatarURL = tokenInfo.Picture
		if err := u.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return u.generateTokens(user)
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	// Check if token exists in repository
	storedToken, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if storedToken == nil || storedToken.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("refresh token expired")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	return u.generateTokens(user)
}

func (u *authUsecase) Logout(refreshToken string) error {
	return u.userRepo.DeleteRefreshToken(refreshToken)
}

func (u *authUsecase) SetPassword(userID, password string) error {
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}

	hashed, err := repository.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.Provider = "email"
	return u.userRepo.Update(user)
}

func (u *authUsecase) generateTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.JWTRefreshExpiry),
	}
	if err := u.userRepo.SaveRefreshToken(refreshTokenEntity); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) generateAccessToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"roles":   []string(user.Roles),
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) generateRefreshToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"exp":      time.Now().Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}

func (u *authUsecase) ListUsers(limit, offset int) ([]*authdomain.User, int64, error) {
	return u.userRepo.FindAll(limit, offset)
}

func (u *authUsecase) UpdateRoles(userID string, roles, specialties []string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	for _, role := range roles {
		if role != authdomain.RoleStudent && role != authdomain.RoleCoach && role != authdomain.RoleAdmin {
			return nil, fmt.Errorf("unknown role: %s", role)
		}
	}

	user.Roles = authdomain.StringArray(roles)
	user.Specialties = authdomain.StringArray(specialties)
	if err := u.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) AssignCoach(studentID, coachID, label string) (*authdomain.CoachStudent, error) {
	coach, err := u.userRepo.FindByID(coachID)
	if err != nil {
		return nil, err
	}
	if coach == nil || !coach.HasRole(authdomain.RoleCoach) {
		return nil, errors.New("coach not found")
	}

	student, err := u.userRepo.FindByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, errors.New("student not found")
	}

	exists, err := u.coachRepo.Exists(coachID, studentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("coach already assigned to student")
	}

	link := &authdomain.CoachStudent{
		StudentID: studentID,
		CoachID:   coachID,
		Label:     label,
	}
	if err := u.coachRepo.Create(link); err != nil {
		return nil, err
	}
	return link, nil
}

func (u *authUsecase) RemoveCoach(linkID string) error {
	return u.coachRepo.Delete(linkID)
}

func (u *authUsecase) StudentsOfCoach(coachID string) ([]*authdomain.User, error) {
	links, err := u.coachRepo.FindByCoach(coachID)
	if err != nil {
		return nil, err
	}

	students := make([]*authdomain.User, 0, len(links))
	for _, link := range links {
		student, err := u.userRepo.FindByID(link.StudentID)
		if err != nil {
			return nil, err
		}
		if student != nil {
			students = append(students, student)
		}
	}
	return students, nil
}

func (u *authUsecase) CoachesOfStudent(studentID string) ([]*authdomain.CoachStudent, error) {
	return u.coachRepo.FindByStudent(studentID)
}

func (u *authUsecase) CanAccessStudent(actorID, studentID string) (bool, error) {
	if actorID == studentID {
		return true, nil
	}

	actor, err := u.userRepo.FindByID(actorID)
	if err != nil {
		return false, err
	}
	if actor == nil {
		return false, nil
	}
	if actor.HasRole(authdomain.RoleAdmin) {
		return true, nil
	}
	if !actor.HasRole(authdomain.RoleCoach) {
		return false, nil
	}

	return u.coachRepo.Exists(actorID, studentID)
}
