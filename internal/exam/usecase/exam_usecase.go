package usecase

import (
	"errors"
	"time"

	"coachly-backend/internal/exam/domain"
	"coachly-backend/internal/exam/repository"
)

// AccessChecker answers whether an actor may touch a student's data.
type AccessChecker interface {
	CanAccessStudent(actorID, studentID string) (bool, error)
}

type SectionSpec struct {
	Name          string `json:"name" binding:"required"`
	QuestionCount int    `json:"question_count" binding:"required"`
}

type CreateTemplateRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	DurationMin int           `json:"duration_min"`
	Sections    []SectionSpec `json:"sections" binding:"required"`
}

type SectionAnswers struct {
	SectionID string `json:"section_id" binding:"required"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
}

type SubmitResultRequest struct {
	UserID     string           `json:"user_id"`
	TemplateID string           `json:"template_id" binding:"required"`
	Date       string           `json:"date" binding:"required"`
	Sections   []SectionAnswers `json:"sections" binding:"required"`
	Note       string           `json:"note"`
}

// TemplateAverage is the mean net score of a user on one template.
type TemplateAverage struct {
	TemplateID string  `json:"template_id"`
	Name       string  `json:"name"`
	Attempts   int     `json:"attempts"`
	AverageNet float64 `json:"average_net"`
	BestNet    float64 `json:"best_net"`
}

// ExamUsecase defines the interface for exam business logic
type ExamUsecase interface {
	CreateTemplate(actorID string, req *CreateTemplateRequest) (*domain.ExamTemplate, error)
	GetTemplate(templateID string) (*domain.ExamTemplate, error)
	ListTemplates() ([]*domain.ExamTemplate, error)
	DeleteTemplate(actorID, templateID string) error
	SubmitResult(actorID string, req *SubmitResultRequest) (*domain.ExamResult, error)
	ListResults(actorID, userID string, templateID string) ([]*domain.ExamResult, error)
	DeleteResult(actorID, resultID string) error
	Averages(actorID, userID string) ([]*TemplateAverage, error)
}

type examUsecase struct {
	examRepo repository.ExamRepository
	access   AccessChecker
}

// NewExamUsecase creates a new instance of ExamUsecase
func NewExamUsecase(examRepo repository.ExamRepository, access AccessChecker) ExamUsecase {
	return &examUsecase{examRepo: examRepo, access: access}
}

func (u *examUsecase) authorize(actorID, ownerID string) error {
	ok, err := u.access.CanAccessStudent(actorID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("unauthorized")
	}
	return nil
}

func (u *examUsecase) CreateTemplate(actorID string, req *CreateTemplateRequest) (*domain.ExamTemplate, error) {
	if len(req.Sections) == 0 {
		return nil, errors.New("template needs at least one section")
	}

	template := &domain.ExamTemplate{
		CreatedBy:   actorID,
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
	}
	for _, s := range req.Sections {
		if s.QuestionCount <= 0 {
			return nil, errors.New("section question count must be positive")
		}
		template.Sections = append(template.Sections, domain.ExamSection{
			Name:          s.Name,
			QuestionCount: s.QuestionCount,
		})
	}

	if err := u.examRepo.CreateTemplate(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (u *examUsecase) GetTemplate(templateID string) (*domain.ExamTemplate, error) {
	template, err := u.examRepo.FindTemplateByID(templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, errors.New("exam template not found")
	}
	return template, nil
}

func (u *examUsecase) ListTemplates() ([]*domain.ExamTemplate, error) {
	return u.examRepo.FindTemplates()
}

func (u *examUsecase) DeleteTemplate(actorID, templateID string) error {
	template, err := u.GetTemplate(templateID)
	if err != nil {
		return err
	}
	if template.CreatedBy != actorID {
		return errors.New("unauthorized")
	}
	return u.examRepo.DeleteTemplate(templateID)
}

// SubmitResult scores the raw answer counts against the template and saves
// the attempt. Every section of the template must be answered for, and a
// section cannot report more answers than it has questions.
func (u *examUsecase) SubmitResult(actorID string, req *SubmitResultRequest) (*domain.ExamResult, error) {
	ownerID := req.UserID
	if ownerID == "" {
		ownerID = actorID
	}
	if err := u.authorize(actorID, ownerID); err != nil {
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, errors.New("invalid date")
	}

	template, err := u.GetTemplate(req.TemplateID)
	if err != nil {
		return nil, err
	}

	answers := make(map[string]SectionAnswers, len(req.Sections))
	for _, a := range req.Sections {
		answers[a.SectionID] = a
	}

	result := &domain.ExamResult{
		UserID:     ownerID,
		TemplateID: template.ID,
		Date:       req.Date,
		Note:       req.Note,
	}
	for i := range template.Sections {
		section := &template.Sections[i]
		a, ok := answers[section.ID]
		if !ok {
			return nil, errors.New("missing answers for section " + section.Name)
		}
		scored, err := domain.Score(section, a.Correct, a.Incorrect)
		if err != nil {
			return nil, err
		}
		result.Sections = append(result.Sections, scored)
		result.TotalNet += scored.Net
	}

	if err := u.examRepo.CreateResult(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (u *examUsecase) ListResults(actorID, userID string, templateID string) ([]*domain.ExamResult, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}
	if templateID != "" {
		return u.examRepo.FindResultsByUserAndTemplate(userID, templateID)
	}
	return u.examRepo.FindResultsByUser(userID)
}

func (u *examUsecase) DeleteResult(actorID, resultID string) error {
	result, err := u.examRepo.FindResultByID(resultID)
	if err != nil {
		return err
	}
	if result == nil {
		return errors.New("exam result not found")
	}
	if err := u.authorize(actorID, result.UserID); err != nil {
		return err
	}
	return u.examRepo.DeleteResult(resultID)
}

// Averages summarizes a user's attempts per template.
func (u *examUsecase) Averages(actorID, userID string) ([]*TemplateAverage, error) {
	if err := u.authorize(actorID, userID); err != nil {
		return nil, err
	}

	results, err := u.examRepo.FindResultsByUser(userID)
	if err != nil {
		return nil, err
	}
	templates, err := u.examRepo.FindTemplates()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(templates))
	for _, t := range templates {
		names[t.ID] = t.Name
	}

	byTemplate := make(map[string]*TemplateAverage)
	var order []string
	for _, r := range results {
		avg, ok := byTemplate[r.TemplateID]
		if !ok {
			avg = &TemplateAverage{TemplateID: r.TemplateID, Name: names[r.TemplateID]}
			byTemplate[r.TemplateID] = avg
			order = append(order, r.TemplateID)
		}
		avg.Attempts++
		avg.AverageNet += r.TotalNet
		if r.TotalNet > avg.BestNet {
			avg.BestNet = r.TotalNet
		}
	}

	out := make([]*TemplateAverage, 0, len(order))
	for _, id := range order {
		avg := byTemplate[id]
		avg.AverageNet /= float64(avg.Attempts)
		out = append(out, avg)
	}
	return out, nil
}
