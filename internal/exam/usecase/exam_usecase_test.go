package usecase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachly-backend/internal/exam/domain"
)

// fakeExamRepo is an in-memory ExamRepository.
type fakeExamRepo struct {
	templates map[string]*domain.ExamTemplate
	results   map[string]*domain.ExamResult
}

func newFakeExamRepo() *fakeExamRepo {
	return &fakeExamRepo{
		templates: make(map[string]*domain.ExamTemplate),
		results:   make(map[string]*domain.ExamResult),
	}
}

func (r *fakeExamRepo) CreateTemplate(template *domain.ExamTemplate) error {
	template.ID = uuid.New().String()
	for i := range template.Sections {
		template.Sections[i].ID = uuid.New().String()
		template.Sections[i].TemplateID = template.ID
		template.Sections[i].SortOrder = i
	}
	r.templates[template.ID] = template
	return nil
}

func (r *fakeExamRepo) FindTemplateByID(id string) (*domain.ExamTemplate, error) {
	return r.templates[id], nil
}

func (r *fakeExamRepo) FindTemplates() ([]*domain.ExamTemplate, error) {
	var out []*domain.ExamTemplate
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeExamRepo) DeleteTemplate(id string) error {
	delete(r.templates, id)
	return nil
}

func (r *fakeExamRepo) CreateResult(result *domain.ExamResult) error {
	result.ID = uuid.New().String()
	result.CreatedAt = time.Now()
	r.results[result.ID] = result
	return nil
}

func (r *fakeExamRepo) FindResultByID(id string) (*domain.ExamResult, error) {
	return r.results[id], nil
}

func (r *fakeExamRepo) FindResultsByUser(userID string) ([]*domain.ExamResult, error) {
	var out []*domain.ExamResult
	for _, res := range r.results {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeExamRepo) FindResultsByUserAndTemplate(userID, templateID string) ([]*domain.ExamResult, error) {
	var out []*domain.ExamResult
	for _, res := range r.results {
		if res.UserID == userID && res.TemplateID == templateID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeExamRepo) DeleteResult(id string) error {
	delete(r.results, id)
	return nil
}

type allowSelf struct{}

func (allowSelf) CanAccessStudent(actorID, studentID string) (bool, error) {
	return actorID == studentID, nil
}

func seedTemplate(t *testing.T, uc ExamUsecase) *domain.ExamTemplate {
	t.Helper()
	template, err := uc.CreateTemplate("coach1", &CreateTemplateRequest{
		Name: "Practice Exam",
		Sections: []SectionSpec{
			{Name: "Math", QuestionCount: 40},
			{Name: "Verbal", QuestionCount: 40},
		},
	})
	require.NoError(t, err)
	return template
}

func TestSubmitResultScoresSections(t *testing.T) {
	repo := newFakeExamRepo()
	uc := NewExamUsecase(repo, allowSelf{})
	template := seedTemplate(t, uc)

	result, err := uc.SubmitResult("u1", &SubmitResultRequest{
		TemplateID: template.ID,
		Date:       "2024-03-01",
		Sections: []SectionAnswers{
			{SectionID: template.Sections[0].ID, Correct: 30, Incorrect: 4},
			{SectionID: template.Sections[1].ID, Correct: 20, Incorrect: 8},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Sections, 2)
	math := result.Sections[0]
	assert.Equal(t, 6, math.Empty)
	assert.InDelta(t, 29.0, math.Net, 1e-9)

	verbal := result.Sections[1]
	assert.Equal(t, 12, verbal.Empty)
	assert.InDelta(t, 18.0, verbal.Net, 1e-9)

	assert.InDelta(t, 47.0, result.TotalNet, 1e-9)
}

func TestSubmitResultRejectsTooManyAnswers(t *testing.T) {
	repo := newFakeExamRepo()
	uc := NewExamUsecase(repo, allowSelf{})
	template := seedTemplate(t, uc)

	_, err := uc.SubmitResult("u1", &SubmitResultRequest{
		TemplateID: template.ID,
		Date:       "2024-03-01",
		Sections: []SectionAnswers{
			{SectionID: template.Sections[0].ID, Correct: 40, Incorrect: 5},
			{SectionID: template.Sections[1].ID, Correct: 10, Incorrect: 0},
		},
	})
	require.Error(t, err)
	assert.Empty(t, repo.results)
}

func TestSubmitResultRequiresEverySection(t *testing.T) {
	repo := newFakeExamRepo()
	uc := NewExamUsecase(repo, allowSelf{})
	template := seedTemplate(t, uc)

	_, err := uc.SubmitResult("u1", &SubmitResultRequest{
		TemplateID: template.ID,
		Date:       "2024-03-01",
		Sections: []SectionAnswers{
			{SectionID: template.Sections[0].ID, Correct: 30, Incorrect: 4},
		},
	})
	assert.EqualError(t, err, "missing answers for section Verbal")
}

func TestDeleteTemplateOnlyByCreator(t *testing.T) {
	repo := newFakeExamRepo()
	uc := NewExamUsecase(repo, allowSelf{})
	template := seedTemplate(t, uc)

	assert.EqualError(t, uc.DeleteTemplate("someone-else", template.ID), "unauthorized")
	require.NoError(t, uc.DeleteTemplate("coach1", template.ID))
}

func TestAverages(t *testing.T) {
	repo := newFakeExamRepo()
	uc := NewExamUsecase(repo, allowSelf{})
	template := seedTemplate(t, uc)

	for _, answers := range [][2]int{{30, 4}, {34, 0}} {
		_, err := uc.SubmitResult("u1", &SubmitResultRequest{
			TemplateID: template.ID,
			Date:       "2024-03-01",
			Sections: []SectionAnswers{
				{SectionID: template.Sections[0].ID, Correct: answers[0], Incorrect: answers[1]},
				{SectionID: template.Sections[1].ID, Correct: 0, Incorrect: 0},
			},
		})
		require.NoError(t, err)
	}

	averages, err := uc.Averages("u1", "u1")
	require.NoError(t, err)
	require.Len(t, averages, 1)
	assert.Equal(t, 2, averages[0].Attempts)
	assert.InDelta(t, 31.5, averages[0].AverageNet, 1e-9)
	assert.InDelta(t, 34.0, averages[0].BestNet, 1e-9)
}
