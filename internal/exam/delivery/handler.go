package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachly-backend/internal/exam/usecase"
)

type ExamHandler struct {
	examUsecase usecase.ExamUsecase
}

func NewExamHandler(examUsecase usecase.ExamUsecase) *ExamHandler {
	return &ExamHandler{examUsecase: examUsecase}
}

// CreateTemplate handles POST /api/exams/templates
func (h *ExamHandler) CreateTemplate(c *gin.Context) {
	var req usecase.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := h.examUsecase.CreateTemplate(c.GetString("userID"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

// ListTemplates handles GET /api/exams/templates
func (h *ExamHandler) ListTemplates(c *gin.Context) {
	templates, err := h.examUsecase.ListTemplates()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// GetTemplate handles GET /api/exams/templates/:id
func (h *ExamHandler) GetTemplate(c *gin.Context) {
	template, err := h.examUsecase.GetTemplate(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// DeleteTemplate handles DELETE /api/exams/templates/:id
func (h *ExamHandler) DeleteTemplate(c *gin.Context) {
	if err := h.examUsecase.DeleteTemplate(c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

// SubmitResult handles POST /api/exams/results
func (h *ExamHandler) SubmitResult(c *gin.Context) {
	var req usecase.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.examUsecase.SubmitResult(c.GetString("userID"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListResults handles GET /api/exams/results?user_id=&template_id=
func (h *ExamHandler) ListResults(c *gin.Context) {
	actorID := c.GetString("userID")
	userID := c.DefaultQuery("user_id", actorID)

	results, err := h.examUsecase.ListResults(actorID, userID, c.Query("template_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// DeleteResult handles DELETE /api/exams/results/:id
func (h *ExamHandler) DeleteResult(c *gin.Context) {
	if err := h.examUsecase.DeleteResult(c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Result deleted"})
}

// Averages handles GET /api/exams/averages?user_id=
func (h *ExamHandler) Averages(c *gin.Context) {
	actorID := c.GetString("userID")
	userID := c.DefaultQuery("user_id", actorID)

	averages, err := h.examUsecase.Averages(actorID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"averages": averages})
}

func respondError(c *gin.Context, err error) {
	switch err.Error() {
	case "exam template not found", "exam result not found":
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case "unauthorized":
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
