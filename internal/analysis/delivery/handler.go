package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coachly-backend/internal/analysis/usecase"
)

type AnalysisHandler struct {
	analysisUsecase usecase.AnalysisUsecase
}

func NewAnalysisHandler(analysisUsecase usecase.AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{analysisUsecase: analysisUsecase}
}

type requestReportRequest struct {
	UserID string `json:"user_id"`
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
}

// RequestReport handles POST /api/analysis/reports
func (h *AnalysisHandler) RequestReport(c *gin.Context) {
	var req requestReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.analysisUsecase.RequestReport(c.GetString("userID"), req.UserID, req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, report)
}

// GetReport handles GET /api/analysis/reports/:id
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	report, err := h.analysisUsecase.GetReport(c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListReports handles GET /api/analysis/reports?user_id=&limit=
func (h *AnalysisHandler) ListReports(c *gin.Context) {
	actorID := c.GetString("userID")
	userID := c.DefaultQuery("user_id", actorID)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reports, err := h.analysisUsecase.ListReports(actorID, userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func respondError(c *gin.Context, err error) {
	switch err.Error() {
	case "report not found":
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case "unauthorized":
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
