package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachly-backend/internal/program/usecase"
)

type ProgramHandler struct {
	programUsecase usecase.ProgramUsecase
}

func NewProgramHandler(programUsecase usecase.ProgramUsecase) *ProgramHandler {
	return &ProgramHandler{programUsecase: programUsecase}
}

// CreateProgram handles POST /api/programs
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req usecase.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	program, err := h.programUsecase.CreateProgram(c.GetString("userID"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, program)
}

// ListPrograms handles GET /api/programs
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programUsecase.ListPrograms()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"programs": programs})
}

// GetProgram handles GET /api/programs/:id
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	program, err := h.programUsecase.GetProgram(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, program)
}

// DeleteProgram handles DELETE /api/programs/:id
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	if err := h.programUsecase.DeleteProgram(c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Program deleted"})
}

// ApplyProgram handles POST /api/programs/:id/apply
func (h *ProgramHandler) ApplyProgram(c *gin.Context) {
	var req usecase.ApplyProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := h.programUsecase.Apply(c.GetString("userID"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tasks": tasks})
}

func respondError(c *gin.Context, err error) {
	switch err.Error() {
	case "program not found":
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case "unauthorized":
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
