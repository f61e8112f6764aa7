package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachly-backend/internal/habit/usecase"
)

type HabitHandler struct {
	habitUsecase usecase.HabitUsecase
}

func NewHabitHandler(habitUsecase usecase.HabitUsecase) *HabitHandler {
	return &HabitHandler{habitUsecase: habitUsecase}
}

// CreateHabit handles POST /api/habits
func (h *HabitHandler) CreateHabit(c *gin.Context) {
	var req usecase.CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.habitUsecase.CreateHabit(c.GetString("userID"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// GetHabit handles GET /api/habits/:id
func (h *HabitHandler) GetHabit(c *gin.Context) {
	habit, err := h.habitUsecase.GetHabit(c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// ListHabits handles GET /api/habits?user_id=&include_archived=
func (h *HabitHandler) ListHabits(c *gin.Context) {
	actorID := c.GetString("userID")
	userID := c.DefaultQuery("user_id", actorID)
	includeArchived := c.Query("include_archived") == "true"

	habits, err := h.habitUsecase.ListHabits(actorID, userID, includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

// UpdateHabit handles PUT /api/habits/:id
func (h *HabitHandler) UpdateHabit(c *gin.Context) {
	var req usecase.UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.habitUsecase.UpdateHabit(c.GetString("userID"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// DeleteHabit handles DELETE /api/habits/:id
func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	if err := h.habitUsecase.DeleteHabit(c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Habit deleted"})
}

type reorderHabitRequest struct {
	TargetID string `json:"target_id" binding:"required"`
	After    bool   `json:"after"`
}

// ReorderHabit handles PATCH /api/habits/:id/reorder
func (h *HabitHandler) ReorderHabit(c *gin.Context) {
	var req reorderHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.habitUsecase.Reorder(c.GetString("userID"), c.Param("id"), req.TargetID, req.After)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Habit reordered"})
}

type completeHabitRequest struct {
	Date  string  `json:"date" binding:"required"`
	Value float64 `json:"value"`
	Note  string  `json:"note"`
}

// CompleteHabit handles POST /api/habits/:id/completions
func (h *HabitHandler) CompleteHabit(c *gin.Context) {
	var req completeHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.habitUsecase.Complete(c.GetString("userID"), c.Param("id"), req.Date, req.Value, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// UncompleteHabit handles DELETE /api/habits/:id/completions/:date
func (h *HabitHandler) UncompleteHabit(c *gin.Context) {
	habit, err := h.habitUsecase.Uncomplete(c.GetString("userID"), c.Param("id"), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// ListCompletions handles GET /api/habits/:id/completions?from=&to=
func (h *HabitHandler) ListCompletions(c *gin.Context) {
	from := c.DefaultQuery("from", "0000-01-01")
	to := c.DefaultQuery("to", "9999-12-31")

	completions, err := h.habitUsecase.Completions(c.GetString("userID"), c.Param("id"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"completions": completions})
}

// HabitStats handles GET /api/habits/stats?user_id=
func (h *HabitHandler) HabitStats(c *gin.Context) {
	actorID := c.GetString("userID")
	userID := c.DefaultQuery("user_id", actorID)

	stats, err := h.habitUsecase.Stats(actorID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Hydrate handles POST /api/habits/hydrate
func (h *HabitHandler) Hydrate(c *gin.Context) {
	if err := h.habitUsecase.Hydrate(c.GetString("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hydrate local store"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hydrated"})
}

func respondError(c *gin.Context, err error) {
	switch err.Error() {
	case "habit not found":
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case "unauthorized":
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
