package delivery

import (
	"net/http"

	"coachly-backend/internal/board"

	"github.com/gin-gonic/gin"
)

// PlanApplier persists a resolved MovePlan. Implemented by the task usecase.
type PlanApplier interface {
	ApplyMovePlan(userID string, plan *board.MovePlan) error
}

// BoardHandler exposes the drag session lifecycle over HTTP. The client
// reports geometry; the server owns the session state machine and resolves
// drops into persisted moves.
type BoardHandler struct {
	manager *board.Manager
	applier PlanApplier
}

func NewBoardHandler(manager *board.Manager, applier PlanApplier) *BoardHandler {
	return &BoardHandler{manager: manager, applier: applier}
}

type startDragRequest struct {
	ItemID string       `json:"item_id" binding:"required"`
	Point  board.Point  `json:"point" binding:"required"`
	Layout board.Layout `json:"layout" binding:"required"`
	Touch  bool         `json:"touch"`
}

// StartDrag begins a drag session
// POST /api/board/drag/start
func (h *BoardHandler) StartDrag(c *gin.Context) {
	userID := c.GetString("userID")

	var req startDragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.manager.Begin(userID, req.ItemID, req.Point, req.Layout, req.Touch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "state": "pending"})
}

type pointRequest struct {
	Point board.Point `json:"point" binding:"required"`
}

// MoveDrag reports a pointer movement and returns the recomputed drop
// indicator
// POST /api/board/drag/move
func (h *BoardHandler) MoveDrag(c *gin.Context) {
	userID := c.GetString("userID")

	var req pointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hover, state, err := h.manager.Move(userID, req.Point)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active drag"})
		return
	}

	dragging := state == board.StateDragging
	c.JSON(http.StatusOK, gin.H{"dragging": dragging, "hover": hover})
}

// DropDrag releases the pointer, resolves and persists the move
// POST /api/board/drag/drop
func (h *BoardHandler) DropDrag(c *gin.Context) {
	userID := c.GetString("userID")

	var req pointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.manager.Drop(userID, req.Point)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active drag"})
		return
	}

	if plan == nil {
		// No-op drop: nothing persisted.
		c.JSON(http.StatusOK, gin.H{"plan": nil})
		return
	}

	if err := h.applier.ApplyMovePlan(userID, plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// CancelDrag aborts the active drag with no mutation
// POST /api/board/drag/cancel
func (h *BoardHandler) CancelDrag(c *gin.Context) {
	userID := c.GetString("userID")
	h.manager.Cancel(userID)
	c.JSON(http.StatusOK, gin.H{"message": "drag cancelled"})
}
