package api

import (
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RelationshipHandler struct {
	relationships service.RelationshipService
	logger        *zap.Logger
}

func NewRelationshipHandler(relationships service.RelationshipService, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships, logger: logger}
}

type LinkRequest struct {
	TrainerCode string `json:"trainerCode" binding:"required"`
}

type TrainerCodeResponse struct {
	TrainerCode string `json:"trainerCode"`
}

// RequestLink godoc
// @Summary Ask a trainer to coach the authenticated student
// @Description Links the student to the trainer owning the code, pending the trainer's approval.
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param link body LinkRequest true "Trainer code"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid input or caller is not a student"
// @Failure 404 {object} gin.H "Trainer code not found"
// @Failure 409 {object} gin.H "Already linked to a trainer"
// @Router /student/trainer [post]
func (h *RelationshipHandler) RequestLink(c *gin.Context) {
	studentID, ok := callerID(c)
	if !ok {
		return
	}
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	student, err := h.relationships.RequestLink(c.Request.Context(), studentID, req.TrainerCode)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(student))
}

// GetRoster godoc
// @Summary List the trainer's active students
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Router /trainer/students [get]
func (h *RelationshipHandler) GetRoster(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	students, err := h.relationships.Roster(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapUsers(students))
}

// GetPendingRequests godoc
// @Summary List students waiting for the trainer's approval
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /trainer/requests [get]
func (h *RelationshipHandler) GetPendingRequests(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	students, err := h.relationships.PendingRequests(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mapUsers(students))
}

// ApproveRequest godoc
// @Summary Approve a pending link request
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "No pending request from this student"
// @Failure 409 {object} gin.H "Free tier student limit reached"
// @Router /trainer/requests/{studentId}/approve [post]
func (h *RelationshipHandler) ApproveRequest(c *gin.Context) {
	h.decide(c, true)
}

// RejectRequest godoc
// @Summary Reject a pending link request
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "No pending request from this student"
// @Router /trainer/requests/{studentId}/reject [post]
func (h *RelationshipHandler) RejectRequest(c *gin.Context) {
	h.decide(c, false)
}

func (h *RelationshipHandler) decide(c *gin.Context, approved bool) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	student, err := h.relationships.Decide(c.Request.Context(), trainerID, studentID, approved)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(student))
}

// RemoveStudent godoc
// @Summary Remove a student from the trainer's roster
// @Tags Trainer
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 204 "Removed"
// @Failure 403 {object} gin.H "Student is not linked to this trainer"
// @Router /trainer/students/{studentId} [delete]
func (h *RelationshipHandler) RemoveStudent(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	if err := h.relationships.Unlink(c.Request.Context(), trainerID, studentID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegenerateCode godoc
// @Summary Issue a new trainer code
// @Description The previous code stops matching immediately.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TrainerCodeResponse
// @Router /trainer/code [post]
func (h *RelationshipHandler) RegenerateCode(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	code, err := h.relationships.RegenerateCode(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, TrainerCodeResponse{TrainerCode: code})
}
