package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type SuggestionHandler struct {
	suggestions service.SuggestionService
	logger      *zap.Logger
}

func NewSuggestionHandler(suggestions service.SuggestionService, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions, logger: logger}
}

type SendSuggestionRequest struct {
	StudentID string                  `json:"studentId" binding:"required"`
	Type      domain.SuggestionType   `json:"type" binding:"required,oneof=workout diet"`
	Source    domain.SuggestionSource `json:"source" binding:"omitempty,oneof=trainer ai"`
	Content   string                  `json:"content" binding:"required"`
}

type UpdateSuggestionRequest struct {
	Status domain.SuggestionStatus `json:"status" binding:"required,oneof=accepted rejected"`
}

// SendSuggestion godoc
// @Summary Send a workout or diet suggestion to a student
// @Description Diet content must contain at least one recognisable meal.
// @Tags Suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param suggestion body SendSuggestionRequest true "Suggestion"
// @Success 201 {object} domain.Suggestion
// @Failure 400 {object} gin.H "Invalid input or no meals recognised"
// @Failure 403 {object} gin.H "Student is not linked to this trainer"
// @Router /trainer/suggestions [post]
func (h *SuggestionHandler) SendSuggestion(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	var req SendSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid studentId format.")
		return
	}

	suggestion, err := h.suggestions.Send(c.Request.Context(), service.SendSuggestionInput{
		TrainerID: trainerID,
		StudentID: studentID,
		Type:      req.Type,
		Source:    req.Source,
		Content:   req.Content,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, suggestion)
}

// GetTrainerSuggestions godoc
// @Summary List suggestions sent by the trainer
// @Tags Suggestions
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, accepted or rejected"
// @Success 200 {array} domain.Suggestion
// @Router /trainer/suggestions [get]
func (h *SuggestionHandler) GetTrainerSuggestions(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	list, err := h.suggestions.ListForTrainer(c.Request.Context(), trainerID, domain.SuggestionStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GetStudentSuggestions godoc
// @Summary List suggestions received by the student
// @Tags Suggestions
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, accepted or rejected"
// @Success 200 {array} domain.Suggestion
// @Router /student/suggestions [get]
func (h *SuggestionHandler) GetStudentSuggestions(c *gin.Context) {
	studentID, ok := callerID(c)
	if !ok {
		return
	}
	list, err := h.suggestions.ListForStudent(c.Request.Context(), studentID, domain.SuggestionStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// UpdateSuggestionStatus godoc
// @Summary Accept or reject a suggestion
// @Description Accepting a workout creates an expiring workout; accepting a diet creates a diet.
// @Tags Suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param suggestionId path string true "Suggestion ID"
// @Param status body UpdateSuggestionRequest true "New status"
// @Success 200 {object} domain.Suggestion
// @Failure 403 {object} gin.H "Caller is not a party of the suggestion"
// @Failure 404 {object} gin.H "Suggestion not found"
// @Failure 409 {object} gin.H "Suggestion already answered"
// @Router /suggestions/{suggestionId} [patch]
func (h *SuggestionHandler) UpdateSuggestionStatus(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	suggestionID, ok := pathID(c, "suggestionId")
	if !ok {
		return
	}
	var req UpdateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	suggestion, err := h.suggestions.UpdateStatus(c.Request.Context(), userID, suggestionID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// nonNil makes empty lists encode as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
