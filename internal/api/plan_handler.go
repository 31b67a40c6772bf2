package api

import (
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PlanHandler struct {
	plans  service.PlanService
	logger *zap.Logger
}

func NewPlanHandler(plans service.PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, logger: logger}
}

type CreatePlanRequest struct {
	StudentID   string `json:"studentId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Body        string `json:"body" binding:"required"` // Exercises, or diet text to parse into meals
}

func (h *PlanHandler) bindPlan(c *gin.Context) (service.PlanInput, bool) {
	trainerID, ok := callerID(c)
	if !ok {
		return service.PlanInput{}, false
	}
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return service.PlanInput{}, false
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid studentId format.")
		return service.PlanInput{}, false
	}
	return service.PlanInput{
		TrainerID:   trainerID,
		StudentID:   studentID,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
	}, true
}

// CreateWorkout godoc
// @Summary Assign a workout to an active student
// @Description The workout expires if the student does not complete it in time.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreatePlanRequest true "Workout"
// @Success 201 {object} domain.Workout
// @Failure 403 {object} gin.H "Student is not linked to this trainer"
// @Router /trainer/workouts [post]
func (h *PlanHandler) CreateWorkout(c *gin.Context) {
	in, ok := h.bindPlan(c)
	if !ok {
		return
	}
	workout, err := h.plans.CreateWorkout(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// CreateDiet godoc
// @Summary Assign a diet to an active student
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param diet body CreatePlanRequest true "Diet"
// @Success 201 {object} domain.Diet
// @Failure 400 {object} gin.H "No meals recognised"
// @Router /trainer/diets [post]
func (h *PlanHandler) CreateDiet(c *gin.Context) {
	in, ok := h.bindPlan(c)
	if !ok {
		return
	}
	diet, err := h.plans.CreateDiet(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, diet)
}

// GetTrainerWorkouts godoc
// @Summary List workouts created by the trainer
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Workout
// @Router /trainer/workouts [get]
func (h *PlanHandler) GetTrainerWorkouts(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	list, err := h.plans.TrainerWorkouts(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GetTrainerDiets godoc
// @Summary List diets created by the trainer
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Diet
// @Router /trainer/diets [get]
func (h *PlanHandler) GetTrainerDiets(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	list, err := h.plans.TrainerDiets(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GetStudentWorkouts godoc
// @Summary List a student's workouts
// @Description Visible to the student and their active trainer.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {array} domain.Workout
// @Failure 403 {object} gin.H "Forbidden"
// @Router /students/{studentId}/workouts [get]
func (h *PlanHandler) GetStudentWorkouts(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	list, err := h.plans.StudentWorkouts(c.Request.Context(), userID, studentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// GetStudentDiets godoc
// @Summary List a student's diets
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {array} domain.Diet
// @Failure 403 {object} gin.H "Forbidden"
// @Router /students/{studentId}/diets [get]
func (h *PlanHandler) GetStudentDiets(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	list, err := h.plans.StudentDiets(c.Request.Context(), userID, studentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// CompleteWorkout godoc
// @Summary Mark a workout as done
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Workout ID"
// @Success 200 {object} domain.Workout
// @Failure 404 {object} gin.H "Workout not found or expired"
// @Failure 409 {object} gin.H "Already completed"
// @Router /student/workouts/{planId}/complete [post]
func (h *PlanHandler) CompleteWorkout(c *gin.Context) {
	studentID, ok := callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	workout, err := h.plans.CompleteWorkout(c.Request.Context(), studentID, workoutID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// CompleteDiet godoc
// @Summary Mark a diet as followed
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Diet ID"
// @Success 200 {object} domain.Diet
// @Router /student/diets/{planId}/complete [post]
func (h *PlanHandler) CompleteDiet(c *gin.Context) {
	studentID, ok := callerID(c)
	if !ok {
		return
	}
	dietID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	diet, err := h.plans.CompleteDiet(c.Request.Context(), studentID, dietID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, diet)
}

// DeleteWorkout godoc
// @Summary Delete a workout the trainer created
// @Tags Plans
// @Security BearerAuth
// @Param planId path string true "Workout ID"
// @Success 204 "Deleted"
// @Router /trainer/workouts/{planId} [delete]
func (h *PlanHandler) DeleteWorkout(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	if err := h.plans.DeleteWorkout(c.Request.Context(), trainerID, workoutID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteDiet godoc
// @Summary Delete a diet the trainer created
// @Tags Plans
// @Security BearerAuth
// @Param planId path string true "Diet ID"
// @Success 204 "Deleted"
// @Router /trainer/diets/{planId} [delete]
func (h *PlanHandler) DeleteDiet(c *gin.Context) {
	trainerID, ok := callerID(c)
	if !ok {
		return
	}
	dietID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	if err := h.plans.DeleteDiet(c.Request.Context(), trainerID, dietID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
