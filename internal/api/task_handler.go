package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TaskHandler serves both request queues. Each method is bound to a kind
// when the routes are registered.
type TaskHandler struct {
	tasks  service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type CreateTaskRequest struct {
	Type        string `json:"type" binding:"required"` // e.g. physical, nutritional, performance
	Description string `json:"description"`
}

type ScheduleTaskRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

type CompleteTaskRequest struct {
	Results map[string]interface{} `json:"results"`
}

// Create godoc
// @Summary Request a task or an evaluation from the student's trainer
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Request details"
// @Success 201 {object} domain.Task
// @Failure 403 {object} gin.H "Student has no active trainer"
// @Router /student/evaluations [post]
// @Router /student/tasks [post]
func (h *TaskHandler) Create(kind domain.TaskKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		studentID, ok := callerID(c)
		if !ok {
			return
		}
		var req CreateTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		task, err := h.tasks.Create(c.Request.Context(), service.CreateTaskInput{
			StudentID:   studentID,
			Kind:        kind,
			Type:        req.Type,
			Description: req.Description,
		})
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, task)
	}
}

// ListForStudent godoc
// @Summary List the student's tasks or evaluations
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, scheduled, completed or rejected"
// @Success 200 {array} domain.Task
// @Router /student/evaluations [get]
// @Router /student/tasks [get]
func (h *TaskHandler) ListForStudent(kind domain.TaskKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		studentID, ok := callerID(c)
		if !ok {
			return
		}
		list, err := h.tasks.ListForStudent(c.Request.Context(), kind, studentID, domain.TaskStatus(c.Query("status")))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(list))
	}
}

// ListForTrainer godoc
// @Summary List the trainer's queue of tasks or evaluations
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, scheduled, completed or rejected"
// @Success 200 {array} domain.Task
// @Router /trainer/evaluations [get]
// @Router /trainer/tasks [get]
func (h *TaskHandler) ListForTrainer(kind domain.TaskKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainerID, ok := callerID(c)
		if !ok {
			return
		}
		list, err := h.tasks.ListForTrainer(c.Request.Context(), kind, trainerID, domain.TaskStatus(c.Query("status")))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(list))
	}
}

// Schedule godoc
// @Summary Schedule a pending request
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path string true "Task ID"
// @Param schedule body ScheduleTaskRequest true "Date in the future"
// @Success 200 {object} domain.Task
// @Failure 400 {object} gin.H "Date is not in the future"
// @Failure 409 {object} gin.H "Request is not pending"
// @Router /trainer/evaluations/{taskId}/schedule [post]
// @Router /trainer/tasks/{taskId}/schedule [post]
func (h *TaskHandler) Schedule(kind domain.TaskKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainerID, taskID, ok := h.ids(c)
		if !ok {
			return
		}
		var req ScheduleTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		task, err := h.tasks.Schedule(c.Request.Context(), trainerID, kind, taskID, req.ScheduledAt)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// Reject godoc
// @Summary Reject a pending request
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param taskId path string true "Task ID"
// @Success 200 {object} domain.Task
// @Failure 409 {object} gin.H "Request is not pending"
// @Router /trainer/evaluations/{taskId}/reject [post]
// @Router /trainer/tasks/{taskId}/reject [post]
func (h *TaskHandler) Reject(kind domain.TaskKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainerID, taskID, ok := h.ids(c)
		if !ok {
			return
		}
		task, err := h.tasks.Reject(c.Request.Context(), trainerID, kind, taskID)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// Complete godoc
// @Summary Complete a scheduled request, attaching results
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path string true "Task ID"
// @Param results body CompleteTaskRequest false "Free-form results"
// @Success 200 {object} domain.Task
// @Failure 409 {object} gin.H "Request has no scheduled date"
// @Router /trainer/evaluations/{taskId}/complete [post]
// @Router /trainer/tasks/{taskId}/complete [post]
func (h *TaskHandler) Complete(kind domain.TaskKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		trainerID, taskID, ok := h.ids(c)
		if !ok {
			return
		}
		var req CompleteTaskRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				bindError(c, err)
				return
			}
		}
		task, err := h.tasks.Complete(c.Request.Context(), trainerID, kind, taskID, req.Results)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

func (h *TaskHandler) ids(c *gin.Context) (trainerID, taskID primitive.ObjectID, ok bool) {
	if trainerID, ok = callerID(c); !ok {
		return
	}
	taskID, ok = pathID(c, "taskId")
	return
}
