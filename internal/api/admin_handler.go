package api

import (
	"alcyxob/fitcoach/internal/service"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Sweeper runs one expiration pass on demand.
type Sweeper interface {
	SweepOnce(ctx context.Context) (int64, error)
}

type AdminHandler struct {
	admin   service.AdminService
	sweeper Sweeper
	logger  *zap.Logger
}

func NewAdminHandler(admin service.AdminService, sweeper Sweeper, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, sweeper: sweeper, logger: logger}
}

type CreateStudentRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	TrainerID string `json:"trainerId"` // Admins pick the trainer; trainers are always themselves
}

type SweepResponse struct {
	Deleted int64 `json:"deleted"`
}

// CreateStudent godoc
// @Summary Create a student account
// @Description Admins may link the student to any trainer. Trainers create students for themselves. The free tier limit applies.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student body CreateStudentRequest true "Student details"
// @Success 201 {object} UserResponse
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 409 {object} gin.H "Email taken or free tier student limit reached"
// @Router /admin/students [post]
func (h *AdminHandler) CreateStudent(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	in := service.CreateStudentInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if req.TrainerID != "" {
		trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid trainerId format.")
			return
		}
		in.TrainerID = &trainerID
	}

	student, err := h.admin.CreateStudent(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(student))
}

// GetDashboard godoc
// @Summary System counters for admins
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /admin/dashboard [get]
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	d, err := h.admin.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// SweepExpiredWorkouts godoc
// @Summary Delete expired pending workouts now
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SweepResponse
// @Router /admin/sweep [post]
func (h *AdminHandler) SweepExpiredWorkouts(c *gin.Context) {
	deleted, err := h.sweeper.SweepOnce(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SweepResponse{Deleted: deleted})
}
