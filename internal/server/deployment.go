package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	deploymentdomain "github.com/opennoc/fiberplant/internal/deployment/domain"
)

type createTechnicianRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Region string `json:"region"`
}

func (s *Server) CreateTechnician(c *gin.Context) {
	var req createTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	technician, err := s.deploymentSvc.CreateTechnician(c.Request.Context(), deploymentdomain.CreateTechnicianRequest{
		Name:   req.Name,
		Phone:  req.Phone,
		Region: req.Region,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": technician})
}

func (s *Server) ListTechnicians(c *gin.Context) {
	technicians, err := s.deploymentSvc.ListTechnicians(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": technicians})
}

type createTaskRequest struct {
	CustomerID   string `json:"customer_id"`
	TechnicianID string `json:"technician_id"`
	ScheduledFor string `json:"scheduled_for"`
	Notes        string `json:"notes"`
}

func (s *Server) CreateDeploymentTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var technicianID *snowflake.ID
	if strings.TrimSpace(req.TechnicianID) != "" {
		id, err := parseID(req.TechnicianID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		technicianID = &id
	}

	var scheduledFor *time.Time
	if strings.TrimSpace(req.ScheduledFor) != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		scheduledFor = &parsed
	}

	task, err := s.deploymentSvc.CreateTask(c.Request.Context(), deploymentdomain.CreateTaskRequest{
		CustomerID:   customerID,
		TechnicianID: technicianID,
		ScheduledFor: scheduledFor,
		Notes:        req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": task})
}

func (s *Server) ListDeploymentTasks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := deploymentdomain.ListTaskFilter{
		Status: deploymentdomain.TaskStatus(strings.TrimSpace(c.Query("status"))),
		Limit:  limit,
		Offset: offset,
	}
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		filter.CustomerID = id
	}
	if raw := strings.TrimSpace(c.Query("technician_id")); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		filter.TechnicianID = id
	}

	tasks, err := s.deploymentSvc.ListTasks(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (s *Server) GetDeploymentTask(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	task, err := s.deploymentSvc.GetTask(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateDeploymentTaskStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	task, err := s.deploymentSvc.UpdateTaskStatus(c.Request.Context(), id, deploymentdomain.TaskStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}
