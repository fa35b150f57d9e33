package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
)

type createCustomerRequest struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Neighborhood   string `json:"neighborhood"`
	Plan           string `json:"plan"`
	ConnectionType string `json:"connection_type"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:           req.Name,
		Address:        req.Address,
		Neighborhood:   req.Neighborhood,
		Plan:           req.Plan,
		ConnectionType: customerdomain.ConnectionType(req.ConnectionType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), nil, actorFrom(c), "customer.create", "customer", resp.ID.String(), map[string]any{
		"name": resp.Name,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	customers, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerFilter{
		Status: customerdomain.Status(strings.TrimSpace(c.Query("status"))),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateCustomerRequest struct {
	Name           *string `json:"name"`
	Address        *string `json:"address"`
	Neighborhood   *string `json:"neighborhood"`
	Plan           *string `json:"plan"`
	ConnectionType *string `json:"connection_type"`
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var connection *customerdomain.ConnectionType
	if req.ConnectionType != nil {
		value := customerdomain.ConnectionType(*req.ConnectionType)
		connection = &value
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), id, customerdomain.UpdateCustomerRequest{
		Name:           req.Name,
		Address:        req.Address,
		Neighborhood:   req.Neighborhood,
		Plan:           req.Plan,
		ConnectionType: connection,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CustomerHistory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if _, err := s.customerSvc.GetByID(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	records, err := s.ledgerSvc.HistoryByCustomer(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
