package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	topologydomain "github.com/opennoc/fiberplant/internal/topology/domain"
)

type createHeadendRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Region   string `json:"region"`
}

func (s *Server) CreateHeadend(c *gin.Context) {
	var req createHeadendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	headend, err := s.topologySvc.CreateHeadend(c.Request.Context(), topologydomain.CreateHeadendRequest{
		Name:     req.Name,
		Location: req.Location,
		Region:   req.Region,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": headend})
}

func (s *Server) ListHeadends(c *gin.Context) {
	headends, err := s.topologySvc.ListHeadends(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": headends})
}

type createFDHRequest struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Region    string `json:"region"`
	MaxPorts  int    `json:"max_ports"`
	HeadendID string `json:"headend_id"`
}

func (s *Server) CreateFDH(c *gin.Context) {
	var req createFDHRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var headendID *snowflake.ID
	if strings.TrimSpace(req.HeadendID) != "" {
		id, err := parseID(req.HeadendID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		headendID = &id
	}

	fdh, err := s.topologySvc.CreateFDH(c.Request.Context(), topologydomain.CreateFDHRequest{
		Name:      req.Name,
		Location:  req.Location,
		Region:    req.Region,
		MaxPorts:  req.MaxPorts,
		HeadendID: headendID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": fdh})
}

func (s *Server) ListFDHs(c *gin.Context) {
	fdhs, err := s.topologySvc.ListFDHs(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fdhs})
}

type createSplitterRequest struct {
	FDHID        string `json:"fdh_id"`
	Model        string `json:"model"`
	PortCapacity int    `json:"port_capacity"`
	Location     string `json:"location"`
}

func (s *Server) CreateSplitter(c *gin.Context) {
	var req createSplitterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	fdhID, err := parseID(req.FDHID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	splitter, err := s.topologySvc.CreateSplitter(c.Request.Context(), topologydomain.CreateSplitterRequest{
		FDHID:        fdhID,
		Model:        req.Model,
		PortCapacity: req.PortCapacity,
		Location:     req.Location,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": splitter})
}

func (s *Server) ListSplitters(c *gin.Context) {
	var fdhID *snowflake.ID
	if raw := strings.TrimSpace(c.Query("fdh_id")); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		fdhID = &id
	}

	splitters, err := s.topologySvc.ListSplitters(c.Request.Context(), fdhID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": splitters})
}

func (s *Server) GetSplitter(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	splitter, err := s.topologySvc.GetSplitter(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": splitter})
}

// AvailablePorts reports the free ports on a splitter. A missing splitter is
// a 404 here even though the manager itself treats it as an empty set.
func (s *Server) AvailablePorts(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	splitter, err := s.topologySvc.GetSplitter(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	available, err := s.portsMgr.AvailablePorts(c.Request.Context(), nil, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"splitter_id":     splitter.ID,
		"port_capacity":   splitter.PortCapacity,
		"available_ports": available,
	}})
}

func (s *Server) CustomerTopology(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.topologySvc.CustomerTopology(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) HubTopology(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.topologySvc.HubTopology(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) SearchDevice(c *gin.Context) {
	serial := strings.TrimSpace(c.Query("serial"))
	if serial == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.topologySvc.SearchDeviceBySerial(c.Request.Context(), serial)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
