package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	assetdomain "github.com/opennoc/fiberplant/internal/asset/domain"
)

type createAssetRequest struct {
	AssetType    string `json:"asset_type"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Location     string `json:"location"`
}

func (s *Server) CreateAsset(c *gin.Context) {
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	asset, err := s.assetSvc.Create(c.Request.Context(), assetdomain.CreateAssetRequest{
		AssetType:    assetdomain.AssetType(req.AssetType),
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Location:     req.Location,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), nil, actorFrom(c), "asset.create", "asset", asset.ID.String(), map[string]any{
		"asset_type":    string(asset.AssetType),
		"serial_number": asset.SerialNumber,
	})

	c.JSON(http.StatusCreated, gin.H{"data": asset})
}

func (s *Server) ListAssets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	assets, err := s.assetSvc.List(c.Request.Context(), assetdomain.ListAssetFilter{
		AssetType: assetdomain.AssetType(strings.TrimSpace(c.Query("asset_type"))),
		Status:    assetdomain.AssetStatus(strings.TrimSpace(c.Query("status"))),
		Location:  strings.TrimSpace(c.Query("location")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assets})
}

func (s *Server) GetAsset(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	asset, err := s.assetSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": asset})
}

type updateAssetRequest struct {
	Model    *string `json:"model"`
	Location *string `json:"location"`
}

func (s *Server) UpdateAsset(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	asset, err := s.assetSvc.Update(c.Request.Context(), id, assetdomain.UpdateAssetRequest{
		Model:    req.Model,
		Location: req.Location,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": asset})
}

func (s *Server) DeleteAsset(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.assetSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), nil, actorFrom(c), "asset.delete", "asset", id.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": id}})
}

func (s *Server) AssetLifecycle(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	details, err := s.assetSvc.LifecycleDetails(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": details})
}

func (s *Server) UtilizationStats(c *gin.Context) {
	stats, err := s.assetSvc.UtilizationStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (s *Server) MaintenanceDue(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "365"))
	if err != nil || days <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	assets, err := s.assetSvc.DueForMaintenance(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assets})
}
