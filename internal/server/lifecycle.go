package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
	lifecycledomain "github.com/opennoc/fiberplant/internal/lifecycle/domain"
)

type onboardRequest struct {
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	Neighborhood      string   `json:"neighborhood"`
	Plan              string   `json:"plan"`
	ConnectionType    string   `json:"connection_type"`
	SplitterID        string   `json:"splitter_id"`
	Port              int      `json:"port"`
	ONTAssetID        string   `json:"ont_asset_id"`
	RouterAssetID     string   `json:"router_asset_id"`
	FiberLengthMeters *float64 `json:"fiber_length_meters"`
}

func (s *Server) Onboard(c *gin.Context) {
	var req onboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	splitterID, err := parseID(req.SplitterID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ontID, err := parseOptionalID(req.ONTAssetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	routerID, err := parseOptionalID(req.RouterAssetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.lifecycleSvc.Onboard(c.Request.Context(), lifecycledomain.OnboardRequest{
		Customer: customerdomain.CreateCustomerRequest{
			Name:           req.Name,
			Address:        req.Address,
			Neighborhood:   req.Neighborhood,
			Plan:           req.Plan,
			ConnectionType: customerdomain.ConnectionType(req.ConnectionType),
		},
		SplitterID:        splitterID,
		Port:              req.Port,
		ONTAssetID:        ontID,
		RouterAssetID:     routerID,
		FiberLengthMeters: req.FiberLengthMeters,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

type assignAssetsRequest struct {
	ONTAssetID    string `json:"ont_asset_id"`
	RouterAssetID string `json:"router_asset_id"`
}

func (s *Server) AssignAssets(c *gin.Context) {
	customerID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req assignAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ontID, err := parseID(req.ONTAssetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	routerID, err := parseID(req.RouterAssetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.lifecycleSvc.AssignAssets(c.Request.Context(), customerID, ontID, routerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

type reassignRequest struct {
	NewCustomerID string `json:"new_customer_id"`
}

func (s *Server) ReassignAsset(c *gin.Context) {
	assetID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	newCustomerID, err := parseID(req.NewCustomerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.lifecycleSvc.ReassignAsset(c.Request.Context(), assetID, newCustomerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

type replaceFaultyRequest struct {
	OldAssetID string `json:"old_asset_id"`
	NewAssetID string `json:"new_asset_id"`
}

func (s *Server) ReplaceFaultyAsset(c *gin.Context) {
	var req replaceFaultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	oldID, err := parseID(req.OldAssetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	newID, err := parseID(req.NewAssetID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.lifecycleSvc.ReplaceFaultyAsset(c.Request.Context(), oldID, newID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ReclaimCustomerAssets(c *gin.Context) {
	customerID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.lifecycleSvc.ReclaimCustomerAssets(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

type bulkReclaimRequest struct {
	CustomerIDs []string `json:"customer_ids"`
}

func (s *Server) BulkReclaim(c *gin.Context) {
	var req bulkReclaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if len(req.CustomerIDs) == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ids := make([]snowflake.ID, 0, len(req.CustomerIDs))
	for _, raw := range req.CustomerIDs {
		id, err := parseID(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		ids = append(ids, id)
	}

	items := s.lifecycleSvc.BulkReclaim(c.Request.Context(), ids)
	c.JSON(http.StatusOK, gin.H{"data": items})
}

type retireRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RetireAsset(c *gin.Context) {
	assetID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req retireRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	asset, err := s.lifecycleSvc.RetireAsset(c.Request.Context(), assetID, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": asset})
}

func (s *Server) DeactivateCustomer(c *gin.Context) {
	customerID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.lifecycleSvc.DeactivateCustomer(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ActivateCustomer(c *gin.Context) {
	customerID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	customer, err := s.lifecycleSvc.ActivateCustomer(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) PurgeCustomer(c *gin.Context) {
	customerID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.lifecycleSvc.PurgeCustomer(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func parseOptionalID(raw string) (*snowflake.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
