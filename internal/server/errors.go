package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	assetdomain "github.com/opennoc/fiberplant/internal/asset/domain"
	auditdomain "github.com/opennoc/fiberplant/internal/audit/domain"
	authdomain "github.com/opennoc/fiberplant/internal/auth/domain"
	"github.com/opennoc/fiberplant/internal/authorization"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
	deploymentdomain "github.com/opennoc/fiberplant/internal/deployment/domain"
	lifecycledomain "github.com/opennoc/fiberplant/internal/lifecycle/domain"
	topologydomain "github.com/opennoc/fiberplant/internal/topology/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInvalidID      = errors.New("invalid_id")
)

// ErrorHandlingMiddleware turns domain sentinel errors pushed via
// AbortWithError into JSON error responses with the right status code.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	case errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}
	case errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "forbidden"}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, assetdomain.ErrAssetNotFound),
		errors.Is(err, topologydomain.ErrHeadendNotFound),
		errors.Is(err, topologydomain.ErrFDHNotFound),
		errors.Is(err, topologydomain.ErrSplitterNotFound),
		errors.Is(err, topologydomain.ErrCustomerNotFound),
		errors.Is(err, topologydomain.ErrDeviceNotFound),
		errors.Is(err, lifecycledomain.ErrSplitterNotFound),
		errors.Is(err, deploymentdomain.ErrTaskNotFound),
		errors.Is(err, deploymentdomain.ErrTechnicianNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, lifecycledomain.ErrPortUnavailable),
		errors.Is(err, lifecycledomain.ErrSameCustomer),
		errors.Is(err, lifecycledomain.ErrCustomerInactive),
		errors.Is(err, assetdomain.ErrSerialTaken),
		errors.Is(err, assetdomain.ErrAssetNotAvailable),
		errors.Is(err, assetdomain.ErrAssetNotAssigned),
		errors.Is(err, assetdomain.ErrAssetRetired),
		errors.Is(err, assetdomain.ErrAssetInUse),
		errors.Is(err, customerdomain.ErrNotPending),
		errors.Is(err, customerdomain.ErrAlreadyActive),
		errors.Is(err, customerdomain.ErrAlreadyPending),
		errors.Is(err, customerdomain.ErrAlreadyInactive),
		errors.Is(err, deploymentdomain.ErrTaskClosed),
		errors.Is(err, deploymentdomain.ErrTaskStatusUnchanged),
		errors.Is(err, authdomain.ErrUsernameTaken):
		return true
	}
	return false
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, lifecycledomain.ErrPortOutOfRange),
		errors.Is(err, assetdomain.ErrInvalidAssetType),
		errors.Is(err, assetdomain.ErrInvalidSerial),
		errors.Is(err, assetdomain.ErrAssetTypeMismatch),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, topologydomain.ErrInvalidName),
		errors.Is(err, topologydomain.ErrInvalidPortCapacity),
		errors.Is(err, deploymentdomain.ErrInvalidTaskStatus),
		errors.Is(err, deploymentdomain.ErrInvalidTechnician),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, authdomain.ErrInvalidUsername),
		errors.Is(err, authdomain.ErrInvalidPassword),
		errors.Is(err, authdomain.ErrInvalidRole):
		return true
	}
	return false
}
