package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateCustomerRequest struct {
	Name           string
	Address        string
	Neighborhood   string
	Plan           string
	ConnectionType ConnectionType
}

// UpdateCustomerRequest enumerates exactly the mutable profile fields.
// Status and the splitter/port binding change only through the lifecycle
// orchestrator.
type UpdateCustomerRequest struct {
	Name           *string
	Address        *string
	Neighborhood   *string
	Plan           *string
	ConnectionType *ConnectionType
}

type ListCustomerFilter struct {
	Status Status
	Limit  int
	Offset int
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id snowflake.ID) (Customer, error)
	List(ctx context.Context, filter ListCustomerFilter) ([]Customer, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateCustomerRequest) (Customer, error)
	ListByStatus(ctx context.Context, status Status) ([]Customer, error)
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrNotFound        = errors.New("customer_not_found")
	ErrNotPending      = errors.New("customer_not_pending")
	ErrAlreadyActive   = errors.New("customer_already_active")
	ErrAlreadyPending  = errors.New("customer_already_pending")
	ErrAlreadyInactive = errors.New("customer_already_inactive")
)
