package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateHeadendRequest struct {
	Name     string
	Location string
	Region   string
}

type CreateFDHRequest struct {
	Name      string
	Location  string
	Region    string
	MaxPorts  int
	HeadendID *snowflake.ID
}

type CreateSplitterRequest struct {
	FDHID        snowflake.ID
	Model        string
	PortCapacity int
	Location     string
}

// CustomerTopology is the denormalized customer→splitter→hub→headend view.
// Parent links are optional; absent levels stay nil.
type CustomerTopology struct {
	Customer CustomerSummary  `json:"customer"`
	ONT      *AssetSummary    `json:"ont,omitempty"`
	Router   *AssetSummary    `json:"router,omitempty"`
	Splitter *SplitterSummary `json:"splitter,omitempty"`
	FDH      *FDHSummary      `json:"fdh,omitempty"`
	Headend  *HeadendSummary  `json:"headend,omitempty"`
}

type CustomerSummary struct {
	ID      snowflake.ID `json:"id"`
	Name    string       `json:"name"`
	Status  string       `json:"status"`
	Address string       `json:"address,omitempty"`
}

type AssetSummary struct {
	ID           snowflake.ID `json:"id"`
	Type         string       `json:"type"`
	Model        string       `json:"model,omitempty"`
	SerialNumber string       `json:"serial"`
	Status       string       `json:"status"`
}

type SplitterSummary struct {
	ID           snowflake.ID `json:"id"`
	Model        string       `json:"model,omitempty"`
	Port         *int         `json:"port,omitempty"`
	PortCapacity int          `json:"capacity"`
	UsedPorts    int          `json:"used"`
}

type FDHSummary struct {
	ID       snowflake.ID `json:"id"`
	Name     string       `json:"name"`
	Location string       `json:"location,omitempty"`
	Region   string       `json:"region,omitempty"`
}

type HeadendSummary struct {
	ID       snowflake.ID `json:"id"`
	Name     string       `json:"name"`
	Location string       `json:"location,omitempty"`
	Region   string       `json:"region,omitempty"`
}

// HubTopology is the inverse view: one FDH, its splitters, their customers.
type HubTopology struct {
	FDH            FDH                  `json:"fdh"`
	Splitters      []HubSplitterSummary `json:"splitters"`
	TotalCustomers int                  `json:"total_customers"`
}

type HubSplitterSummary struct {
	Splitter  Splitter             `json:"splitter"`
	Customers []HubCustomerSummary `json:"customers"`
}

type HubCustomerSummary struct {
	ID     snowflake.ID `json:"id"`
	Name   string       `json:"name"`
	Status string       `json:"status"`
	Port   *int         `json:"port,omitempty"`
}

// DeviceSearchResult resolves a serial number to the device, its owner's
// topology, and the assignment history most-recent-first.
type DeviceSearchResult struct {
	Asset    AssetSummary      `json:"asset"`
	Topology *CustomerTopology `json:"customer_topology,omitempty"`
	History  []AssignmentEvent `json:"history"`
}

type AssignmentEvent struct {
	CustomerID   snowflake.ID `json:"customer_id"`
	CustomerName string       `json:"customer_name,omitempty"`
	AssignedOn   time.Time    `json:"assigned_on"`
}

type Service interface {
	CreateHeadend(ctx context.Context, req CreateHeadendRequest) (Headend, error)
	ListHeadends(ctx context.Context) ([]Headend, error)
	CreateFDH(ctx context.Context, req CreateFDHRequest) (FDH, error)
	ListFDHs(ctx context.Context) ([]FDH, error)
	CreateSplitter(ctx context.Context, req CreateSplitterRequest) (Splitter, error)
	ListSplitters(ctx context.Context, fdhID *snowflake.ID) ([]Splitter, error)
	GetSplitter(ctx context.Context, id snowflake.ID) (Splitter, error)

	CustomerTopology(ctx context.Context, customerID snowflake.ID) (CustomerTopology, error)
	HubTopology(ctx context.Context, fdhID snowflake.ID) (HubTopology, error)
	SearchDeviceBySerial(ctx context.Context, serial string) (DeviceSearchResult, error)
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidPortCapacity = errors.New("invalid_port_capacity")
	ErrHeadendNotFound     = errors.New("headend_not_found")
	ErrFDHNotFound         = errors.New("fdh_not_found")
	ErrSplitterNotFound    = errors.New("splitter_not_found")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	ErrDeviceNotFound      = errors.New("device_not_found")
)
