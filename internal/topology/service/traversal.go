package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/topology/domain"
	"gorm.io/gorm"
)

// Traversal queries are pure projections. They read customer and asset rows
// directly rather than going through those services so that an absent parent
// link at any level degrades to a partial view instead of an error.

type customerRow struct {
	ID           snowflake.ID
	Name         string
	Status       string
	Address      string
	SplitterID   *snowflake.ID
	AssignedPort *int
}

type assetRow struct {
	ID           snowflake.ID
	AssetType    string
	Model        string
	SerialNumber string
	Status       string
	Location     string
	CustomerID   *snowflake.ID
}

func (s *Service) CustomerTopology(ctx context.Context, customerID snowflake.ID) (domain.CustomerTopology, error) {
	return s.customerTopology(ctx, s.db, customerID)
}

func (s *Service) customerTopology(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (domain.CustomerTopology, error) {
	var customer customerRow
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, status, address, splitter_id, assigned_port
		 FROM customers WHERE id = ?`,
		customerID,
	).Scan(&customer).Error
	if err != nil {
		return domain.CustomerTopology{}, err
	}
	if customer.ID == 0 {
		return domain.CustomerTopology{}, domain.ErrCustomerNotFound
	}

	view := domain.CustomerTopology{
		Customer: domain.CustomerSummary{
			ID:      customer.ID,
			Name:    customer.Name,
			Status:  customer.Status,
			Address: customer.Address,
		},
	}

	var devices []assetRow
	err = db.WithContext(ctx).Raw(
		`SELECT id, asset_type, model, serial_number, status, location, customer_id
		 FROM assets WHERE customer_id = ?`,
		customerID,
	).Scan(&devices).Error
	if err != nil {
		return domain.CustomerTopology{}, err
	}
	for _, device := range devices {
		summary := assetSummary(device)
		switch device.AssetType {
		case "ONT":
			view.ONT = &summary
		case "Router":
			view.Router = &summary
		}
	}

	if customer.SplitterID == nil {
		return view, nil
	}

	splitter, err := s.repo.FindSplitterByID(ctx, db, *customer.SplitterID)
	if err != nil {
		return domain.CustomerTopology{}, err
	}
	if splitter == nil {
		return view, nil
	}
	view.Splitter = &domain.SplitterSummary{
		ID:           splitter.ID,
		Model:        splitter.Model,
		Port:         customer.AssignedPort,
		PortCapacity: splitter.PortCapacity,
		UsedPorts:    splitter.UsedPorts,
	}

	fdh, err := s.repo.FindFDHByID(ctx, db, splitter.FDHID)
	if err != nil {
		return domain.CustomerTopology{}, err
	}
	if fdh == nil {
		return view, nil
	}
	view.FDH = &domain.FDHSummary{
		ID:       fdh.ID,
		Name:     fdh.Name,
		Location: fdh.Location,
		Region:   fdh.Region,
	}

	if fdh.HeadendID == nil {
		return view, nil
	}
	headend, err := s.repo.FindHeadendByID(ctx, db, *fdh.HeadendID)
	if err != nil {
		return domain.CustomerTopology{}, err
	}
	if headend != nil {
		view.Headend = &domain.HeadendSummary{
			ID:       headend.ID,
			Name:     headend.Name,
			Location: headend.Location,
			Region:   headend.Region,
		}
	}
	return view, nil
}

func (s *Service) HubTopology(ctx context.Context, fdhID snowflake.ID) (domain.HubTopology, error) {
	fdh, err := s.repo.FindFDHByID(ctx, s.db, fdhID)
	if err != nil {
		return domain.HubTopology{}, err
	}
	if fdh == nil {
		return domain.HubTopology{}, domain.ErrFDHNotFound
	}

	splitters, err := s.repo.ListSplitters(ctx, s.db, &fdhID)
	if err != nil {
		return domain.HubTopology{}, err
	}

	view := domain.HubTopology{
		FDH:       *fdh,
		Splitters: make([]domain.HubSplitterSummary, 0, len(splitters)),
	}
	for _, splitter := range splitters {
		var customers []customerRow
		err := s.db.WithContext(ctx).Raw(
			`SELECT id, name, status, address, splitter_id, assigned_port
			 FROM customers WHERE splitter_id = ?
			 ORDER BY assigned_port asc, id asc`,
			splitter.ID,
		).Scan(&customers).Error
		if err != nil {
			return domain.HubTopology{}, err
		}

		summary := domain.HubSplitterSummary{
			Splitter:  splitter,
			Customers: make([]domain.HubCustomerSummary, 0, len(customers)),
		}
		for _, customer := range customers {
			summary.Customers = append(summary.Customers, domain.HubCustomerSummary{
				ID:     customer.ID,
				Name:   customer.Name,
				Status: customer.Status,
				Port:   customer.AssignedPort,
			})
		}
		view.TotalCustomers += len(customers)
		view.Splitters = append(view.Splitters, summary)
	}
	return view, nil
}

func (s *Service) SearchDeviceBySerial(ctx context.Context, serial string) (domain.DeviceSearchResult, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return domain.DeviceSearchResult{}, domain.ErrDeviceNotFound
	}

	var device assetRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, asset_type, model, serial_number, status, location, customer_id
		 FROM assets WHERE serial_number = ?`,
		serial,
	).Scan(&device).Error
	if err != nil {
		return domain.DeviceSearchResult{}, err
	}
	if device.ID == 0 {
		return domain.DeviceSearchResult{}, domain.ErrDeviceNotFound
	}

	result := domain.DeviceSearchResult{Asset: assetSummary(device)}

	if device.CustomerID != nil {
		topology, err := s.customerTopology(ctx, s.db, *device.CustomerID)
		if err != nil && err != domain.ErrCustomerNotFound {
			return domain.DeviceSearchResult{}, err
		}
		if err == nil {
			result.Topology = &topology
		}
	}

	var history []domain.AssignmentEvent
	err = s.db.WithContext(ctx).Raw(
		`SELECT ar.customer_id, c.name AS customer_name, ar.assigned_on
		 FROM assignment_records ar
		 LEFT JOIN customers c ON c.id = ar.customer_id
		 WHERE ar.asset_id = ?
		 ORDER BY ar.assigned_on DESC, ar.id DESC`,
		device.ID,
	).Scan(&history).Error
	if err != nil {
		return domain.DeviceSearchResult{}, err
	}
	result.History = history
	return result, nil
}

func assetSummary(row assetRow) domain.AssetSummary {
	return domain.AssetSummary{
		ID:           row.ID,
		Type:         row.AssetType,
		Model:        row.Model,
		SerialNumber: row.SerialNumber,
		Status:       row.Status,
	}
}
