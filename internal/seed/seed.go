package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	assetdomain "github.com/opennoc/fiberplant/internal/asset/domain"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
	deploymentdomain "github.com/opennoc/fiberplant/internal/deployment/domain"
	ledgerdomain "github.com/opennoc/fiberplant/internal/ledger/domain"
	topologydomain "github.com/opennoc/fiberplant/internal/topology/domain"
	"gorm.io/gorm"
)

// EnsureDemoData loads a small demo plant: two headends, three hubs, four
// splitters and a handful of customers with equipment already deployed. It is
// a no-op when any headend exists.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&topologydomain.Headend{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return seedDemo(tx, node)
	})
}

func seedDemo(tx *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()

	headendCentral := topologydomain.Headend{
		ID: node.Generate(), Name: "Headend Central", Location: "Central Office", Region: "Central", CreatedAt: now,
	}
	headendNorth := topologydomain.Headend{
		ID: node.Generate(), Name: "Headend North", Location: "North Office", Region: "North", CreatedAt: now,
	}
	if err := tx.Create(&[]topologydomain.Headend{headendCentral, headendNorth}).Error; err != nil {
		return err
	}

	fdhA := topologydomain.FDH{ID: node.Generate(), HeadendID: &headendCentral.ID, Name: "FDH A", Location: "Zone A", Region: "Central", MaxPorts: 8, CreatedAt: now}
	fdhB := topologydomain.FDH{ID: node.Generate(), HeadendID: &headendCentral.ID, Name: "FDH B", Location: "Zone B", Region: "Central", MaxPorts: 8, CreatedAt: now}
	fdhC := topologydomain.FDH{ID: node.Generate(), HeadendID: &headendNorth.ID, Name: "FDH C", Location: "Zone C", Region: "North", MaxPorts: 8, CreatedAt: now}
	if err := tx.Create(&[]topologydomain.FDH{fdhA, fdhB, fdhC}).Error; err != nil {
		return err
	}

	splitterA1 := topologydomain.Splitter{ID: node.Generate(), FDHID: fdhA.ID, Model: "SPL-8x", PortCapacity: 8, Location: "Street 1, Zone A", CreatedAt: now}
	splitterA2 := topologydomain.Splitter{ID: node.Generate(), FDHID: fdhA.ID, Model: "SPL-8x", PortCapacity: 8, Location: "Street 2, Zone A", CreatedAt: now}
	splitterB1 := topologydomain.Splitter{ID: node.Generate(), FDHID: fdhB.ID, Model: "SPL-8x", PortCapacity: 8, Location: "Street 1, Zone B", CreatedAt: now}
	splitterC1 := topologydomain.Splitter{ID: node.Generate(), FDHID: fdhC.ID, Model: "SPL-16x", PortCapacity: 16, Location: "Street 1, Zone C", CreatedAt: now}
	if err := tx.Create(&[]topologydomain.Splitter{splitterA1, splitterA2, splitterB1, splitterC1}).Error; err != nil {
		return err
	}

	type draft struct {
		name, address, neighborhood, plan string
		status                            customerdomain.Status
		splitterID                        snowflake.ID
		port                              int
	}
	drafts := []draft{
		{"John Doe", "House A1.1, Street 1, Zone A", "Neighborhood 1", "100 Mbps Fiber", customerdomain.StatusActive, splitterA1.ID, 1},
		{"Jane Smith", "House A1.2, Street 1, Zone A", "Neighborhood 1", "50 Mbps Fiber", customerdomain.StatusActive, splitterA1.ID, 2},
		{"Bob Johnson", "House A2.1, Street 2, Zone A", "Neighborhood 2", "200 Mbps Fiber", customerdomain.StatusActive, splitterA2.ID, 1},
		{"Alice Williams", "House A2.2, Street 2, Zone A", "Neighborhood 2", "100 Mbps Fiber", customerdomain.StatusPending, splitterA2.ID, 2},
		{"Charlie Brown", "House B1.2, Street 1, Zone B", "Neighborhood 1", "100 Mbps Fiber", customerdomain.StatusActive, splitterB1.ID, 2},
	}
	customers := make([]customerdomain.Customer, 0, len(drafts))
	for _, d := range drafts {
		splitterID := d.splitterID
		port := d.port
		customers = append(customers, customerdomain.Customer{
			ID:             node.Generate(),
			Name:           d.name,
			Address:        d.address,
			Neighborhood:   d.neighborhood,
			Plan:           d.plan,
			ConnectionType: customerdomain.ConnectionWired,
			Status:         d.status,
			SplitterID:     &splitterID,
			AssignedPort:   &port,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := tx.Create(&customers).Error; err != nil {
		return err
	}

	onts := make([]assetdomain.Asset, 0, 10)
	routers := make([]assetdomain.Asset, 0, 10)
	for i := 1; i <= 10; i++ {
		onts = append(onts, assetdomain.Asset{
			ID:           node.Generate(),
			AssetType:    assetdomain.AssetTypeONT,
			Model:        "ONT-X9100",
			SerialNumber: fmt.Sprintf("ONT-SN-%d", 1000+i),
			Status:       assetdomain.AssetStatusAvailable,
			Location:     "Central Store",
			CreatedAt:    now,
		})
		routers = append(routers, assetdomain.Asset{
			ID:           node.Generate(),
			AssetType:    assetdomain.AssetTypeRouter,
			Model:        "R1-WN1200",
			SerialNumber: fmt.Sprintf("RTR-SN-%d", 2000+i),
			Status:       assetdomain.AssetStatusAvailable,
			Location:     "Central Store",
			CreatedAt:    now,
		})
	}

	extras := make([]assetdomain.Asset, 0, 8)
	for i := 1; i <= 5; i++ {
		extras = append(extras, assetdomain.Asset{
			ID:           node.Generate(),
			AssetType:    assetdomain.AssetTypeSwitch,
			Model:        "SW-24P",
			SerialNumber: fmt.Sprintf("SW-SN-%d", 3000+i),
			Status:       assetdomain.AssetStatusAvailable,
			Location:     "Central Store",
			CreatedAt:    now,
		})
	}
	for i := 1; i <= 3; i++ {
		extras = append(extras, assetdomain.Asset{
			ID:           node.Generate(),
			AssetType:    assetdomain.AssetTypeFiberRoll,
			Model:        "SM-Fiber-1km",
			SerialNumber: fmt.Sprintf("FBR-SN-%d", 4000+i),
			Status:       assetdomain.AssetStatusAvailable,
			Location:     "Warehouse",
			CreatedAt:    now,
		})
	}

	records := make([]ledgerdomain.AssignmentRecord, 0, len(customers)*2)
	for i := range customers {
		for _, asset := range []*assetdomain.Asset{&onts[i], &routers[i]} {
			if err := asset.Assign(customers[i].ID, asset.AssetType, now); err != nil {
				return err
			}
			asset.Location = "Deployed"
			records = append(records, ledgerdomain.AssignmentRecord{
				ID:         node.Generate(),
				CustomerID: customers[i].ID,
				AssetID:    asset.ID,
				AssignedOn: now,
				CreatedAt:  now,
			})
		}
	}

	assets := append(append(onts, routers...), extras...)
	if err := tx.Create(&assets).Error; err != nil {
		return err
	}
	if err := tx.Create(&records).Error; err != nil {
		return err
	}

	technicians := []deploymentdomain.Technician{
		{ID: node.Generate(), Name: "Marco Diaz", Phone: "+1-555-0134", Region: "Central", CreatedAt: now},
		{ID: node.Generate(), Name: "Priya Nair", Phone: "+1-555-0178", Region: "North", CreatedAt: now},
	}
	if err := tx.Create(&technicians).Error; err != nil {
		return err
	}

	// Materialize the counters for the seeded bindings.
	for _, splitterID := range []snowflake.ID{splitterA1.ID, splitterA2.ID, splitterB1.ID, splitterC1.ID} {
		err := tx.Exec(
			`UPDATE splitters SET used_ports = (
				SELECT COUNT(id) FROM customers
				WHERE splitter_id = ? AND assigned_port IS NOT NULL AND status IN ('Active', 'Pending')
			) WHERE id = ?`,
			splitterID,
			splitterID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}
