package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opennoc/fiberplant/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const customerColumns = `id, name, address, neighborhood, plan, connection_type, status, splitter_id, assigned_port, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, name, address, neighborhood, plan, connection_type, status, splitter_id, assigned_port, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.Name,
		customer.Address,
		customer.Neighborhood,
		customer.Plan,
		customer.ConnectionType,
		customer.Status,
		customer.SplitterID,
		customer.AssignedPort,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT `+customerColumns+` FROM customers WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter) ([]domain.Customer, error) {
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var customers []domain.Customer
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(filter.Offset).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET name = ?, address = ?, neighborhood = ?, plan = ?, connection_type = ?,
		     status = ?, splitter_id = ?, assigned_port = ?, updated_at = ?
		 WHERE id = ?`,
		customer.Name,
		customer.Address,
		customer.Neighborhood,
		customer.Plan,
		customer.ConnectionType,
		customer.Status,
		customer.SplitterID,
		customer.AssignedPort,
		customer.UpdatedAt,
		customer.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM customers WHERE id = ?`, id).Error
}
