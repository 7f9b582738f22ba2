// Package seed loads the demo catalogue into an empty schema.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/marshallshelly/costume-shop/pkg/auth"
	"github.com/marshallshelly/costume-shop/pkg/migration"
	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/store"
)

//go:embed seed.yaml
var defaultData []byte

// Order is a seeded order. Customer is the 1-based position in Data.Customers.
type Order struct {
	DatePlaced string        `yaml:"datePlaced"`
	Status     models.Status `yaml:"status"`
	Customer   int           `yaml:"customer"`
}

// Link pairs 1-based positions in Data.Orders and Data.Costumes.
type Link struct {
	Order   int `yaml:"order"`
	Costume int `yaml:"costume"`
}

// Data is the seed document. Customer passwords are plain text and are
// hashed on insert.
type Data struct {
	Costumes  []models.Costume  `yaml:"costumes"`
	Customers []models.Customer `yaml:"customers"`
	Orders    []Order           `yaml:"orders"`
	Links     []Link            `yaml:"links"`
}

// Summary counts the inserted rows.
type Summary struct {
	Costumes  int `json:"costumes"`
	Customers int `json:"customers"`
	Orders    int `json:"orders"`
	Links     int `json:"links"`
}

// Default parses the embedded seed document.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Parse decodes and checks a seed document.
func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if err := data.check(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *Data) check() error {
	for i, o := range d.Orders {
		if o.Customer < 1 || o.Customer > len(d.Customers) {
			return fmt.Errorf("order %d: customer %d out of range", i+1, o.Customer)
		}
		if _, err := models.ParseDate(o.DatePlaced); err != nil {
			return fmt.Errorf("order %d: %w", i+1, err)
		}
	}
	for i, l := range d.Links {
		if l.Order < 1 || l.Order > len(d.Orders) {
			return fmt.Errorf("link %d: order %d out of range", i+1, l.Order)
		}
		if l.Costume < 1 || l.Costume > len(d.Costumes) {
			return fmt.Errorf("link %d: costume %d out of range", i+1, l.Costume)
		}
	}
	return nil
}

// Run drops and recreates the schema, then inserts data.
func Run(ctx context.Context, st *store.Store, data *Data, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := migration.NewExecutor(st.DB(), st.Tables()).WithLogger(logger).CreateTables(ctx); err != nil {
		return nil, err
	}
	return Insert(ctx, st, data, logger)
}

// Insert adds data to an existing schema. Positions in orders and links are
// resolved to the ids the database assigns.
func Insert(ctx context.Context, st *store.Store, data *Data, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var sum Summary

	costumeIDs := make([]int, len(data.Costumes))
	for i, c := range data.Costumes {
		created, err := st.Costumes.Create(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("costume %q: %w", c.Name, err)
		}
		costumeIDs[i] = created.ID
		sum.Costumes++
	}
	logger.Info("seeded costumes", "count", sum.Costumes)

	customerIDs := make([]int, len(data.Customers))
	for i, c := range data.Customers {
		hash, err := auth.HashPassword(c.Password)
		if err != nil {
			return nil, err
		}
		c.Password = hash
		created, err := st.Customers.Create(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("customer %q: %w", c.Email, err)
		}
		customerIDs[i] = created.ID
		sum.Customers++
	}
	logger.Info("seeded customers", "count", sum.Customers)

	orderIDs := make([]int, len(data.Orders))
	for i, o := range data.Orders {
		placed, err := models.ParseDate(o.DatePlaced)
		if err != nil {
			return nil, err
		}
		created, err := st.Orders.Create(ctx, models.Order{
			DatePlaced: placed,
			Status:     o.Status,
			CustomerID: customerIDs[o.Customer-1],
		})
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i+1, err)
		}
		orderIDs[i] = created.ID
		sum.Orders++
	}
	logger.Info("seeded orders", "count", sum.Orders)

	for _, l := range data.Links {
		if _, err := st.OrderCostumes.Add(ctx, costumeIDs[l.Costume-1], orderIDs[l.Order-1]); err != nil {
			return nil, fmt.Errorf("link order %d costume %d: %w", l.Order, l.Costume, err)
		}
		sum.Links++
	}
	logger.Info("seeded order costumes", "count", sum.Links)

	return &sum, nil
}
