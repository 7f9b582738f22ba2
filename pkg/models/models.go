// Package models defines the shop's records. The po tags are the mapping
// between Go fields and snake_case columns; the json tags are the camelCase
// wire names.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/marshallshelly/costume-shop/pkg/registry"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
)

// Costume is a sellable or rentable item.
type Costume struct {
	ID         int      `po:"id,primaryKey,serial" json:"id" yaml:"-"`
	Name       string   `po:"name,varchar(80),notNull" json:"name" yaml:"name"`
	Category   Category `po:"category,varchar(10),notNull,enum(adult|child|baby|pet)" json:"category" yaml:"category"`
	Gender     Gender   `po:"gender,varchar(10),notNull,enum(male|female|unisex)" json:"gender" yaml:"gender"`
	Size       string   `po:"size,varchar(10),notNull" json:"size" yaml:"size"`
	Type       string   `po:"type,varchar(80),notNull" json:"type" yaml:"type"`
	StockCount int      `po:"stock_count,integer,notNull" json:"stockCount" yaml:"stockCount"`
	Price      float64  `po:"price,double precision,notNull" json:"price" yaml:"price"`
}

func (Costume) TableName() string { return "costumes" }

// Customer is a buyer. Password holds whatever credential the caller stored,
// normally a bcrypt hash, and never leaves the process as JSON.
type Customer struct {
	ID       int    `po:"id,primaryKey,serial" json:"id" yaml:"-"`
	FullName string `po:"full_name,varchar(255),notNull" json:"fullName" yaml:"fullName"`
	Email    string `po:"email,varchar(80),notNull,check(email LIKE '%_@__%._%')" json:"email" yaml:"email"`
	Password string `po:"password,varchar(80),notNull" json:"-" yaml:"password"`
}

func (Customer) TableName() string { return "customers" }

// Order is a purchase placed by a customer.
type Order struct {
	ID         int        `po:"id,primaryKey,serial" json:"id" yaml:"-"`
	DatePlaced *time.Time `po:"date_placed,timestamptz" json:"datePlaced" yaml:"datePlaced"`
	Status     Status     `po:"status,varchar(255),notNull,enum(pending|awaiting fulfillment|awaiting shipment|shipped|completed|cancelled|refunded)" json:"status" yaml:"status"`
	CustomerID int        `po:"customer_id,integer,notNull,fk(customers.id)" json:"customerId" yaml:"customerId"`
}

func (Order) TableName() string { return "orders" }

// OrderCostume links a costume to an order. Links are immutable and the same
// pair may be linked more than once.
type OrderCostume struct {
	ID        int `po:"id,primaryKey,serial" json:"id"`
	OrderID   int `po:"order_id,integer,notNull,fk(orders.id)" json:"orderId"`
	CostumeID int `po:"costume_id,integer,notNull,fk(costumes.id)" json:"costumeId"`
}

func (OrderCostume) TableName() string { return "orders_costumes" }

// CostumeInOrder is a costume reached through an order's links.
type CostumeInOrder struct {
	OrderID    int      `po:"order_id" json:"orderId"`
	CostumeID  int      `po:"costume_id" json:"costumeId"`
	Name       string   `po:"name" json:"name"`
	Category   Category `po:"category" json:"category"`
	Gender     Gender   `po:"gender" json:"gender"`
	Size       string   `po:"size" json:"size"`
	Type       string   `po:"type" json:"type"`
	StockCount int      `po:"stock_count" json:"stockCount"`
	Price      float64  `po:"price" json:"price"`
}

// CostumeOrder is an order reached through a costume's links.
type CostumeOrder struct {
	OrderID    int        `po:"order_id" json:"orderId"`
	CostumeID  int        `po:"costume_id" json:"costumeId"`
	DatePlaced *time.Time `po:"date_placed" json:"datePlaced"`
	Status     Status     `po:"status" json:"status"`
	CustomerID int        `po:"customer_id" json:"customerId"`
}

// NewRegistry registers the four tables.
func NewRegistry() (*registry.Registry, error) {
	r := registry.NewRegistry()
	if err := r.Register(Customer{}, Costume{}, Order{}, OrderCostume{}); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate rejects empty required fields and out-of-range enums before a
// statement is sent. Length and format limits stay with the database.
func (c *Costume) Validate() error {
	if err := required(map[string]string{"name": c.Name, "size": c.Size, "type": c.Type}); err != nil {
		return err
	}
	if !c.Category.Valid() {
		return &runtime.ValidationError{Field: "category", Message: fmt.Sprintf("%q is not one of %s", c.Category, join(Categories))}
	}
	if !c.Gender.Valid() {
		return &runtime.ValidationError{Field: "gender", Message: fmt.Sprintf("%q is not one of %s", c.Gender, join(Genders))}
	}
	return nil
}

// Validate rejects empty required fields.
func (c *Customer) Validate() error {
	return required(map[string]string{"full_name": c.FullName, "email": c.Email, "password": c.Password})
}

// Validate rejects an out-of-range status.
func (o *Order) Validate() error {
	if !o.Status.Valid() {
		return &runtime.ValidationError{Field: "status", Message: fmt.Sprintf("%q is not one of %s", o.Status, join(Statuses))}
	}
	return nil
}

func required(fields map[string]string) error {
	// stable field order keeps error messages deterministic
	for _, name := range []string{"name", "full_name", "email", "password", "size", "type"} {
		v, ok := fields[name]
		if ok && v == "" {
			return &runtime.ValidationError{Field: name, Message: "is required"}
		}
	}
	return nil
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. An empty
// string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, &runtime.ValidationError{Field: "date_placed", Message: fmt.Sprintf("cannot parse %q as a date", s)}
}
