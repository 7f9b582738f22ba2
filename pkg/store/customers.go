package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// Customers is the customer adapter. Passwords are stored as given; hashing
// belongs to the caller.
type Customers struct {
	t *table[models.Customer]

	byOrderID string
}

func newCustomers(t *table[models.Customer], orders *schema.TableMetadata) *Customers {
	return &Customers{
		t: t,
		byOrderID: fmt.Sprintf("SELECT %s FROM %s JOIN %s ON %s.id = %s.customer_id WHERE %s.id = $1",
			qualifiedColumns(t.meta), orders.Name, t.meta.Name, t.meta.Name, orders.Name, orders.Name),
	}
}

// Create inserts a customer and returns it with its generated id.
func (c *Customers) Create(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	return c.t.create(ctx, customer)
}

// All returns every customer in insertion order.
func (c *Customers) All(ctx context.Context) ([]models.Customer, error) {
	return c.t.all(ctx)
}

// ByID returns one customer or a NotFoundError.
func (c *Customers) ByID(ctx context.Context, id int) (*models.Customer, error) {
	return c.t.byID(ctx, id)
}

// ByOrderID returns the customer who placed order orderID.
func (c *Customers) ByOrderID(ctx context.Context, orderID int) (*models.Customer, error) {
	customer, err := c.t.one(ctx, c.byOrderID, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, runtime.NotFound("find customer of", "order", orderID)
	}
	return customer, err
}

// Update replaces every field of customer id.
func (c *Customers) Update(ctx context.Context, id int, customer models.Customer) (*models.Customer, error) {
	return c.t.update(ctx, id, customer)
}

// Delete removes customer id. A customer with orders cannot be deleted; the
// foreign key violation is returned as a ConstraintError.
func (c *Customers) Delete(ctx context.Context, id int) (*models.Customer, error) {
	return c.t.delete(ctx, id)
}
