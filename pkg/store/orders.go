package store

import (
	"context"
	"fmt"

	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// Orders is the order adapter.
type Orders struct {
	t *table[models.Order]

	byCustomerID string
}

func newOrders(t *table[models.Order], customers *schema.TableMetadata) *Orders {
	return &Orders{
		t: t,
		byCustomerID: fmt.Sprintf("SELECT %s FROM %s JOIN %s ON %s.id = %s.customer_id WHERE %s.id = $1 ORDER BY %s.id",
			qualifiedColumns(t.meta), t.meta.Name, customers.Name, customers.Name, t.meta.Name, customers.Name, t.meta.Name),
	}
}

// Create inserts an order. CustomerID must name an existing customer.
func (o *Orders) Create(ctx context.Context, order models.Order) (*models.Order, error) {
	return o.t.create(ctx, order)
}

// All returns every order in insertion order.
func (o *Orders) All(ctx context.Context) ([]models.Order, error) {
	return o.t.all(ctx)
}

// ByID returns one order or a NotFoundError.
func (o *Orders) ByID(ctx context.Context, id int) (*models.Order, error) {
	return o.t.byID(ctx, id)
}

// ByCustomerID returns the orders of customerID in insertion order. An unknown
// customer and a customer without orders both yield a NotFoundError.
func (o *Orders) ByCustomerID(ctx context.Context, customerID int) ([]models.Order, error) {
	orders, err := o.t.many(ctx, o.byCustomerID, customerID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, runtime.NotFound("find orders of", "customer", customerID)
	}
	return orders, nil
}

// Update replaces every field of order id. Status may move between any two
// values.
func (o *Orders) Update(ctx context.Context, id int, order models.Order) (*models.Order, error) {
	return o.t.update(ctx, id, order)
}

// Delete removes order id. An order with costume links cannot be deleted.
func (o *Orders) Delete(ctx context.Context, id int) (*models.Order, error) {
	return o.t.delete(ctx, id)
}
