package store

import (
	"context"

	"github.com/marshallshelly/costume-shop/pkg/models"
)

// Costumes is the costume adapter.
type Costumes struct {
	t *table[models.Costume]
}

// Create inserts a costume and returns it with its generated id.
func (c *Costumes) Create(ctx context.Context, costume models.Costume) (*models.Costume, error) {
	return c.t.create(ctx, costume)
}

// All returns every costume in insertion order.
func (c *Costumes) All(ctx context.Context) ([]models.Costume, error) {
	return c.t.all(ctx)
}

// ByID returns one costume or a NotFoundError.
func (c *Costumes) ByID(ctx context.Context, id int) (*models.Costume, error) {
	return c.t.byID(ctx, id)
}

// Update replaces every field of costume id.
func (c *Costumes) Update(ctx context.Context, id int, costume models.Costume) (*models.Costume, error) {
	return c.t.update(ctx, id, costume)
}

// Delete removes costume id and returns the removed row. A costume still
// linked to an order cannot be deleted.
func (c *Costumes) Delete(ctx context.Context, id int) (*models.Costume, error) {
	return c.t.delete(ctx, id)
}
