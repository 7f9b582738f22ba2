package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/registry"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// OrderCostumes is the link adapter between orders and costumes.
//
// Add and Remove check both ids and write inside one transaction, holding a
// FOR SHARE lock on the costume and order rows, so neither can be deleted
// between the check and the write. The same pair may be linked repeatedly.
type OrderCostumes struct {
	db *runtime.DB

	scanLink    pgx.RowToFunc[models.OrderCostume]
	scanCostume pgx.RowToFunc[models.CostumeInOrder]
	scanOrder   pgx.RowToFunc[models.CostumeOrder]

	lockCostume     string
	lockOrder       string
	costumeExists   string
	orderExists     string
	insert          string
	remove          string
	costumesInOrder string
	ordersOfCostume string
}

func newOrderCostumes(db *runtime.DB, reg *registry.Registry) (*OrderCostumes, error) {
	links, err := reg.Get(models.OrderCostume{})
	if err != nil {
		return nil, err
	}
	costumes, err := reg.Get(models.Costume{})
	if err != nil {
		return nil, err
	}
	orders, err := reg.Get(models.Order{})
	if err != nil {
		return nil, err
	}

	parser := schema.NewParser()
	inOrder, err := parser.Parse(models.CostumeInOrder{})
	if err != nil {
		return nil, err
	}
	ofCostume, err := parser.Parse(models.CostumeOrder{})
	if err != nil {
		return nil, err
	}

	costumeCols := make([]string, 0, len(costumes.Columns))
	for _, col := range costumes.Columns {
		if !costumes.IsPrimaryKey(col.Name) {
			costumeCols = append(costumeCols, costumes.Name+"."+col.Name)
		}
	}
	orderCols := make([]string, 0, len(orders.Columns))
	for _, col := range orders.Columns {
		if !orders.IsPrimaryKey(col.Name) {
			orderCols = append(orderCols, orders.Name+"."+col.Name)
		}
	}

	return &OrderCostumes{
		db:          db,
		scanLink:    rowTo[models.OrderCostume](links),
		scanCostume: rowTo[models.CostumeInOrder](inOrder),
		scanOrder:   rowTo[models.CostumeOrder](ofCostume),

		lockCostume:   fmt.Sprintf("SELECT id FROM %s WHERE id = $1 FOR SHARE", costumes.Name),
		lockOrder:     fmt.Sprintf("SELECT id FROM %s WHERE id = $1 FOR SHARE", orders.Name),
		costumeExists: fmt.Sprintf("SELECT id FROM %s WHERE id = $1", costumes.Name),
		orderExists:   fmt.Sprintf("SELECT id FROM %s WHERE id = $1", orders.Name),
		insert: fmt.Sprintf("INSERT INTO %s (order_id, costume_id) VALUES ($1, $2) RETURNING id, order_id, costume_id",
			links.Name),
		remove: fmt.Sprintf("DELETE FROM %s WHERE costume_id = $1 AND order_id = $2",
			links.Name),
		costumesInOrder: fmt.Sprintf(
			"SELECT %[1]s.order_id, %[1]s.costume_id, %[2]s FROM %[1]s JOIN %[3]s ON %[3]s.id = %[1]s.costume_id WHERE %[1]s.order_id = $1 ORDER BY %[1]s.id",
			links.Name, strings.Join(costumeCols, ", "), costumes.Name),
		ordersOfCostume: fmt.Sprintf(
			"SELECT %[1]s.order_id, %[1]s.costume_id, %[2]s FROM %[1]s JOIN %[3]s ON %[3]s.id = %[1]s.order_id WHERE %[1]s.costume_id = $1 ORDER BY %[1]s.id",
			links.Name, strings.Join(orderCols, ", "), orders.Name),
	}, nil
}

// Add links costume costumeID to order orderID and returns the new link. It
// fails with a NotFoundError naming the missing id, writing nothing, when
// either does not exist.
func (l *OrderCostumes) Add(ctx context.Context, costumeID, orderID int) (*models.OrderCostume, error) {
	var link *models.OrderCostume
	err := l.db.InTx(ctx, func(q runtime.Querier) error {
		if err := l.lockBoth(ctx, q, "link", costumeID, orderID); err != nil {
			return err
		}
		created, err := queryOne(ctx, q, l.scanLink, l.insert, orderID, costumeID)
		if err != nil {
			return err
		}
		link = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// Remove deletes every link between costumeID and orderID. Removing a pair
// that is not linked is a no-op; unknown ids are a NotFoundError.
func (l *OrderCostumes) Remove(ctx context.Context, costumeID, orderID int) error {
	return l.db.InTx(ctx, func(q runtime.Querier) error {
		if err := l.lockBoth(ctx, q, "unlink", costumeID, orderID); err != nil {
			return err
		}
		if _, err := q.Exec(ctx, l.remove, costumeID, orderID); err != nil {
			return runtime.Classify(l.remove, err)
		}
		return nil
	})
}

// CostumesInOrder returns the costumes linked to orderID, one entry per link,
// in link order.
func (l *OrderCostumes) CostumesInOrder(ctx context.Context, orderID int) ([]models.CostumeInOrder, error) {
	if err := l.exists(ctx, l.db, l.orderExists, "list costumes of", "order", orderID); err != nil {
		return nil, err
	}
	return queryMany(ctx, l.db, l.scanCostume, l.costumesInOrder, orderID)
}

// OrdersOfCostume returns the orders linked to costumeID, one entry per link,
// in link order.
func (l *OrderCostumes) OrdersOfCostume(ctx context.Context, costumeID int) ([]models.CostumeOrder, error) {
	if err := l.exists(ctx, l.db, l.costumeExists, "list orders of", "costume", costumeID); err != nil {
		return nil, err
	}
	return queryMany(ctx, l.db, l.scanOrder, l.ordersOfCostume, costumeID)
}

func (l *OrderCostumes) lockBoth(ctx context.Context, q runtime.Querier, op string, costumeID, orderID int) error {
	if err := l.exists(ctx, q, l.lockCostume, op, "costume", costumeID); err != nil {
		return err
	}
	return l.exists(ctx, q, l.lockOrder, op, "order", orderID)
}

func (l *OrderCostumes) exists(ctx context.Context, q runtime.Querier, sql, op, entity string, id int) error {
	var found int
	err := q.QueryRow(ctx, sql, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return runtime.NotFound(op, entity, id)
	}
	if err != nil {
		return runtime.Classify(sql, err)
	}
	return nil
}
