//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/costume-shop/internal/testdb"
	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/runtime"
	"github.com/marshallshelly/costume-shop/pkg/store"
)

var pool *runtime.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	pg, err := testdb.Start(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	pool, err = pg.Connect(ctx)
	if err != nil {
		_ = pg.Terminate(ctx)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := m.Run()

	pool.Close()
	_ = pg.Terminate(ctx)
	os.Exit(code)
}

// fresh resets the schema and returns a new store.
func fresh(t *testing.T) *store.Store {
	t.Helper()
	testdb.Reset(t, pool)
	st, err := store.New(pool)
	require.NoError(t, err)
	return st
}

var (
	ballroomGown  = models.Costume{Name: "ballroom gown", Category: models.CategoryAdult, Gender: models.GenderFemale, Size: "M", Type: "dress", StockCount: 2, Price: 99.5}
	buttlessChaps = models.Costume{Name: "buttless chaps", Category: models.CategoryAdult, Gender: models.GenderMale, Size: "L", Type: "trousers", StockCount: 5, Price: 24.99}
	bonnet        = models.Costume{Name: "bonnet", Category: models.CategoryChild, Gender: models.GenderFemale, Size: "S", Type: "hat", StockCount: 8, Price: 14.99}

	bilbo = models.Customer{FullName: "Bilbo Baggins", Email: "bilbo@shire.me", Password: "x"}
	drogo = models.Customer{FullName: "Drogo Baggins", Email: "drogo@shire.me", Password: "y"}
)

func date(s string) *time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedCostumes(t *testing.T, st *store.Store, costumes ...models.Costume) []models.Costume {
	t.Helper()
	out := make([]models.Costume, len(costumes))
	for i, c := range costumes {
		created, err := st.Costumes.Create(t.Context(), c)
		require.NoError(t, err)
		out[i] = *created
	}
	return out
}

func TestCostumes_CreateThenGet(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	created, err := st.Costumes.Create(ctx, bonnet)
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	got, err := st.Costumes.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "bonnet", got.Name)

	want := bonnet
	want.ID = 1
	assert.Equal(t, want, *got)
}

func TestCostumes_AllIsInsertionOrdered(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	empty, err := st.Costumes.All(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	created := seedCostumes(t, st, ballroomGown, buttlessChaps, bonnet)

	all, err := st.Costumes.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, all)
}

func TestCostumes_UpdateIsolatesRow(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()
	created := seedCostumes(t, st, ballroomGown, bonnet)

	replacement := models.Costume{Name: "sou'wester", Category: models.CategoryPet, Gender: models.GenderUnisex, Size: "XS", Type: "hat", StockCount: 1, Price: 3}
	updated, err := st.Costumes.Update(ctx, created[1].ID, replacement)
	require.NoError(t, err)

	replacement.ID = created[1].ID
	assert.Equal(t, replacement, *updated)

	got, err := st.Costumes.ByID(ctx, created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, replacement, *got)

	other, err := st.Costumes.ByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0], *other)
}

func TestCostumes_Delete(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()
	created := seedCostumes(t, st, ballroomGown, bonnet)

	deleted, err := st.Costumes.Delete(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0], *deleted)

	all, err := st.Costumes.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, created[1:], all)

	_, err = st.Costumes.ByID(ctx, created[0].ID)
	assert.ErrorIs(t, err, runtime.ErrNotFound)
}

func TestMissingIDsAreNotFound(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	_, err := st.Costumes.ByID(ctx, 42)
	assert.ErrorIs(t, err, runtime.ErrNotFound)
	assert.Contains(t, err.Error(), "42")

	_, err = st.Costumes.Update(ctx, 42, bonnet)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = st.Costumes.Delete(ctx, 42)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = st.Customers.ByID(ctx, 7)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = st.Customers.Update(ctx, 7, bilbo)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = st.Customers.Delete(ctx, 7)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = st.Orders.ByID(ctx, 3)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = st.Orders.Update(ctx, 3, models.Order{Status: models.StatusPending, CustomerID: 1})
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = st.Orders.Delete(ctx, 3)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	_, err = st.Customers.ByOrderID(ctx, 3)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	var nf *runtime.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Entity)
	assert.Equal(t, 3, nf.ID)
}

func TestConstraintViolations(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	t.Run("category out of range", func(t *testing.T) {
		bad := bonnet
		bad.Category = "toddler"
		_, err := st.Costumes.Create(ctx, bad)
		assert.True(t, runtime.IsConstraintViolation(err))
	})

	t.Run("size too long", func(t *testing.T) {
		bad := bonnet
		bad.Size = "extra extra large"
		_, err := st.Costumes.Create(ctx, bad)
		assert.ErrorIs(t, err, runtime.ErrValueTooLong)

		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "22001", pgErr.Code)
	})

	t.Run("email shape", func(t *testing.T) {
		bad := bilbo
		bad.Email = "bilbo-at-shire"
		_, err := st.Customers.Create(ctx, bad)
		assert.ErrorIs(t, err, runtime.ErrCheckViolation)

		var ce *runtime.ConstraintError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "customers_email_check", ce.Constraint)
	})

	t.Run("order for missing customer", func(t *testing.T) {
		_, err := st.Orders.Create(ctx, models.Order{Status: models.StatusPending, CustomerID: 999})
		assert.ErrorIs(t, err, runtime.ErrForeignKeyViolation)
	})

	t.Run("nothing was written", func(t *testing.T) {
		costumes, err := st.Costumes.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, costumes)

		customers, err := st.Customers.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, customers)
	})
}

func TestCustomersAndOrders(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	customer, err := st.Customers.Create(ctx, bilbo)
	require.NoError(t, err)
	assert.Equal(t, 1, customer.ID)
	assert.Equal(t, "x", customer.Password)

	order, err := st.Orders.Create(ctx, models.Order{DatePlaced: date("2005-05-01"), Status: models.StatusPending, CustomerID: customer.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, order.ID)
	require.NotNil(t, order.DatePlaced)
	assert.True(t, order.DatePlaced.Equal(*date("2005-05-01")))

	orders, err := st.Orders.ByCustomerID(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	placedBy, err := st.Customers.ByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, customer, placedBy)

	t.Run("customer without orders", func(t *testing.T) {
		other, err := st.Customers.Create(ctx, drogo)
		require.NoError(t, err)
		_, err = st.Orders.ByCustomerID(ctx, other.ID)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := st.Orders.ByCustomerID(ctx, 404)
		assert.ErrorIs(t, err, runtime.ErrNotFound)
	})

	t.Run("null date placed", func(t *testing.T) {
		undated, err := st.Orders.Create(ctx, models.Order{Status: models.StatusCancelled, CustomerID: customer.ID})
		require.NoError(t, err)
		assert.Nil(t, undated.DatePlaced)

		orders, err := st.Orders.ByCustomerID(ctx, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{order.ID, undated.ID}, []int{orders[0].ID, orders[1].ID})
	})

	t.Run("any status transition", func(t *testing.T) {
		updated, err := st.Orders.Update(ctx, order.ID, models.Order{DatePlaced: order.DatePlaced, Status: models.StatusRefunded, CustomerID: customer.ID})
		require.NoError(t, err)
		assert.Equal(t, models.StatusRefunded, updated.Status)

		updated, err = st.Orders.Update(ctx, order.ID, models.Order{Status: models.StatusPending, CustomerID: customer.ID})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, updated.Status)
		assert.Nil(t, updated.DatePlaced)
	})

	t.Run("customer with orders cannot be deleted", func(t *testing.T) {
		_, err := st.Customers.Delete(ctx, customer.ID)
		assert.ErrorIs(t, err, runtime.ErrForeignKeyViolation)

		still, err := st.Customers.ByID(ctx, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, customer, still)
	})
}

func TestOrderCostumes(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	costumes := seedCostumes(t, st, ballroomGown, buttlessChaps)
	customer, err := st.Customers.Create(ctx, bilbo)
	require.NoError(t, err)
	order, err := st.Orders.Create(ctx, models.Order{DatePlaced: date("2005-05-01"), Status: models.StatusPending, CustomerID: customer.ID})
	require.NoError(t, err)

	link, err := st.OrderCostumes.Add(ctx, costumes[0].ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCostume{ID: 1, OrderID: order.ID, CostumeID: costumes[0].ID}, *link)

	_, err = st.OrderCostumes.Add(ctx, costumes[1].ID, order.ID)
	require.NoError(t, err)

	inOrder, err := st.OrderCostumes.CostumesInOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, inOrder, 2)
	assert.Equal(t, models.CostumeInOrder{
		OrderID: order.ID, CostumeID: costumes[0].ID,
		Name: "ballroom gown", Category: models.CategoryAdult, Gender: models.GenderFemale,
		Size: "M", Type: "dress", StockCount: 2, Price: 99.5,
	}, inOrder[0])
	assert.Equal(t, costumes[1].ID, inOrder[1].CostumeID)

	ofCostume, err := st.OrderCostumes.OrdersOfCostume(ctx, costumes[0].ID)
	require.NoError(t, err)
	require.Len(t, ofCostume, 1)
	assert.Equal(t, order.ID, ofCostume[0].OrderID)
	assert.Equal(t, models.StatusPending, ofCostume[0].Status)
	assert.Equal(t, customer.ID, ofCostume[0].CustomerID)

	require.NoError(t, st.OrderCostumes.Remove(ctx, costumes[0].ID, order.ID))

	inOrder, err = st.OrderCostumes.CostumesInOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, inOrder, 1)
	assert.Equal(t, costumes[1].ID, inOrder[0].CostumeID)

	t.Run("removing an absent pair is a no-op", func(t *testing.T) {
		assert.NoError(t, st.OrderCostumes.Remove(ctx, costumes[0].ID, order.ID))
	})

	t.Run("linked rows cannot be deleted", func(t *testing.T) {
		_, err := st.Costumes.Delete(ctx, costumes[1].ID)
		assert.ErrorIs(t, err, runtime.ErrForeignKeyViolation)

		_, err = st.Orders.Delete(ctx, order.ID)
		assert.ErrorIs(t, err, runtime.ErrForeignKeyViolation)
	})

	t.Run("costume without links", func(t *testing.T) {
		spare := seedCostumes(t, st, bonnet)[0]
		orders, err := st.OrderCostumes.OrdersOfCostume(ctx, spare.ID)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestOrderCostumes_DuplicatesAndMissingIDs(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	costume := seedCostumes(t, st, bonnet)[0]
	customer, err := st.Customers.Create(ctx, bilbo)
	require.NoError(t, err)
	order, err := st.Orders.Create(ctx, models.Order{Status: models.StatusPending, CustomerID: customer.ID})
	require.NoError(t, err)

	_, err = st.OrderCostumes.Add(ctx, 99, order.ID)
	var nf *runtime.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "costume", nf.Entity)
	assert.Equal(t, 99, nf.ID)

	_, err = st.OrderCostumes.Add(ctx, costume.ID, 77)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "order", nf.Entity)

	assert.ErrorIs(t, st.OrderCostumes.Remove(ctx, 99, order.ID), runtime.ErrNotFound)
	assert.ErrorIs(t, st.OrderCostumes.Remove(ctx, costume.ID, 77), runtime.ErrNotFound)

	_, err = st.OrderCostumes.CostumesInOrder(ctx, 77)
	assert.ErrorIs(t, err, runtime.ErrNotFound)
	_, err = st.OrderCostumes.OrdersOfCostume(ctx, 99)
	assert.ErrorIs(t, err, runtime.ErrNotFound)

	inOrder, err := st.OrderCostumes.CostumesInOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, inOrder, "failed adds must not write links")

	first, err := st.OrderCostumes.Add(ctx, costume.ID, order.ID)
	require.NoError(t, err)
	second, err := st.OrderCostumes.Add(ctx, costume.ID, order.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	inOrder, err = st.OrderCostumes.CostumesInOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, inOrder, 2)

	require.NoError(t, st.OrderCostumes.Remove(ctx, costume.ID, order.ID))
	inOrder, err = st.OrderCostumes.CostumesInOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, inOrder, "remove drops every duplicate")
}

func TestScenario_LinkOrdering(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	seedCostumes(t, st, ballroomGown, bonnet)
	_, err := st.Customers.Create(ctx, bilbo)
	require.NoError(t, err)
	_, err = st.Orders.Create(ctx, models.Order{DatePlaced: date("2005-05-01"), Status: models.StatusPending, CustomerID: 1})
	require.NoError(t, err)

	_, err = st.OrderCostumes.Add(ctx, 1, 1)
	require.NoError(t, err)
	_, err = st.OrderCostumes.Add(ctx, 2, 1)
	require.NoError(t, err)

	ids := func() []int {
		costumes, err := st.OrderCostumes.CostumesInOrder(ctx, 1)
		require.NoError(t, err)
		out := make([]int, len(costumes))
		for i, c := range costumes {
			out[i] = c.CostumeID
		}
		return out
	}
	assert.Equal(t, []int{1, 2}, ids())

	require.NoError(t, st.OrderCostumes.Remove(ctx, 1, 1))
	assert.Equal(t, []int{2}, ids())
}

func TestConcurrentAddAndDelete(t *testing.T) {
	st := fresh(t)
	ctx := t.Context()

	customer, err := st.Customers.Create(ctx, bilbo)
	require.NoError(t, err)
	order, err := st.Orders.Create(ctx, models.Order{Status: models.StatusPending, CustomerID: customer.ID})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		costume := seedCostumes(t, st, bonnet)[0]

		var wg sync.WaitGroup
		var addErr, delErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, addErr = st.OrderCostumes.Add(ctx, costume.ID, order.ID)
		}()
		go func() {
			defer wg.Done()
			_, delErr = st.Costumes.Delete(ctx, costume.ID)
		}()
		wg.Wait()

		// exactly one side wins and no dangling link survives
		if addErr == nil {
			assert.ErrorIs(t, delErr, runtime.ErrForeignKeyViolation)
		} else {
			assert.NoError(t, delErr)
			assert.True(t, errors.Is(addErr, runtime.ErrNotFound) || errors.Is(addErr, runtime.ErrForeignKeyViolation), addErr)
		}
	}
}
