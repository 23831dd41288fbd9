package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockServiceFixture(t *testing.T) (*fakeStore, *fakeMovementRepo, StockService) {
	t.Helper()
	store := newFakeStore()
	movementRepo := &fakeMovementRepo{store: store}
	svc := NewStockService(&fakeArticleRepo{store: store}, movementRepo, nil, &fakeTransactor{store: store})
	return store, movementRepo, svc
}

func TestCheckSufficient(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 400)

	sufficient, available, name, err := svc.CheckSufficient(nil, cheese.ID, 400)
	require.NoError(t, err)
	assert.True(t, sufficient)
	assert.InDelta(t, 400, available, 1e-9)
	assert.Equal(t, "Cheese", name)

	sufficient, _, _, err = svc.CheckSufficient(nil, cheese.ID, 400.01)
	require.NoError(t, err)
	assert.False(t, sufficient)
}

func TestCheckSufficient_InactiveIngredientIsInsufficientNotError(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 400)
	cheese.IsActive = false

	// An inactive ingredient can never satisfy demand, but that is a stock
	// answer, not a failure of the check itself.
	sufficient, available, name, err := svc.CheckSufficient(nil, cheese.ID, 1)
	require.NoError(t, err)
	assert.False(t, sufficient)
	assert.InDelta(t, 400, available, 1e-9)
	assert.Equal(t, "Cheese", name)
}

func TestCheckSufficient_UnknownIngredient(t *testing.T) {
	_, _, svc := newStockServiceFixture(t)
	_, _, _, err := svc.CheckSufficient(nil, 424242, 1)
	require.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestDeduct_RecordsSaleMovement(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 400)
	userID := int64(5)
	orderID := int64(77)

	newStock, err := svc.Deduct(nil, cheese.ID, 150, &userID, &orderID, "order creation")
	require.NoError(t, err)
	assert.InDelta(t, 250, newStock, 1e-9)

	require.Len(t, store.movements, 1)
	m := store.movements[0]
	assert.Equal(t, MovementTypeSale, m.MovementType)
	assert.InDelta(t, -150, m.QuantityChange, 1e-9)
	assert.InDelta(t, 400, m.StockBefore, 1e-9)
	assert.InDelta(t, 250, m.StockAfter, 1e-9)
	require.NotNil(t, m.OrderID)
	assert.Equal(t, orderID, *m.OrderID)
	require.NotNil(t, m.Reason)
	assert.Equal(t, "order creation", *m.Reason)
}

func TestDeduct_InsufficientStock(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 400)

	_, err := svc.Deduct(nil, cheese.ID, 500, nil, nil, "order creation")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, cheese.ID, stockErr.IngredientID)
	assert.Equal(t, "Cheese", stockErr.IngredientName)
	assert.InDelta(t, 500, stockErr.Required, 1e-9)
	assert.InDelta(t, 400, stockErr.Available, 1e-9)
	assert.Empty(t, store.movements)
	assert.InDelta(t, 400, store.stockOf(cheese.ID), 1e-9)
}

func TestDeduct_NonPositiveQuantity(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 400)

	_, err := svc.Deduct(nil, cheese.ID, 0, nil, nil, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestReplenish(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 100)

	movement, err := svc.Replenish(ReplenishStockRequest{
		IngredientID: cheese.ID,
		Quantity:     250,
		Reason:       "weekly supplier delivery",
	})
	require.NoError(t, err)

	// Defaults to a purchase movement.
	assert.Equal(t, MovementTypePurchase, movement.MovementType)
	assert.InDelta(t, 250, movement.QuantityChange, 1e-9)
	assert.InDelta(t, 100, movement.StockBefore, 1e-9)
	assert.InDelta(t, 350, movement.StockAfter, 1e-9)
	assert.InDelta(t, 350, store.stockOf(cheese.ID), 1e-9)
}

func TestReplenish_Adjustment(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 100)

	movement, err := svc.Replenish(ReplenishStockRequest{
		IngredientID: cheese.ID,
		Quantity:     10,
		MovementType: MovementTypeAdjustment,
		Reason:       "inventory recount",
	})
	require.NoError(t, err)
	assert.Equal(t, MovementTypeAdjustment, movement.MovementType)
}

func TestReplenish_RejectsSaleType(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 100)

	_, err := svc.Replenish(ReplenishStockRequest{
		IngredientID: cheese.ID,
		Quantity:     10,
		MovementType: MovementTypeSale,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestReplenish_RollsBackWhenMovementFails(t *testing.T) {
	store, movementRepo, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 100)
	movementRepo.failOnCall = 1

	_, err := svc.Replenish(ReplenishStockRequest{IngredientID: cheese.ID, Quantity: 50})
	require.Error(t, err)
	assert.InDelta(t, 100, store.stockOf(cheese.ID), 1e-9)
	assert.Empty(t, store.movements)
}

func TestGetMovements_Filters(t *testing.T) {
	store, _, svc := newStockServiceFixture(t)
	cheese := store.addIngredient("Cheese", 0, 4.0, 400)
	flour := store.addIngredient("Flour", 0, 1.5, 1000)
	orderID := int64(9)

	_, err := svc.Deduct(nil, cheese.ID, 100, nil, &orderID, "order creation")
	require.NoError(t, err)
	_, err = svc.Deduct(nil, flour.ID, 200, nil, &orderID, "order creation")
	require.NoError(t, err)
	_, err = svc.Replenish(ReplenishStockRequest{IngredientID: cheese.ID, Quantity: 50})
	require.NoError(t, err)

	movements, total, err := svc.GetMovements(StockMovementFilters{ArticleID: &cheese.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, movements, 2)

	saleType := MovementTypeSale
	movements, total, err = svc.GetMovements(StockMovementFilters{OrderID: &orderID, MovementType: &saleType})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, m := range movements {
		assert.Equal(t, MovementTypeSale, m.MovementType)
	}
}
