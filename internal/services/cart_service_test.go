package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartServiceFixture(t *testing.T) (*fakeStore, CartService) {
	t.Helper()
	store := newFakeStore()
	svc := NewCartService(
		&fakeCartRepo{store: store},
		&fakeArticleRepo{store: store},
		&fakeCustomerRepo{store: store},
		nil,
	)
	return store, svc
}

func TestGetOrCreateCart(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	customer := store.addCustomer("Ana Torres")

	cart, err := svc.GetOrCreateCart(customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, cart.CustomerID)
	assert.Empty(t, cart.Lines)

	// A second call returns the same cart instead of creating another.
	again, err := svc.GetOrCreateCart(customer.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestGetOrCreateCart_UnknownCustomer(t *testing.T) {
	_, svc := newCartServiceFixture(t)
	_, err := svc.GetOrCreateCart(999999)
	require.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestAddArticle_SnapshotsPrice(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	cola := store.addIngredient("Cola", 3.0, 1.0, 10)
	customer := store.addCustomer("Bruno Paz")

	cart, err := svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: cola.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.InDelta(t, 3.0, cart.Lines[0].UnitPrice, 1e-9)

	// Raise the catalog price; the existing line keeps its snapshot when the
	// same article is added again.
	cola.SalePrice = 4.5
	cart, err = svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: cola.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.InDelta(t, 3.0, cart.Lines[0].UnitPrice, 1e-9)
}

func TestAddArticle_InactiveRejected(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	cola := store.addIngredient("Cola", 3.0, 1.0, 10)
	cola.IsActive = false
	customer := store.addCustomer("Clara Ruiz")

	_, err := svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: cola.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrArticleUnavailable)
}

func TestAddArticle_ElaborationOnlyRejected(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	flour := store.addIngredient("Flour", 0, 1.5, 1000)
	flour.Ingredient.ForElaborationOnly = true
	customer := store.addCustomer("Diego Sol")

	_, err := svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: flour.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrArticleUnavailable)
}

func TestAddArticle_UnknownArticle(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	customer := store.addCustomer("Elena Vidal")

	_, err := svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: 424242, Quantity: 1})
	require.ErrorIs(t, err, ErrArticleNotFound)
}

func TestSetLineQuantity(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	cola := store.addIngredient("Cola", 3.0, 1.0, 10)
	customer := store.addCustomer("Franco Gil")

	cart, err := svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: cola.ID, Quantity: 2})
	require.NoError(t, err)
	lineID := cart.Lines[0].ID

	cart, err = svc.SetLineQuantity(customer.ID, lineID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Lines[0].Quantity)

	// Zero quantity removes the line.
	cart, err = svc.SetLineQuantity(customer.ID, lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestSetLineQuantity_ForeignLineRejected(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	cola := store.addIngredient("Cola", 3.0, 1.0, 10)
	owner := store.addCustomer("Gina Mora")
	other := store.addCustomer("Hugo Leon")

	cart, err := svc.AddArticle(owner.ID, AddCartLineRequest{ArticleID: cola.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.GetOrCreateCart(other.ID)
	require.NoError(t, err)

	// Another customer cannot touch a line they do not own.
	_, err = svc.SetLineQuantity(other.ID, cart.Lines[0].ID, 5)
	require.ErrorIs(t, err, ErrCartLineNotFound)
	refreshed, err := svc.GetOrCreateCart(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.Lines[0].Quantity)
}

func TestRemoveLine(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	cola := store.addIngredient("Cola", 3.0, 1.0, 10)
	customer := store.addCustomer("Ines Rey")

	cart, err := svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: cola.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err = svc.RemoveLine(customer.ID, cart.Lines[0].ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestClearCart(t *testing.T) {
	store, svc := newCartServiceFixture(t)
	cola := store.addIngredient("Cola", 3.0, 1.0, 10)
	water := store.addIngredient("Water", 1.5, 0.3, 10)
	customer := store.addCustomer("Julia Soto")

	_, err := svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: cola.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddArticle(customer.ID, AddCartLineRequest{ArticleID: water.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(customer.ID))
	cart, err := svc.GetOrCreateCart(customer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	// Clearing a customer with no cart is a no-op.
	assert.NoError(t, svc.ClearCart(424242))
}
