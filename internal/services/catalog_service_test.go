package services

import (
	"testing"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogServiceFixture(t *testing.T) (*fakeStore, CatalogService) {
	t.Helper()
	store := newFakeStore()
	svc := NewCatalogService(&fakeArticleRepo{store: store}, nil, &fakeTransactor{store: store})
	return store, svc
}

func TestCreateIngredient(t *testing.T) {
	_, svc := newCatalogServiceFixture(t)

	article, err := svc.CreateIngredient(CreateIngredientRequest{
		Name:            "Tomato",
		SalePrice:       2.0,
		PurchasePrice:   0.8,
		CurrentStock:    500,
		MinStock:        50,
		MeasurementUnit: "g",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ArticleTypeIngredient, article.Type)
	assert.True(t, article.IsActive)
	require.NotNil(t, article.Ingredient)
	assert.InDelta(t, 500, article.Ingredient.CurrentStock, 1e-9)
}

func TestCreateIngredient_ElaborationOnlyZeroesSalePrice(t *testing.T) {
	_, svc := newCatalogServiceFixture(t)

	article, err := svc.CreateIngredient(CreateIngredientRequest{
		Name:               "Flour",
		SalePrice:          9.99,
		PurchasePrice:      1.5,
		MeasurementUnit:    "g",
		ForElaborationOnly: true,
	})
	require.NoError(t, err)
	assert.Zero(t, article.SalePrice)
	assert.True(t, article.Ingredient.ForElaborationOnly)
}

func TestCreateIngredient_SellableNeedsSalePrice(t *testing.T) {
	_, svc := newCatalogServiceFixture(t)

	_, err := svc.CreateIngredient(CreateIngredientRequest{
		Name:            "Cola",
		SalePrice:       0,
		PurchasePrice:   1.0,
		MeasurementUnit: "unit",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateIngredient_DuplicateName(t *testing.T) {
	store, svc := newCatalogServiceFixture(t)
	store.addIngredient("Cola", 3.0, 1.0, 10)

	_, err := svc.CreateIngredient(CreateIngredientRequest{
		Name:            "Cola",
		SalePrice:       3.0,
		PurchasePrice:   1.0,
		MeasurementUnit: "unit",
	})
	require.ErrorIs(t, err, repositories.ErrDuplicateKey)
}

func TestCreateManufactured_PersistsRecipe(t *testing.T) {
	store, svc := newCatalogServiceFixture(t)
	flour := store.addIngredient("Flour", 0, 1.5, 1000)
	cheese := store.addIngredient("Cheese", 0, 4.0, 400)

	article, err := svc.CreateManufactured(CreateManufacturedRequest{
		Name:      "Margherita Pizza",
		SalePrice: 12.0,
		Recipe: []RecipeLineRequest{
			{IngredientID: flour.ID, Quantity: 300},
			{IngredientID: cheese.ID, Quantity: 250},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ArticleTypeManufactured, article.Type)
	require.NotNil(t, article.Manufactured)
	require.Len(t, article.Manufactured.Recipe, 2)
	assert.Equal(t, flour.ID, article.Manufactured.Recipe[0].IngredientID)
	assert.InDelta(t, 300, article.Manufactured.Recipe[0].Quantity, 1e-9)
}

func TestCreateManufactured_RecipeValidation(t *testing.T) {
	store, svc := newCatalogServiceFixture(t)
	flour := store.addIngredient("Flour", 0, 1.5, 1000)
	pizza := store.addManufactured("Pizza", 12.0,
		models.RecipeLine{IngredientID: flour.ID, Quantity: 300},
	)

	tests := []struct {
		name    string
		recipe  []RecipeLineRequest
		wantErr error
	}{
		{
			"empty recipe",
			nil,
			ErrRecipeMissing,
		},
		{
			"non-positive quantity",
			[]RecipeLineRequest{{IngredientID: flour.ID, Quantity: 0}},
			ErrValidation,
		},
		{
			"duplicate ingredient",
			[]RecipeLineRequest{
				{IngredientID: flour.ID, Quantity: 100},
				{IngredientID: flour.ID, Quantity: 200},
			},
			ErrValidation,
		},
		{
			"unknown ingredient",
			[]RecipeLineRequest{{IngredientID: 424242, Quantity: 100}},
			ErrIngredientNotFound,
		},
		{
			"manufactured article in recipe",
			[]RecipeLineRequest{{IngredientID: pizza.ID, Quantity: 1}},
			ErrValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateManufactured(CreateManufacturedRequest{
				Name:      "Calzone " + tc.name,
				SalePrice: 10.0,
				Recipe:    tc.recipe,
			})
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUpdateIngredient(t *testing.T) {
	store, svc := newCatalogServiceFixture(t)
	cola := store.addIngredient("Cola", 3.0, 1.0, 10)

	updated, err := svc.UpdateIngredient(cola.ID, UpdateIngredientRequest{
		Name:            "Cola 500ml",
		SalePrice:       3.5,
		PurchasePrice:   1.2,
		MinStock:        5,
		MeasurementUnit: "unit",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cola 500ml", updated.Name)
	assert.InDelta(t, 3.5, updated.SalePrice, 1e-9)
	// Stock is untouched: updates never bypass the movement ledger.
	assert.InDelta(t, 10, updated.Ingredient.CurrentStock, 1e-9)
}

func TestUpdateIngredient_WrongType(t *testing.T) {
	store, svc := newCatalogServiceFixture(t)
	flour := store.addIngredient("Flour", 0, 1.5, 1000)
	pizza := store.addManufactured("Pizza", 12.0,
		models.RecipeLine{IngredientID: flour.ID, Quantity: 300},
	)

	_, err := svc.UpdateIngredient(pizza.ID, UpdateIngredientRequest{
		Name: "Pizza", SalePrice: 12, PurchasePrice: 1, MeasurementUnit: "unit",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateManufactured_NilRecipeKeepsExisting(t *testing.T) {
	store, svc := newCatalogServiceFixture(t)
	flour := store.addIngredient("Flour", 0, 1.5, 1000)
	pizza := store.addManufactured("Pizza", 12.0,
		models.RecipeLine{IngredientID: flour.ID, Quantity: 300},
	)

	updated, err := svc.UpdateManufactured(pizza.ID, UpdateManufacturedRequest{
		Name:      "Pizza Grande",
		SalePrice: 15.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pizza Grande", updated.Name)
	require.Len(t, updated.Manufactured.Recipe, 1)
	assert.InDelta(t, 300, updated.Manufactured.Recipe[0].Quantity, 1e-9)
}

func TestUpdateManufactured_ReplacesRecipe(t *testing.T) {
	store, svc := newCatalogServiceFixture(t)
	flour := store.addIngredient("Flour", 0, 1.5, 1000)
	cheese := store.addIngredient("Cheese", 0, 4.0, 400)
	pizza := store.addManufactured("Pizza", 12.0,
		models.RecipeLine{IngredientID: flour.ID, Quantity: 300},
	)

	updated, err := svc.UpdateManufactured(pizza.ID, UpdateManufacturedRequest{
		Name:      "Pizza",
		SalePrice: 12.0,
		Recipe: []RecipeLineRequest{
			{IngredientID: flour.ID, Quantity: 280},
			{IngredientID: cheese.ID, Quantity: 200},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Manufactured.Recipe, 2)
}

func TestSetArticleActive(t *testing.T) {
	store, svc := newCatalogServiceFixture(t)
	cola := store.addIngredient("Cola", 3.0, 1.0, 10)

	require.NoError(t, svc.SetArticleActive(cola.ID, false))
	article, err := svc.GetArticleByID(cola.ID)
	require.NoError(t, err)
	assert.False(t, article.IsActive)

	require.NoError(t, svc.SetArticleActive(cola.ID, true))
	article, err = svc.GetArticleByID(cola.ID)
	require.NoError(t, err)
	assert.True(t, article.IsActive)
}

func TestDeleteArticle_NotFound(t *testing.T) {
	_, svc := newCatalogServiceFixture(t)
	require.ErrorIs(t, svc.DeleteArticle(424242), ErrArticleNotFound)
}
