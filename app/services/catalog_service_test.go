package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/app/services"
)

func TestCatalogList_CachesPerCategory(t *testing.T) {
	seller := seedUser("cat.seller@students.iiit.ac.in")
	lamp := seedProduct(seller.ID, "Desk lamp", 250)
	cache := newFakeCache()
	svc := services.NewCatalogService(newFakeProductRepo(lamp), newFakeUserRepo(seller), cache)
	ctx := context.Background()

	first, err := svc.List(ctx, models.CategoryElectronics)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from the cache.
	second, err := svc.List(ctx, models.CategoryElectronics)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, cache.sets)
}

func TestCatalogList_EnrichesSeller(t *testing.T) {
	seller := seedUser("list.seller@students.iiit.ac.in")
	seller.FirstName = "Asha"
	seller.AverageRating = 4.5
	seller.TotalReviews = 2
	lamp := seedProduct(seller.ID, "Desk lamp", 250)
	svc := services.NewCatalogService(newFakeProductRepo(lamp), newFakeUserRepo(seller), nil)

	out, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, out, 1)

	require.NotNil(t, out[0].Seller)
	assert.Equal(t, "Asha", out[0].Seller.FirstName)
	assert.Equal(t, seller.Email, out[0].Seller.Email)
	assert.Equal(t, 4.5, out[0].SellerRating)
	assert.Equal(t, 2, out[0].SellerReviews)

	// Display fields survive serialization, not just the raw seller id.
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"firstName":"Asha"`)
	assert.Contains(t, string(raw), seller.Email)
}

func TestCatalogList_MissingSellerIsNotFatal(t *testing.T) {
	lamp := seedProduct(primitive.NewObjectID(), "Orphan lamp", 100)
	svc := services.NewCatalogService(newFakeProductRepo(lamp), newFakeUserRepo(), nil)

	out, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Seller)
}

func TestCatalogList_NilCache(t *testing.T) {
	seller := seedUser("nocache.seller@students.iiit.ac.in")
	lamp := seedProduct(seller.ID, "Desk lamp", 250)
	svc := services.NewCatalogService(newFakeProductRepo(lamp), newFakeUserRepo(seller), nil)

	out, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestCatalogList_UnknownCategory(t *testing.T) {
	svc := services.NewCatalogService(newFakeProductRepo(), newFakeUserRepo(), nil)

	_, err := svc.List(context.Background(), "vehicles")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestCatalogList_EmptyIsNotNil(t *testing.T) {
	svc := services.NewCatalogService(newFakeProductRepo(), newFakeUserRepo(), nil)

	out, err := svc.List(context.Background(), models.CategoryGrocery)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestCatalogGet_EnrichesSeller(t *testing.T) {
	seller := seedUser("enrich.seller@students.iiit.ac.in")
	seller.AverageRating = 4.5
	seller.TotalReviews = 2
	lamp := seedProduct(seller.ID, "Desk lamp", 250)
	svc := services.NewCatalogService(newFakeProductRepo(lamp), newFakeUserRepo(seller), nil)

	view, err := svc.Get(context.Background(), lamp.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, lamp.ID, view.ID)
	require.NotNil(t, view.Seller)
	assert.Equal(t, seller.ID, view.Seller.ID)
	assert.Equal(t, 4.5, view.SellerRating)
	assert.Equal(t, 2, view.SellerReviews)
}

func TestCatalogGet_MissingSellerIsNotFatal(t *testing.T) {
	lamp := seedProduct(primitive.NewObjectID(), "Orphan lamp", 100)
	svc := services.NewCatalogService(newFakeProductRepo(lamp), newFakeUserRepo(), nil)

	view, err := svc.Get(context.Background(), lamp.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, view.Seller)
}

func TestCatalogCreate(t *testing.T) {
	seller := seedUser("create.seller@students.iiit.ac.in")
	products := newFakeProductRepo()
	cache := newFakeCache()
	svc := services.NewCatalogService(products, newFakeUserRepo(seller), cache)
	ctx := context.Background()

	// Warm the cache, then create: the category page must be invalidated.
	_, err := svc.List(ctx, models.CategoryFurniture)
	require.NoError(t, err)

	created, err := svc.Create(ctx, seller.ID.Hex(), services.ProductInput{
		Name:        "Bookshelf",
		Price:       800,
		Description: "Five shelves, good condition",
		Category:    models.CategoryFurniture,
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, seller.ID, created.SellerID)

	listed, err := svc.List(ctx, models.CategoryFurniture)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCatalogCreate_Invalid(t *testing.T) {
	seller := seedUser("badcreate.seller@students.iiit.ac.in")
	svc := services.NewCatalogService(newFakeProductRepo(), newFakeUserRepo(seller), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, seller.ID.Hex(), services.ProductInput{
		Name: "Mystery box", Price: 10, Description: "?", Category: "vehicles",
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Create(ctx, seller.ID.Hex(), services.ProductInput{
		Name: "Free stuff", Price: 0, Description: "gratis", Category: models.CategoryOther,
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Create(ctx, primitive.NewObjectID().Hex(), services.ProductInput{
		Name: "Ghost listing", Price: 10, Description: "?", Category: models.CategoryOther,
	})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
