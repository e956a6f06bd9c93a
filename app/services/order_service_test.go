package services_test

import (
	"context"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/event"
)

func newOrderFixture(t *testing.T) (*services.OrderService, *fakeOrderRepo, *models.User, *models.User, *models.Product) {
	t.Helper()
	buyer := seedUser("buyer@students.iiit.ac.in")
	seller := seedUser("seller@students.iiit.ac.in")
	product := seedProduct(seller.ID, "Desk lamp", 250)

	orders := newFakeOrderRepo()
	svc := services.NewOrderService(orders,
		newFakeProductRepo(product),
		newFakeUserRepo(buyer, seller))
	return svc, orders, buyer, seller, product
}

func TestCheckout(t *testing.T) {
	svc, _, buyer, seller, product := newOrderFixture(t)

	out, err := svc.Checkout(context.Background(), buyer.ID.Hex(), []services.CheckoutItem{
		{ProductID: product.ID.Hex(), Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	o := out[0]
	assert.False(t, o.ID.IsZero())
	assert.Equal(t, buyer.ID, o.BuyerID)
	assert.Equal(t, seller.ID, o.SellerID)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, 750.0, o.TotalAmount)
	assert.Equal(t, "Desk lamp", o.ProductDetails.Name)
	assert.Equal(t, 250.0, o.ProductDetails.Price)
}

func TestCheckout_EmptyItems(t *testing.T) {
	svc, _, buyer, _, _ := newOrderFixture(t)

	_, err := svc.Checkout(context.Background(), buyer.ID.Hex(), nil)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestCheckout_MissingProductAbortsBatch(t *testing.T) {
	svc, orders, buyer, _, product := newOrderFixture(t)

	_, err := svc.Checkout(context.Background(), buyer.ID.Hex(), []services.CheckoutItem{
		{ProductID: product.ID.Hex(), Quantity: 1},
		{ProductID: primitive.NewObjectID().Hex(), Quantity: 1},
	})
	require.ErrorIs(t, err, services.ErrNotFound)

	// All-or-nothing: the resolvable first line must not have been written.
	listed, err := orders.FindByPartyAndStatus(context.Background(), services.RoleBuyer, buyer.ID, models.OrderPending)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestCheckout_FiresCreatedEvent(t *testing.T) {
	defer event.Flush()

	var got services.OrderCreatedEvent
	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		got = payload.(services.OrderCreatedEvent)
	})

	svc, _, buyer, _, product := newOrderFixture(t)
	_, err := svc.Checkout(context.Background(), buyer.ID.Hex(), []services.CheckoutItem{
		{ProductID: product.ID.Hex(), Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, buyer.ID.Hex(), got.BuyerID)
	assert.Len(t, got.Orders, 1)
}

func checkoutOne(t *testing.T, svc *services.OrderService, buyer *models.User, product *models.Product) models.Order {
	t.Helper()
	out, err := svc.Checkout(context.Background(), buyer.ID.Hex(), []services.CheckoutItem{
		{ProductID: product.ID.Hex(), Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	return out[0]
}

func TestGenerateDeliveryCode(t *testing.T) {
	svc, orders, buyer, _, product := newOrderFixture(t)
	order := checkoutOne(t, svc, buyer, product)

	code, err := svc.GenerateDeliveryCode(context.Background(), order.ID.Hex())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)

	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 100000)
	assert.LessOrEqual(t, n, 999999)

	// Only the hash is persisted.
	stored, err := orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.OTPHash)
	assert.NotEqual(t, code, stored.OTPHash)
}

func TestGenerateDeliveryCode_ReplacesPrevious(t *testing.T) {
	svc, _, buyer, _, product := newOrderFixture(t)
	order := checkoutOne(t, svc, buyer, product)

	first, err := svc.GenerateDeliveryCode(context.Background(), order.ID.Hex())
	require.NoError(t, err)

	// Draw until the fresh code differs so the assertion below always bites.
	second := first
	for attempt := 0; second == first; attempt++ {
		require.Less(t, attempt, 20, "random codes kept colliding")
		second, err = svc.GenerateDeliveryCode(context.Background(), order.ID.Hex())
		require.NoError(t, err)
	}

	ok, err := svc.VerifyDeliveryCode(context.Background(), order.ID.Hex(), first)
	require.NoError(t, err)
	assert.False(t, ok, "a superseded code must not verify")

	ok, err = svc.VerifyDeliveryCode(context.Background(), order.ID.Hex(), second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateDeliveryCode_UnknownOrder(t *testing.T) {
	svc, _, _, _, _ := newOrderFixture(t)

	_, err := svc.GenerateDeliveryCode(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestVerifyDeliveryCode(t *testing.T) {
	svc, orders, buyer, _, product := newOrderFixture(t)
	order := checkoutOne(t, svc, buyer, product)

	code, err := svc.GenerateDeliveryCode(context.Background(), order.ID.Hex())
	require.NoError(t, err)

	ok, err := svc.VerifyDeliveryCode(context.Background(), order.ID.Hex(), code)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, stored.Status)
	require.NotNil(t, stored.DeliveryDate)
	require.NotNil(t, stored.TransactionDate)
}

func TestVerifyDeliveryCode_Mismatch(t *testing.T) {
	svc, orders, buyer, _, product := newOrderFixture(t)
	order := checkoutOne(t, svc, buyer, product)

	code, err := svc.GenerateDeliveryCode(context.Background(), order.ID.Hex())
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// A mismatch is an ordinary outcome, not an error, and leaves the order
	// pending so the buyer can retry.
	ok, err := svc.VerifyDeliveryCode(context.Background(), order.ID.Hex(), wrong)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, stored.Status)

	// The original code still works after any number of failed attempts.
	ok, err = svc.VerifyDeliveryCode(context.Background(), order.ID.Hex(), code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyDeliveryCode_NoCodeIssued(t *testing.T) {
	svc, _, buyer, _, product := newOrderFixture(t)
	order := checkoutOne(t, svc, buyer, product)

	ok, err := svc.VerifyDeliveryCode(context.Background(), order.ID.Hex(), "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDeliveryCode_AlreadyDelivered(t *testing.T) {
	svc, _, buyer, _, product := newOrderFixture(t)
	order := checkoutOne(t, svc, buyer, product)

	code, err := svc.GenerateDeliveryCode(context.Background(), order.ID.Hex())
	require.NoError(t, err)
	_, err = svc.VerifyDeliveryCode(context.Background(), order.ID.Hex(), code)
	require.NoError(t, err)

	_, err = svc.VerifyDeliveryCode(context.Background(), order.ID.Hex(), code)
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestListOrders(t *testing.T) {
	svc, _, buyer, seller, product := newOrderFixture(t)
	checkoutOne(t, svc, buyer, product)

	// As buyer: one pending order enriched with product and seller profile.
	views, err := svc.List(context.Background(), services.RoleBuyer, buyer.ID.Hex(), models.OrderPending)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Product)
	assert.Equal(t, product.ID, views[0].Product.ID)
	require.NotNil(t, views[0].Counterpart)
	assert.Equal(t, seller.ID, views[0].Counterpart.ID)

	// As seller the counterpart flips to the buyer.
	views, err = svc.List(context.Background(), services.RoleSeller, seller.ID.Hex(), models.OrderPending)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Counterpart)
	assert.Equal(t, buyer.ID, views[0].Counterpart.ID)

	// No delivered orders yet: empty slice, not nil, not an error.
	views, err = svc.List(context.Background(), services.RoleBuyer, buyer.ID.Hex(), models.OrderDelivered)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestListOrders_InvalidFilters(t *testing.T) {
	svc, _, buyer, _, _ := newOrderFixture(t)

	_, err := svc.List(context.Background(), "courier", buyer.ID.Hex(), models.OrderPending)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.List(context.Background(), services.RoleBuyer, buyer.ID.Hex(), "shipped")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.List(context.Background(), services.RoleBuyer, "not-an-id", models.OrderPending)
	assert.ErrorIs(t, err, services.ErrValidation)
}
