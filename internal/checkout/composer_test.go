package checkout

import (
	"testing"

	"github.com/davidmarceau/dishpatch-backend/internal/cart"
	"github.com/davidmarceau/dishpatch-backend/internal/catalog"
	"github.com/davidmarceau/dishpatch-backend/pkg/enums"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, want, typed.Code())
}

func testComposer(t *testing.T, rate string) *Composer {
	t.Helper()
	composer, err := NewComposer(decimal.RequireFromString(rate))
	require.NoError(t, err)
	return composer
}

func testRestaurant() *catalog.Restaurant {
	return &catalog.Restaurant{
		ID:          "r1",
		Name:        "Burger Barn",
		DeliveryFee: decimal.RequireFromString("2.99"),
		IsOpen:      true,
	}
}

func testAddress() types.Address {
	return types.Address{
		Street:  "100 Main St",
		City:    "Austin",
		State:   "TX",
		ZipCode: "78701",
	}
}

func testLine(menuItemID, name, price string, quantity int) cart.LineItem {
	return cart.LineItem{
		ID:             uuid.New(),
		MenuItemID:     menuItemID,
		Name:           name,
		Price:          decimal.RequireFromString(price),
		Quantity:       quantity,
		RestaurantID:   "r1",
		RestaurantName: "Burger Barn",
	}
}

func TestNewComposerRejectsBadRate(t *testing.T) {
	for _, rate := range []string{"-0.01", "1", "1.5"} {
		_, err := NewComposer(decimal.RequireFromString(rate))
		assert.Error(t, err, "rate %s", rate)
	}
}

func TestComposeDerivesTotals(t *testing.T) {
	composer := testComposer(t, "0.08")
	items := []cart.LineItem{
		testLine("m1", "Classic Burger", "10.99", 2),
		testLine("m2", "Fries", "3.01", 1),
	}

	submission, err := composer.Compose(items, testRestaurant(), CheckoutInput{
		DeliveryAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethodCard,
	})
	require.NoError(t, err)

	// 24.99 subtotal, 2.99 fee, tax rounds 1.9992 to 2.00.
	assert.Equal(t, "24.99", submission.Subtotal.StringFixed(2))
	assert.Equal(t, "2.99", submission.DeliveryFee.StringFixed(2))
	assert.Equal(t, "2.00", submission.Tax.StringFixed(2))
	assert.Equal(t, "29.98", submission.Total.StringFixed(2))
	assert.True(t, submission.Total.Equal(submission.Subtotal.Add(submission.DeliveryFee).Add(submission.Tax)))
}

func TestComposeSnapshotsLines(t *testing.T) {
	composer := testComposer(t, "0.08")
	line := testLine("m1", "Classic Burger", "10.99", 2)
	line.Customizations = []string{"no onions"}
	line.SpecialInstructions = "extra napkins"

	submission, err := composer.Compose([]cart.LineItem{line}, testRestaurant(), CheckoutInput{
		DeliveryAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.Len(t, submission.Items, 1)

	got := submission.Items[0]
	assert.Equal(t, "m1", got.MenuItemID)
	assert.Equal(t, "Classic Burger", got.Name)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, []string{"no onions"}, got.Customizations)
	assert.Equal(t, "extra napkins", got.SpecialInstructions)

	// The snapshot must not alias the cart line's slice.
	line.Customizations[0] = "mutated"
	assert.Equal(t, []string{"no onions"}, submission.Items[0].Customizations)
}

func TestComposeRejectsEmptyCart(t *testing.T) {
	composer := testComposer(t, "0.08")
	_, err := composer.Compose(nil, testRestaurant(), CheckoutInput{
		DeliveryAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethodCard,
	})
	require.Error(t, err)
	assertCode(t, err, pkgerrors.CodeEmptyCart)
}

func TestComposeRejectsIncompleteAddress(t *testing.T) {
	composer := testComposer(t, "0.08")
	address := testAddress()
	address.City = ""
	address.ZipCode = ""

	_, err := composer.Compose([]cart.LineItem{testLine("m1", "Classic Burger", "10.99", 1)}, testRestaurant(), CheckoutInput{
		DeliveryAddress: address,
		PaymentMethod:   enums.PaymentMethodCard,
	})
	require.Error(t, err)
	assertCode(t, err, pkgerrors.CodeValidation)

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	problems, ok := details["problems"].([]string)
	require.True(t, ok)
	assert.Len(t, problems, 2)
}

func TestComposeRejectsUnknownPaymentMethod(t *testing.T) {
	composer := testComposer(t, "0.08")
	_, err := composer.Compose([]cart.LineItem{testLine("m1", "Classic Burger", "10.99", 1)}, testRestaurant(), CheckoutInput{
		DeliveryAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethod("bitcoin"),
	})
	require.Error(t, err)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestComposeRejectsRestaurantMismatch(t *testing.T) {
	composer := testComposer(t, "0.08")
	other := testRestaurant()
	other.ID = "r2"

	_, err := composer.Compose([]cart.LineItem{testLine("m1", "Classic Burger", "10.99", 1)}, other, CheckoutInput{
		DeliveryAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethodCard,
	})
	require.Error(t, err)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestComposeZeroRate(t *testing.T) {
	composer := testComposer(t, "0")
	submission, err := composer.Compose([]cart.LineItem{testLine("m1", "Classic Burger", "10.00", 1)}, testRestaurant(), CheckoutInput{
		DeliveryAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethodDigitalWallet,
	})
	require.NoError(t, err)
	assert.True(t, submission.Tax.IsZero())
	assert.Equal(t, "12.99", submission.Total.StringFixed(2))
}
