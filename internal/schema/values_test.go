package schema

import (
	"math"
	"testing"

	"pharmacy-store/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	id := uuid.New()
	key, err := MustLookup(CustomerTable).ParseKey(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, key)

	key, err = MustLookup(ProductTable).ParseKey("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), key)

	_, err = MustLookup(ProductTable).ParseKey("abc")
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = MustLookup(BrandTable).ParseKey("42")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestCoerceEnumAndLength(t *testing.T) {
	status, _ := MustLookup(PaymentTable).Column("payment_status")

	v, err := status.Coerce("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", v)

	_, err = status.Coerce("REFUNDED")
	assert.ErrorIs(t, err, models.ErrInvalidEnum)

	_, err = status.Coerce(nil)
	assert.ErrorIs(t, err, ErrInvalidValue)

	pincode, _ := MustLookup(CustomerTable).Column("pincode")
	_, err = pincode.Coerce("1234567")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestCoerceNumbers(t *testing.T) {
	price, _ := MustLookup(ProductTable).Column("product_price")
	v, err := price.Coerce(19.99)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.99").Equal(v.(decimal.Decimal)))

	_, err = price.Coerce("19.999")
	assert.ErrorIs(t, err, ErrInvalidValue)

	qty, _ := MustLookup(CartItemsTable).Column("quantity")
	v, err = qty.Coerce(float64(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = qty.Coerce(2.5)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestCoerceIntegerRange(t *testing.T) {
	age, _ := MustLookup(CustomerTable).Column("age")

	for _, n := range []float64{1e19, -1e19, math.Inf(1), 1<<53 + 2} {
		_, err := age.Coerce(n)
		assert.ErrorIs(t, err, ErrInvalidValue, "%v", n)
	}

	v, err := age.Coerce(float64(1 << 53))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<53), v)

	v, err = age.Coerce(float64(-(1 << 53)))
	require.NoError(t, err)
	assert.Equal(t, int64(-(1 << 53)), v)
}

func TestCoerceNullable(t *testing.T) {
	doctor, _ := MustLookup(CustomerTable).Column("doctor_id")
	v, err := doctor.Coerce(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	delivery, _ := MustLookup(CartTable).Column("delivery_time")
	v, err = delivery.Coerce("18:30")
	require.NoError(t, err)
	assert.Equal(t, models.TimeOfDay{Hour: 18, Minute: 30}, v)
}
