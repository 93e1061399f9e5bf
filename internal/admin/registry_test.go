package admin

import (
	"testing"

	"pharmacy-store/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryCoversEveryTable(t *testing.T) {
	r := DefaultRegistry()

	var names []string
	for _, e := range r.All() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{
		"Brand", "Cart", "CartItems", "Customer", "DoctorConsultation",
		"MedicineShop", "Payment", "Product", "Wishlist",
	}, names)

	for _, tbl := range schema.Tables() {
		e, ok := r.Get(tbl.Name)
		require.Truef(t, ok, "%s not registered", tbl.Name)
		assert.Equal(t, tbl.Entity, e.Name)
	}

	_, ok := r.Get("Order")
	assert.False(t, ok)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	brand := schema.MustLookup(schema.BrandTable)
	_, err := NewRegistry([]*schema.Table{brand, brand})
	assert.Error(t, err)

	_, err = NewRegistry([]*schema.Table{{Name: "nameless"}})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	e, ok := DefaultRegistry().Get("Payment")
	require.True(t, ok)

	info := e.Describe()
	assert.Equal(t, "payment", info.Table)

	cols := map[string]ColumnInfo{}
	for _, c := range info.Columns {
		cols[c.Name] = c
	}
	assert.True(t, cols["payment_id"].PrimaryKey)
	assert.Equal(t, "cart.cart_id", cols["cart_id"].References)
	assert.Equal(t, []string{"PENDING", "COMPLETED", "FAILED"}, cols["payment_status"].Choices)
}
