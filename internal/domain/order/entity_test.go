package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_Display(t *testing.T) {
	total := int64(900)
	o := Order{
		ID: "f3a1c2d4-0000-4b7e-9c1d-98ab12cd34ef",
		Items: []OrderItem{
			{ProductID: "a", Quantity: 2, UnitPrice: 500, TotalPrice: &total},
			{ProductID: "b", Quantity: 3, UnitPrice: 100},
		},
	}

	assert.Equal(t, "12cd34ef", o.ShortID())
	assert.Equal(t, 5, o.ItemCount())
	assert.Equal(t, int64(900), o.Items[0].LineTotal())
	assert.Equal(t, int64(300), o.Items[1].LineTotal())

	short := Order{ID: "o1"}
	assert.Equal(t, "o1", short.ShortID())
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusShipped.Valid())
	assert.False(t, Status("LOST").Valid())
	assert.Equal(t, "Awaiting confirmation", StatusPending.Label())
	assert.Equal(t, "LOST", Status("LOST").Label())
	assert.True(t, StatusDelivered.IsReturnable())
	assert.False(t, StatusShipped.IsReturnable())
}
