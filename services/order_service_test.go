package services

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	s := newTestStack(t)

	order, err := s.orders.CreateOrder(OrderInput{
		HotelID:   1,
		TableName: " T5 ",
		Items: []OrderItem{
			{Name: "Pad Thai", Quantity: 2, Price: 120},
			{Name: "Water", Quantity: 1, Price: 20},
		},
		Total:     260,
		OrderedBy: "waiter-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "T5", order.TableName)
	assert.Equal(t, "open", order.Status)
	assert.NotEmpty(t, order.OrderNo)

	var items []OrderItem
	require.NoError(t, json.Unmarshal(order.Items, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Pad Thai", items[0].Name)

	got, err := s.orders.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNo, got.OrderNo)
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestStack(t)

	_, err := s.orders.CreateOrder(OrderInput{Total: -1})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, failureCode(t, err))

	listed, err := s.orders.ListOrders(0)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestListOrdersFiltersByHotel(t *testing.T) {
	s := newTestStack(t)

	item := []OrderItem{{Name: "Coffee", Quantity: 1, Price: 60}}
	_, err := s.orders.CreateOrder(OrderInput{HotelID: 1, Items: item, Total: 60})
	require.NoError(t, err)
	_, err = s.orders.CreateOrder(OrderInput{HotelID: 2, Items: item, Total: 60})
	require.NoError(t, err)

	listed, err := s.orders.ListOrders(1)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	listed, err = s.orders.ListOrders(0)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
