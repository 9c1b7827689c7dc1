package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// POST /api/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var in services.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if in.OrderedBy == "" {
		in.OrderedBy = c.GetHeader("X-Actor")
	}

	order, err := oc.Orders.CreateOrder(in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, order)
}

// GET /api/orders?hotelId=
func (oc *OrderController) GetOrders(c *gin.Context) {
	var hotelID uint
	if v, err := strconv.ParseUint(c.Query("hotelId"), 10, 64); err == nil {
		hotelID = uint(v)
	}

	orders, err := oc.Orders.ListOrders(hotelID)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, orders)
}
