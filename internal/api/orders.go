package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fertidesk/internal/models"
	"fertidesk/internal/orders"
)

// CreateOrder handles POST /api/orders. The cart payload is handed to the
// lifecycle engine, which creates the order, adjusts the customer aggregates
// and decrements stock in one transaction.
func (s *Server) CreateOrder(c *gin.Context) {
	var in orders.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.rejectOrder(c, &orders.ValidationError{Msg: err.Error()})
		return
	}

	order, customer, err := s.engine.CreateOrder(in)
	if err != nil {
		s.rejectOrder(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	if s.hub != nil {
		s.hub.OrderCreated(order)
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":    order,
		"customer": customer,
	})
}

// GetOrders handles GET /api/orders with the status, subStatus, customerId
// and dispatchedDate query filters.
func (s *Server) GetOrders(c *gin.Context) {
	filter := orders.Filter{
		Status:         c.Query("status"),
		SubStatus:      c.Query("subStatus"),
		DispatchedDate: c.Query("dispatchedDate"),
	}
	if raw := c.Query("customerId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid customerId", err)
			return
		}
		filter.CustomerID = id
	}

	list, err := s.engine.ListOrders(filter)
	if err != nil {
		if orders.IsValidation(err) {
			errorResponse(c, http.StatusBadRequest, "Invalid query", err)
			return
		}
		errorResponse(c, http.StatusInternalServerError, "Error retrieving orders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateOrder handles PUT /api/orders: one status and/or sub-status
// transition validated by the state machine.
func (s *Server) UpdateOrder(c *gin.Context) {
	var in orders.UpdateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.rejectOrder(c, &orders.ValidationError{Msg: err.Error()})
		return
	}

	order, err := s.engine.UpdateOrder(in)
	if err != nil {
		s.rejectOrder(c, err)
		return
	}

	if s.metrics != nil && order.Status == models.StatusDispatched {
		s.metrics.OrdersDispatched.Inc()
	}
	if s.hub != nil {
		s.hub.OrderUpdated(order)
	}

	c.JSON(http.StatusOK, order)
}

// rejectOrder maps engine errors onto the HTTP contract and counts the
// rejection.
func (s *Server) rejectOrder(c *gin.Context, err error) {
	var reason string
	switch {
	case orders.IsValidation(err):
		reason = "validation"
		errorResponse(c, http.StatusBadRequest, "Validation error", err)
	case orders.IsNotFound(err):
		reason = "not_found"
		errorResponse(c, http.StatusNotFound, "Not found", err)
	case errors.Is(err, orders.ErrInsufficientStock):
		reason = "insufficient_stock"
		errorResponse(c, http.StatusConflict, "Insufficient stock", err)
	case orders.IsPolicy(err):
		reason = "policy"
		errorResponse(c, http.StatusBadRequest, "Illegal transition", err)
	default:
		reason = "storage"
		s.log.Error("order request failed", "err", err)
		errorResponse(c, http.StatusInternalServerError, "Storage error", err)
	}
	if s.metrics != nil {
		s.metrics.OrdersRejected.WithLabelValues(reason).Inc()
	}
}
