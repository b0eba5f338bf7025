package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"fertidesk/internal/models"
)

// GetCustomers handles GET /api/customers: the full registry sorted by spend,
// or a single customer (with order history) when customerId is given.
func (s *Server) GetCustomers(c *gin.Context) {
	if raw := c.Query("customerId"); raw != "" {
		var customer models.Customer
		err := s.db.
			Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("timestamp desc") }).
			Preload("Orders.Items").
			First(&customer, "id = ?", raw).Error
		if gorm.IsRecordNotFoundError(err) {
			errorResponse(c, http.StatusNotFound, "Customer not found", nil)
			return
		}
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, "Error fetching customer", err)
			return
		}
		c.JSON(http.StatusOK, customer)
		return
	}

	var customers []models.Customer
	if err := s.db.Order("total_spent desc").Find(&customers).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "Error fetching customers", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

type upsertCustomerRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	TotalOrders int             `json:"totalOrders"`
}

// UpsertCustomer handles POST /api/customers, the admin-screen write path.
// Unlike order creation, it matches strictly by email and overwrites contact
// details.
func (s *Server) UpsertCustomer(c *gin.Context) {
	var req upsertCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Email == "" {
		errorResponse(c, http.StatusBadRequest, "Name and email are required fields", nil)
		return
	}

	var customer models.Customer
	err := s.db.First(&customer, "email = ?", req.Email).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"name":         req.Name,
			"phone":        req.Phone,
			"total_spent":  gorm.Expr("total_spent + ?", req.TotalSpent),
			"total_orders": gorm.Expr("total_orders + ?", req.TotalOrders),
		}
		if err := s.db.Model(&customer).UpdateColumns(updates).Error; err != nil {
			errorResponse(c, http.StatusInternalServerError, "Error processing customer", err)
			return
		}
		if err := s.db.First(&customer, "id = ?", customer.ID).Error; err != nil {
			errorResponse(c, http.StatusInternalServerError, "Error processing customer", err)
			return
		}
		c.JSON(http.StatusOK, customer)

	case gorm.IsRecordNotFoundError(err):
		var maxID int
		row := s.db.Model(&models.Customer{}).Select("COALESCE(MAX(id), 0)").Row()
		if err := row.Scan(&maxID); err != nil {
			errorResponse(c, http.StatusInternalServerError, "Error processing customer", err)
			return
		}
		customer = models.Customer{
			ID:           maxID + 1,
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			TotalSpent:   req.TotalSpent,
			TotalOrders:  req.TotalOrders,
			RegisteredAt: time.Now(),
		}
		if err := s.db.Create(&customer).Error; err != nil {
			errorResponse(c, http.StatusInternalServerError, "Error processing customer", err)
			return
		}
		c.JSON(http.StatusCreated, customer)

	default:
		errorResponse(c, http.StatusInternalServerError, "Error processing customer", err)
	}
}
