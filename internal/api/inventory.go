package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"

	"fertidesk/internal/models"
)

// GetInventory handles GET /api/inventory.
func (s *Server) GetInventory(c *gin.Context) {
	var products []models.Product
	if err := s.db.Order("id").Find(&products).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "Error fetching inventory", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type updateStockRequest struct {
	ID                int  `json:"id"`
	CurrentStock      *int `json:"currentStock"`
	LowStockThreshold *int `json:"lowStockThreshold"`
}

// UpdateStock handles PUT /api/inventory: manual stock and threshold edits
// from the inventory screen.
func (s *Server) UpdateStock(c *gin.Context) {
	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID <= 0 {
		errorResponse(c, http.StatusBadRequest, "Product id is required", nil)
		return
	}
	if req.CurrentStock != nil && *req.CurrentStock < 0 {
		errorResponse(c, http.StatusBadRequest, "currentStock must not be negative", nil)
		return
	}

	updates := map[string]interface{}{}
	if req.CurrentStock != nil {
		updates["current_stock"] = *req.CurrentStock
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if len(updates) == 0 {
		errorResponse(c, http.StatusBadRequest, "Nothing to update", nil)
		return
	}

	var product models.Product
	err := s.db.First(&product, "id = ?", req.ID).Error
	if gorm.IsRecordNotFoundError(err) {
		errorResponse(c, http.StatusNotFound, "Product not found", nil)
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "Error updating stock", err)
		return
	}

	if err := s.db.Model(&product).UpdateColumns(updates).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "Error updating stock", err)
		return
	}
	if err := s.db.First(&product, "id = ?", req.ID).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "Error updating stock", err)
		return
	}
	c.JSON(http.StatusOK, product)
}
