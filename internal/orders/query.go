package orders

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"fertidesk/internal/models"
)

// Filter narrows a ListOrders call. Zero values mean "no constraint".
// DispatchedDate ("2006-01-02") forces status=dispatched and bounds
// DispatchedAt to that local day.
type Filter struct {
	Status         string
	SubStatus      string
	CustomerID     int
	DispatchedDate string
}

// ListOrders returns orders matching the filter, newest first. Every returned
// order carries totals recomputed from its line items.
func (s *Service) ListOrders(f Filter) ([]models.Order, error) {
	q := s.db.Preload("Items").Order("timestamp desc")

	if f.DispatchedDate != "" {
		day, err := time.ParseInLocation("2006-01-02", f.DispatchedDate, time.Local)
		if err != nil {
			return nil, validationErrorf("invalid dispatchedDate %q: want YYYY-MM-DD", f.DispatchedDate)
		}
		start, end := dayBounds(day)
		q = q.Where("status = ?", models.StatusDispatched).
			Where("dispatched_at >= ? AND dispatched_at < ?", start, end)
	} else if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SubStatus != "" {
		q = q.Where("sub_status = ?", f.SubStatus)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range orders {
		normalizeOrder(&orders[i])
	}
	return orders, nil
}

// GetOrder loads a single order by id.
func (s *Service) GetOrder(id string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").First(&order, "id = ?", id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, &NotFoundError{Kind: "order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", id, err)
	}
	normalizeOrder(&order)
	return &order, nil
}

// normalizeOrder makes an order display-ready: totals recomputed from line
// items, blank customer names and emojis filled with placeholders.
func normalizeOrder(order *models.Order) {
	quantity := 0
	cost := decimal.Zero
	for i := range order.Items {
		item := &order.Items[i]
		if item.Emoji == "" {
			item.Emoji = "📦"
		}
		quantity += item.Quantity
		cost = cost.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.TotalQuantity = quantity
	order.TotalCost = cost
	if order.CustomerName == "" {
		order.CustomerName = "Anonymous"
	}
}
