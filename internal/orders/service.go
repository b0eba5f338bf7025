package orders

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"fertidesk/internal/models"
)

// maxCreateRetries bounds how often a creation is replayed after losing an
// order-id race to a concurrent same-day creation.
const maxCreateRetries = 3

// Service is the order lifecycle engine. It owns every mutation that spans
// the order, customer and product tables and wraps each one in a single
// database transaction.
type Service struct {
	db  *gorm.DB
	log *slog.Logger

	// now is swapped out by tests that need a fixed clock.
	now func() time.Time
}

// NewService returns an engine bound to db.
func NewService(db *gorm.DB, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, log: log, now: time.Now}
}

// CreateOrderInput is the cart payload accepted from the counter UI.
type CreateOrderInput struct {
	Items         []models.OrderItem `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalCost     decimal.Decimal    `json:"totalCost"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
}

func (in *CreateOrderInput) validate() error {
	if len(in.Items) == 0 {
		return validationErrorf("items must not be empty")
	}
	for i, item := range in.Items {
		if item.ProductID <= 0 {
			return validationErrorf("items[%d]: product id is required", i)
		}
		if item.Quantity <= 0 {
			return validationErrorf("items[%d]: quantity must be positive", i)
		}
		if item.Price.IsNegative() {
			return validationErrorf("items[%d]: price must not be negative", i)
		}
	}
	if in.TotalQuantity <= 0 {
		return validationErrorf("totalQuantity must be positive")
	}
	if !in.TotalCost.IsPositive() {
		return validationErrorf("totalCost must be positive")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return validationErrorf("customerName is required")
	}
	return nil
}

// totals recomputes quantity and cost from the line items. The persisted
// order and the customer aggregates always use these server-side figures,
// never the client-supplied ones.
func (in *CreateOrderInput) totals() (int, decimal.Decimal) {
	quantity := 0
	cost := decimal.Zero
	for _, item := range in.Items {
		quantity += item.Quantity
		cost = cost.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return quantity, cost
}

// CreateOrder runs the full creation workflow: resolve or create the
// customer, decrement stock for every line, allocate the daily-sequence id
// and persist the order on the waitlist. Every step happens inside one
// transaction; any failure rolls the whole unit back.
func (s *Service) CreateOrder(in CreateOrderInput) (*models.Order, *models.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	var (
		order    *models.Order
		customer *models.Customer
		err      error
	)
	for attempt := 0; attempt < maxCreateRetries; attempt++ {
		order, customer, err = s.createOnce(in)
		if err == nil || !isUniqueViolation(err) {
			break
		}
		s.log.Warn("order id conflict, retrying creation",
			"attempt", attempt+1, "customer", in.CustomerName)
	}
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("order created",
		"order_id", order.ID,
		"customer_id", customer.ID,
		"total_cost", order.TotalCost.String(),
		"total_quantity", order.TotalQuantity)
	return order, customer, nil
}

func (s *Service) createOnce(in CreateOrderInput) (*models.Order, *models.Customer, error) {
	now := s.now()
	quantity, cost := in.totals()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}

	customer, err := upsertCustomer(tx, in.CustomerName, in.CustomerEmail, cost, now)
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	for _, item := range in.Items {
		if err := decrementStock(tx, item); err != nil {
			tx.Rollback()
			return nil, nil, err
		}
	}

	id, err := allocateOrderID(tx, now)
	if err != nil {
		tx.Rollback()
		return nil, nil, err
	}

	order := &models.Order{
		ID:            id,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerID:    customer.ID,
		TotalQuantity: quantity,
		TotalCost:     cost,
		Timestamp:     now,
		Status:        models.StatusWaitlist,
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("persist order: %w", err)
	}
	for i := range in.Items {
		item := in.Items[i]
		item.ID = 0
		item.OrderID = order.ID
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, nil, fmt.Errorf("persist order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, nil, fmt.Errorf("commit order creation: %w", err)
	}

	normalizeOrder(order)
	return order, customer, nil
}

// upsertCustomer resolves the buying customer inside the creation
// transaction. Matching is by exact name OR exact email, first match wins;
// when nothing matches a new customer is created with a synthetic id and, if
// no address was supplied, a placeholder email derived from the name.
func upsertCustomer(tx *gorm.DB, name, email string, orderTotal decimal.Decimal, now time.Time) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if email == "" {
		email = models.FallbackEmail(name)
	}

	var customer models.Customer
	err := tx.Where("name = ? OR email = ?", name, email).First(&customer).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"total_orders":    gorm.Expr("total_orders + 1"),
			"total_spent":     gorm.Expr("total_spent + ?", orderTotal),
			"last_order_date": now,
		}
		if err := tx.Model(&customer).UpdateColumns(updates).Error; err != nil {
			return nil, fmt.Errorf("update customer aggregates: %w", err)
		}
		if err := tx.First(&customer, "id = ?", customer.ID).Error; err != nil {
			return nil, fmt.Errorf("reload customer: %w", err)
		}
		return &customer, nil

	case gorm.IsRecordNotFoundError(err):
		id, err := nextCustomerID(tx)
		if err != nil {
			return nil, err
		}
		customer = models.Customer{
			ID:            id,
			Name:          name,
			Email:         email,
			TotalOrders:   1,
			TotalSpent:    orderTotal,
			RegisteredAt:  now,
			LastOrderDate: &now,
		}
		if err := tx.Create(&customer).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, validationErrorf("email %s is already registered", email)
			}
			return nil, fmt.Errorf("create customer: %w", err)
		}
		return &customer, nil

	default:
		return nil, fmt.Errorf("look up customer: %w", err)
	}
}

// nextCustomerID allocates a strictly increasing synthetic customer id within
// the caller's transaction.
func nextCustomerID(tx *gorm.DB) (int, error) {
	var maxID int
	row := tx.Model(&models.Customer{}).Select("COALESCE(MAX(id), 0)").Row()
	if err := row.Scan(&maxID); err != nil {
		return 0, fmt.Errorf("allocate customer id: %w", err)
	}
	return maxID + 1, nil
}

// decrementStock applies one order line to the catalog with a conditional
// store-level decrement. Zero rows affected means either the product does not
// exist or the order would drive its stock negative; both abort the order.
func decrementStock(tx *gorm.DB, item models.OrderItem) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND current_stock >= ?", item.ProductID, item.Quantity).
		UpdateColumn("current_stock", gorm.Expr("current_stock - ?", item.Quantity))
	if res.Error != nil {
		return fmt.Errorf("decrement stock for product %d: %w", item.ProductID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var product models.Product
	err := tx.First(&product, "id = ?", item.ProductID).Error
	if gorm.IsRecordNotFoundError(err) {
		return &NotFoundError{Kind: "product", ID: fmt.Sprint(item.ProductID)}
	}
	if err != nil {
		return fmt.Errorf("look up product %d: %w", item.ProductID, err)
	}
	return fmt.Errorf("product %d (%s): %w: have %d, need %d",
		product.ID, product.Name, ErrInsufficientStock, product.CurrentStock, item.Quantity)
}
