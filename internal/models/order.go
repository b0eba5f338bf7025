package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a single customer order. The ID is a date-coded daily sequence
// ("250615" + ordinal) allocated at creation time.
type Order struct {
	ID            string          `gorm:"primary_key" json:"id"`
	CustomerName  string          `gorm:"not null" json:"customerName"`
	CustomerID    int             `gorm:"index" json:"customerId"`
	Items         []OrderItem     `gorm:"foreignkey:OrderID" json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(12,2)" json:"totalCost"`
	Timestamp     time.Time       `gorm:"index" json:"timestamp"`
	Status        OrderStatus     `gorm:"not null;index" json:"status"`
	SubStatus     OrderSubStatus  `json:"subStatus,omitempty"`
	DispatchedAt  *time.Time      `json:"dispatchedAt,omitempty"`
}

// OrderItem is one line of an order. Product details are copied in at order
// time so later catalog edits do not rewrite history.
type OrderItem struct {
	ID        uint            `gorm:"primary_key" json:"-"`
	OrderID   string          `gorm:"index" json:"-"`
	ProductID int             `json:"id"`
	Name      string          `json:"name"`
	Emoji     string          `json:"emoji"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderStatus is the main pipeline state of an order.
type OrderStatus string

const (
	StatusWaitlist   OrderStatus = "waitlist"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusDispatched OrderStatus = "dispatched"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderSubStatus is the packing flag carried while an order is confirmed.
type OrderSubStatus string

const (
	SubStatusUnpacked OrderSubStatus = "unpacked"
	SubStatusPacked   OrderSubStatus = "packed"
)

// ValidStatus reports whether s is one of the declared pipeline states.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusWaitlist, StatusConfirmed, StatusDispatched, StatusCancelled:
		return true
	}
	return false
}

// ValidSubStatus reports whether s is a declared packing state.
func ValidSubStatus(s OrderSubStatus) bool {
	return s == SubStatusUnpacked || s == SubStatusPacked
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDispatched || s == StatusCancelled
}
