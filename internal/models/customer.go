package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderEmailDomain is appended to slugified customer names when no real
// email address was captured at the counter. Addresses under this domain are
// legibility fallbacks, not contact data.
const PlaceholderEmailDomain = "default.com"

// Customer aggregates the order history of a single buyer. TotalOrders and
// TotalSpent only ever increase; cancelled orders are not reconciled.
type Customer struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Name          string          `gorm:"not null;index" json:"name"`
	Email         string          `gorm:"not null;unique_index" json:"email"`
	Phone         string          `json:"phone"`
	TotalOrders   int             `gorm:"not null;default:0" json:"totalOrders"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(12,2)" json:"totalSpent"`
	RegisteredAt  time.Time       `json:"registeredAt"`
	LastOrderDate *time.Time      `json:"lastOrderDate,omitempty"`
	Orders        []Order         `gorm:"foreignkey:CustomerID" json:"orders,omitempty"`
}

// FallbackEmail builds the placeholder address used when an order arrives
// without one: the customer name lowercased with whitespace removed, under
// PlaceholderEmailDomain.
func FallbackEmail(name string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(name), ""))
	return slug + "@" + PlaceholderEmailDomain
}

// HasPlaceholderEmail reports whether the customer's address was generated by
// FallbackEmail rather than supplied by the customer.
func (c Customer) HasPlaceholderEmail() bool {
	return strings.HasSuffix(c.Email, "@"+PlaceholderEmailDomain)
}
