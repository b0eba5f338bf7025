package models

import "github.com/shopspring/decimal"

// Product represents an entry in the fertilizer catalog. The ID is the stable
// catalog key shown to staff; products are edited in place and never deleted.
type Product struct {
	ID                int             `gorm:"primary_key" json:"id"`
	Name              string          `gorm:"not null" json:"name"`
	Emoji             string          `json:"emoji"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Category          string          `json:"category"`
	CurrentStock      int             `gorm:"not null;default:0" json:"currentStock"`
	LowStockThreshold int             `gorm:"not null;default:10" json:"lowStockThreshold"`
}

// LowStock reports whether the product has fallen to or below its reorder threshold.
func (p Product) LowStock() bool {
	return p.CurrentStock <= p.LowStockThreshold
}
