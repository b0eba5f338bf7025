package orders

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"fertidesk/internal/models"
)

// orderID builds the date-coded order id: YYMMDD followed by the 1-based
// ordinal of the order within its local day. The ordinal is intentionally not
// zero-padded, matching the id format staff already know; ordering always
// goes through the timestamp column, never through the id.
func orderID(t time.Time, ordinal int) string {
	return fmt.Sprintf("%s%d", t.Format("060102"), ordinal)
}

// dayBounds returns the half-open [start, end) interval of the local calendar
// day containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// allocateOrderID computes the next id for an order created at now, counting
// committed same-day orders inside the caller's transaction. Uniqueness is
// ultimately enforced by the orders primary key; a racing creation surfaces
// as a unique violation and the whole transaction is retried with a fresh
// count.
func allocateOrderID(tx *gorm.DB, now time.Time) (string, error) {
	start, end := dayBounds(now)
	var count int
	err := tx.Model(&models.Order{}).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Count(&count).Error
	if err != nil {
		return "", fmt.Errorf("count same-day orders: %w", err)
	}
	return orderID(now, count+1), nil
}
