package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackEmail(t *testing.T) {
	assert.Equal(t, "ravikumar@default.com", FallbackEmail("Ravi Kumar"))
	assert.Equal(t, "meenadevi@default.com", FallbackEmail("  Meena  Devi "))
	assert.Equal(t, "r.kumar@default.com", FallbackEmail("R. Kumar"))
}

func TestHasPlaceholderEmail(t *testing.T) {
	assert.True(t, Customer{Email: "ravikumar@default.com"}.HasPlaceholderEmail())
	assert.False(t, Customer{Email: "ravi@example.com"}.HasPlaceholderEmail())
}

func TestValidStatus(t *testing.T) {
	for _, s := range []OrderStatus{StatusWaitlist, StatusConfirmed, StatusDispatched, StatusCancelled} {
		assert.True(t, ValidStatus(s), "%s should be valid", s)
	}
	assert.False(t, ValidStatus("shipped"))
	assert.False(t, ValidStatus(""))
}

func TestValidSubStatus(t *testing.T) {
	assert.True(t, ValidSubStatus(SubStatusPacked))
	assert.True(t, ValidSubStatus(SubStatusUnpacked))
	assert.False(t, ValidSubStatus("half-packed"))
	assert.False(t, ValidSubStatus(""))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDispatched.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusWaitlist.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
}

func TestLowStock(t *testing.T) {
	assert.True(t, Product{CurrentStock: 5, LowStockThreshold: 10}.LowStock())
	assert.True(t, Product{CurrentStock: 10, LowStockThreshold: 10}.LowStock())
	assert.False(t, Product{CurrentStock: 11, LowStockThreshold: 10}.LowStock())
}
