package orders

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"fertidesk/internal/models"
)

// UpdateOrderInput carries a requested status and/or sub-status change.
type UpdateOrderInput struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	SubStatus string `json:"subStatus"`
}

// UpdateOrder applies one transition of the order state machine:
//
//	waitlist  -> confirmed   (sub-status defaults to unpacked)
//	waitlist  -> cancelled   (terminal)
//	confirmed: unpacked <-> packed, freely
//	confirmed/packed -> dispatched (terminal; clears sub-status, stamps DispatchedAt)
//
// Status and sub-status values outside the declared enums are rejected, as is
// any other transition. A rejected update leaves the order untouched.
func (s *Service) UpdateOrder(in UpdateOrderInput) (*models.Order, error) {
	if in.ID == "" {
		return nil, validationErrorf("order id is required")
	}
	if in.Status == "" && in.SubStatus == "" {
		return nil, validationErrorf("nothing to update: provide status or subStatus")
	}
	if in.Status != "" && !models.ValidStatus(models.OrderStatus(in.Status)) {
		return nil, validationErrorf("invalid status %q", in.Status)
	}
	if in.SubStatus != "" && !models.ValidSubStatus(models.OrderSubStatus(in.SubStatus)) {
		return nil, validationErrorf(`invalid sub-status %q: must be "packed" or "unpacked"`, in.SubStatus)
	}

	now := s.now()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}

	var order models.Order
	err := tx.Preload("Items").First(&order, "id = ?", in.ID).Error
	if gorm.IsRecordNotFoundError(err) {
		tx.Rollback()
		return nil, &NotFoundError{Kind: "order", ID: in.ID}
	}
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("load order %s: %w", in.ID, err)
	}

	if err := applyTransition(&order, in, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	updates := map[string]interface{}{
		"status":        order.Status,
		"sub_status":    order.SubStatus,
		"dispatched_at": order.DispatchedAt,
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).UpdateColumns(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("update order %s: %w", order.ID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit order update: %w", err)
	}

	s.log.Info("order updated",
		"order_id", order.ID, "status", order.Status, "sub_status", order.SubStatus)

	normalizeOrder(&order)
	return &order, nil
}

// applyTransition mutates order in memory according to the requested change,
// or returns a policy error leaving it as loaded.
func applyTransition(order *models.Order, in UpdateOrderInput, now time.Time) error {
	if in.Status != "" && models.OrderStatus(in.Status) != order.Status {
		target := models.OrderStatus(in.Status)
		switch {
		case order.Status == models.StatusWaitlist && target == models.StatusConfirmed:
			order.Status = models.StatusConfirmed
			if order.SubStatus == "" {
				order.SubStatus = models.SubStatusUnpacked
			}
		case order.Status == models.StatusWaitlist && target == models.StatusCancelled:
			order.Status = models.StatusCancelled
			order.SubStatus = ""
		case order.Status == models.StatusConfirmed && target == models.StatusDispatched:
			if order.SubStatus != models.SubStatusPacked {
				return policyErrorf("order %s cannot be dispatched: sub-status is %q, must be %q",
					order.ID, order.SubStatus, models.SubStatusPacked)
			}
			order.Status = models.StatusDispatched
			order.SubStatus = ""
			order.DispatchedAt = &now
			return nil // dispatch ignores any sub-status in the same request
		default:
			if order.Status.Terminal() {
				return policyErrorf("order %s is %s and cannot change state", order.ID, order.Status)
			}
			return policyErrorf("illegal transition %s -> %s for order %s",
				order.Status, target, order.ID)
		}
	}

	if in.SubStatus != "" {
		if order.Status != models.StatusConfirmed {
			return policyErrorf("sub-status only applies to confirmed orders; order %s is %s",
				order.ID, order.Status)
		}
		order.SubStatus = models.OrderSubStatus(in.SubStatus)
	}
	return nil
}
