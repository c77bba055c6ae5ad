package mysql

import (
	"context"
	"errors"
	"log"
	"time"

	"roomservice/internal/domain"
	"roomservice/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		return tx.Create(&order.Items).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrExternalRefConflict
		}
		log.Printf("order create error: %v", err)
		return err
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByExternalID(ctx context.Context, externalID string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByGuest(ctx context.Context, roomID, guestID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("room_id = ? AND guest_id = ?", roomID, guestID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus embeds the expected current states in the UPDATE predicate,
// so concurrent actors racing on the same order cannot clobber each other:
// whoever loses the race affects zero rows.
func (r *orderRepo) UpdateStatus(ctx context.Context, orderID string, expected []domain.OrderStatus, to domain.OrderStatus, reason string) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if to == domain.StatusRejected {
		updates["rejection_reason"] = reason
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status IN ?", orderID, expected).
		Updates(updates)
	if result.Error != nil {
		log.Printf("status update error: %v", result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepo) MarkRoomBilled(ctx context.Context, roomID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Order{}).
			Where("room_id = ? AND status <> ?", roomID, domain.StatusBilled).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&domain.Order{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     domain.StatusBilled,
				"updated_at": time.Now().UTC(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *orderRepo) SetPaymentLink(ctx context.Context, orderID, paymentID, paymentURL, paymentMethod string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_id":     paymentID,
			"payment_url":    paymentURL,
			"payment_method": paymentMethod,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ApplyPaymentStatus is the idempotent webhook write. The predicate skips
// rows already in the target status and, unless the target itself is PAID,
// rows that have reached PAID: once paid, stale callbacks cannot move the
// order backward.
func (r *orderRepo) ApplyPaymentStatus(ctx context.Context, externalID string, update repository.PaymentUpdate) (bool, error) {
	updates := map[string]any{
		"payment_status": update.Status,
		"updated_at":     time.Now().UTC(),
	}
	if update.PaymentID != "" {
		updates["payment_id"] = update.PaymentID
	}
	if update.PaymentMethod != "" {
		updates["payment_method"] = update.PaymentMethod
	}
	if update.PaymentChannel != "" {
		updates["payment_channel"] = update.PaymentChannel
	}
	if update.PaidAt != nil {
		updates["paid_at"] = update.PaidAt
	}

	query := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("external_id = ? AND payment_status <> ?", externalID, update.Status)
	if update.Status != domain.PaymentPaid {
		query = query.Where("payment_status <> ?", domain.PaymentPaid)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		log.Printf("payment status update error: %v", result.Error)
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("external_id = ?", externalID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, domain.ErrOrderNotFound
	}
	return false, nil
}

func (r *orderRepo) RoomBillingSnapshot(ctx context.Context) ([]domain.RoomBillingSummary, error) {
	var rows []domain.RoomBillingSummary
	err := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("room_id, COUNT(*) AS order_count, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS delivered_count, SUM(sub_total) AS total_amount", domain.StatusDelivered).
		Where("status <> ?", domain.StatusBilled).
		Group("room_id").
		Order("room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
