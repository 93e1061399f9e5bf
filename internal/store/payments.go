package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreatePayment records a payment for a cart checkout. Payments start out
// PENDING unless a status is given.
func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	ctx, span := util.StartSpan(ctx, "Store.CreatePayment")
	defer span.End()

	if p.Status == "" {
		p.Status = models.PaymentStatusPending
	}
	if err := models.Validate(p); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := s.exec(ctx, `
		INSERT INTO payment (payment_id, transaction_id, total_price, payment_method, payment_status,
			payment_date, coupon_applied, cart_id, customer_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TransactionID, p.TotalPrice, p.Method, p.Status,
		p.PaidAt, p.CouponApplied, p.CartID, p.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	s.logger.Info("Payment created",
		zap.String("payment_id", p.ID.String()),
		zap.String("transaction_id", p.TransactionID),
		zap.String("status", string(p.Status)))
	return nil
}

// UpdatePaymentStatus moves a PENDING payment to COMPLETED or FAILED. Any
// other transition fails with ErrInvalidTransition. paidAt is recorded when
// given.
func (s *Store) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, next models.PaymentStatus, paidAt *time.Time) error {
	ctx, span := util.StartSpan(ctx, "Store.UpdatePaymentStatus")
	defer span.End()

	if !models.PaymentStatusPending.CanTransition(next) {
		return fmt.Errorf("%s -> %s: %w", models.PaymentStatusPending, next, ErrInvalidTransition)
	}

	n, err := s.exec(ctx, `
		UPDATE payment SET payment_status = ?, payment_date = COALESCE(?, payment_date)
		WHERE payment_id = ? AND payment_status = ?`,
		next, paidAt, paymentID, models.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if n == 1 {
		s.logger.Info("Payment status updated",
			zap.String("payment_id", paymentID.String()),
			zap.String("status", string(next)))
		return nil
	}

	current, err := s.GetPayment(ctx, paymentID)
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	return fmt.Errorf("%s -> %s: %w", current.Status, next, ErrInvalidTransition)
}
