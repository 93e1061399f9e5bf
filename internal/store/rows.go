package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"

	"github.com/google/uuid"
)

// Row is a table row keyed by column name, as shown in the admin console.
type Row map[string]interface{}

func normalize(row map[string]interface{}) Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return Row(row)
}

// Rows pages through any declared table ordered by primary key.
func (r *Reader) Rows(ctx context.Context, t *schema.Table, limit, offset int) ([]Row, error) {
	query := r.q.Rebind(fmt.Sprintf("%s ORDER BY %s LIMIT ? OFFSET ?", selectFrom(t.Name), t.PrimaryKey))
	rows, err := r.q.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.Name, err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		m := map[string]interface{}{}
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		out = append(out, normalize(m))
	}
	return out, rows.Err()
}

// Row loads a single row of t by primary key.
func (r *Reader) Row(ctx context.Context, t *schema.Table, key interface{}) (Row, error) {
	query := r.q.Rebind(fmt.Sprintf("%s WHERE %s = ?", selectFrom(t.Name), t.PrimaryKey))
	m := map[string]interface{}{}
	err := r.q.QueryRowxContext(ctx, query, key).MapScan(m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %v: %w", t.Name, key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return normalize(m), nil
}

// UpdateRow writes already coerced column values to one row of t. The
// primary key itself cannot be changed. The updated row is loaded back into
// its model and validated before the transaction commits, so the same rules
// apply as on insert. Payments only change through UpdatePaymentStatus.
func (s *Store) UpdateRow(ctx context.Context, t *schema.Table, key interface{}, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if col == t.PrimaryKey {
			return fmt.Errorf("%s.%s: primary key is immutable: %w", t.Name, col, schema.ErrInvalidValue)
		}
		if _, ok := t.Column(col); !ok {
			return fmt.Errorf("%s.%s: unknown column: %w", t.Name, col, schema.ErrInvalidValue)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	if t.Name == schema.PaymentTable {
		return s.updatePaymentRow(ctx, key, fields)
	}

	sets := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = col + " = ?"
		args = append(args, fields[col])
	}
	args = append(args, key)

	return s.InTx(ctx, func(tx *Store) error {
		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t.Name, strings.Join(sets, ", "), t.PrimaryKey)
		n, err := tx.exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", t.Name, err)
		}
		if n == 0 {
			return fmt.Errorf("%s %v: %w", t.Name, key, ErrNotFound)
		}

		model := newModel(t.Name)
		if model == nil {
			return nil
		}
		if err := tx.get(ctx, model, t.Name, t.PrimaryKey+" = ?", key); err != nil {
			return err
		}
		return models.Validate(model)
	})
}

// updatePaymentRow accepts a payment_status change, optionally with its
// payment_date. Every other payment column is fixed once the row exists.
func (s *Store) updatePaymentRow(ctx context.Context, key interface{}, fields map[string]interface{}) error {
	id, ok := key.(uuid.UUID)
	if !ok {
		return fmt.Errorf("payment key %v: %w", key, schema.ErrInvalidValue)
	}

	var next models.PaymentStatus
	var paidAt *time.Time
	for col, v := range fields {
		switch col {
		case "payment_status":
			status, ok := v.(string)
			if !ok {
				return fmt.Errorf("payment.payment_status %v: %w", v, schema.ErrInvalidValue)
			}
			next = models.PaymentStatus(status)
		case "payment_date":
			if v == nil {
				continue
			}
			ts, ok := v.(time.Time)
			if !ok {
				return fmt.Errorf("payment.payment_date %v: %w", v, schema.ErrInvalidValue)
			}
			paidAt = &ts
		default:
			return fmt.Errorf("payment.%s: %w", col, ErrImmutable)
		}
	}
	if next == "" {
		return fmt.Errorf("payment.payment_date: only set together with payment_status: %w", ErrImmutable)
	}
	return s.UpdatePaymentStatus(ctx, id, next, paidAt)
}

func newModel(table string) interface{} {
	switch table {
	case schema.BrandTable:
		return &models.Brand{}
	case schema.DoctorConsultationTable:
		return &models.DoctorConsultation{}
	case schema.MedicineShopTable:
		return &models.MedicineShop{}
	case schema.CustomerTable:
		return &models.Customer{}
	case schema.ProductTable:
		return &models.Product{}
	case schema.CartTable:
		return &models.Cart{}
	case schema.CartItemsTable:
		return &models.CartItem{}
	case schema.WishlistTable:
		return &models.WishlistItem{}
	case schema.PaymentTable:
		return &models.Payment{}
	}
	return nil
}

// DeleteRow deletes one row of t by primary key.
func (s *Store) DeleteRow(ctx context.Context, t *schema.Table, key interface{}) error {
	return s.deleteByKey(ctx, t.Name, key)
}
