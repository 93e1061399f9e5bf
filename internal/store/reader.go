package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Reader holds the queries shared by every consumer of the database. The
// read-only mirror gets a Reader and nothing else.
type Reader struct {
	q sqlx.ExtContext
}

// NewReader returns a Reader over db.
func NewReader(db *sqlx.DB) *Reader {
	return &Reader{q: db}
}

func selectFrom(table string) string {
	t := schema.MustLookup(table)
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.ColumnNames(), ", "), t.Name)
}

func (r *Reader) get(ctx context.Context, dest interface{}, table, where string, args ...interface{}) error {
	query := r.q.Rebind(selectFrom(table) + " WHERE " + where)
	err := sqlx.GetContext(ctx, r.q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", table, args, ErrNotFound)
	}
	return err
}

func (r *Reader) list(ctx context.Context, dest interface{}, table, where, orderBy string, args ...interface{}) error {
	query := selectFrom(table)
	if where != "" {
		query += " WHERE " + where
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	return sqlx.SelectContext(ctx, r.q, dest, r.q.Rebind(query), args...)
}

// GetBrand retrieves a brand by ID
func (r *Reader) GetBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var b models.Brand
	if err := r.get(ctx, &b, schema.BrandTable, "brand_id = ?", id); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetCustomer retrieves a customer by ID
func (r *Reader) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	if err := r.get(ctx, &c, schema.CustomerTable, "customer_id = ?", id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomersByDoctor retrieves the customers consulting a doctor
func (r *Reader) ListCustomersByDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.list(ctx, &customers, schema.CustomerTable, "doctor_id = ?", "name", doctorID)
	return customers, err
}

// GetDoctor retrieves a doctor consultation by ID
func (r *Reader) GetDoctor(ctx context.Context, id uuid.UUID) (*models.DoctorConsultation, error) {
	var d models.DoctorConsultation
	if err := r.get(ctx, &d, schema.DoctorConsultationTable, "doctor_id = ?", id); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetShop retrieves a medicine shop by ID
func (r *Reader) GetShop(ctx context.Context, id uuid.UUID) (*models.MedicineShop, error) {
	var m models.MedicineShop
	if err := r.get(ctx, &m, schema.MedicineShopTable, "shop_id = ?", id); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetProduct retrieves a product by ID
func (r *Reader) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := r.get(ctx, &p, schema.ProductTable, "product_id = ?", id); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProductsByShop retrieves all products listed by a shop
func (r *Reader) ListProductsByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.list(ctx, &products, schema.ProductTable, "product_shop_id = ?", "product_id", shopID)
	return products, err
}

// GetCart retrieves a cart by ID
func (r *Reader) GetCart(ctx context.Context, id int64) (*models.Cart, error) {
	var c models.Cart
	if err := r.get(ctx, &c, schema.CartTable, "cart_id = ?", id); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCartByCustomer retrieves the single cart owned by a customer
func (r *Reader) GetCartByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	if err := r.get(ctx, &c, schema.CartTable, "customer_id = ?", customerID); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCartItems retrieves all items in a cart
func (r *Reader) ListCartItems(ctx context.Context, cartID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.list(ctx, &items, schema.CartItemsTable, "cart_id = ?", "id", cartID)
	return items, err
}

// GetCartItem retrieves the line for a product in a cart
func (r *Reader) GetCartItem(ctx context.Context, cartID, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.get(ctx, &item, schema.CartItemsTable, "cart_id = ? AND product_id = ?", cartID, productID); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListWishlist retrieves a customer's wishlist
func (r *Reader) ListWishlist(ctx context.Context, customerID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.list(ctx, &items, schema.WishlistTable, "customer_id = ?", "id", customerID)
	return items, err
}

// GetPayment retrieves a payment by ID
func (r *Reader) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := r.get(ctx, &p, schema.PaymentTable, "payment_id = ?", id); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPaymentByTransaction retrieves a payment by its external transaction ID
func (r *Reader) GetPaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.get(ctx, &p, schema.PaymentTable, "transaction_id = ?", transactionID); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPaymentsByCustomer retrieves payments made by a customer
func (r *Reader) ListPaymentsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.list(ctx, &payments, schema.PaymentTable, "customer_id = ?", "payment_date", customerID)
	return payments, err
}

// Count returns the number of rows in a declared table.
func (r *Reader) Count(ctx context.Context, table string) (int64, error) {
	t, ok := schema.Lookup(table)
	if !ok {
		return 0, fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	var n int64
	err := sqlx.GetContext(ctx, r.q, &n, "SELECT COUNT(*) FROM "+t.Name)
	return n, err
}
