package store

import (
	"context"
	"fmt"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCart creates the single cart of a customer. A second cart for the
// same customer fails with ErrDuplicate.
func (s *Store) CreateCart(ctx context.Context, c *models.Cart) error {
	if err := models.Validate(c); err != nil {
		return err
	}

	err := s.insertReturning(ctx, &c.ID, `
		INSERT INTO cart (customer_id, delivery_time)
		VALUES (?, ?)
		RETURNING cart_id`,
		c.CustomerID, c.DeliveryTime)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// SetDeliveryTime sets or clears a cart's delivery time
func (s *Store) SetDeliveryTime(ctx context.Context, cartID int64, at *models.TimeOfDay) error {
	n, err := s.exec(ctx, "UPDATE cart SET delivery_time = ? WHERE cart_id = ?", at, cartID)
	if err != nil {
		return fmt.Errorf("failed to set delivery time: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("cart %d: %w", cartID, ErrNotFound)
	}
	return nil
}

// DeleteCart removes a cart and its items.
func (s *Store) DeleteCart(ctx context.Context, id int64) error {
	return s.deleteByKey(ctx, schema.CartTable, id)
}

// AddCartItem adds quantity units of a product to a cart. When the product
// is already in the cart its quantity is incremented; no second row is
// written for the same (cart, product) pair.
func (s *Store) AddCartItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "Store.AddCartItem")
	defer span.End()

	item := &models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	if err := models.Validate(item); err != nil {
		return nil, err
	}

	err := s.insertReturning(ctx, item, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + excluded.quantity
		RETURNING id, cart_id, product_id, quantity`,
		cartID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug("Cart item added",
		zap.Int64("cart_id", cartID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", item.Quantity))
	return item, nil
}

// InsertCartItem writes a new cart line. Unlike AddCartItem it fails with
// ErrDuplicate when the product is already in the cart.
func (s *Store) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	if err := models.Validate(item); err != nil {
		return err
	}

	err := s.insertReturning(ctx, &item.ID, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES (?, ?, ?)
		RETURNING id`,
		item.CartID, item.ProductID, item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

// SetCartItemQuantity overwrites the quantity of a cart line
func (s *Store) SetCartItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity %d: %w", quantity, models.ErrValidation)
	}

	n, err := s.exec(ctx,
		"UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND product_id = ?",
		quantity, cartID, productID)
	if err != nil {
		return fmt.Errorf("failed to set cart item quantity: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("cart %d product %d: %w", cartID, productID, ErrNotFound)
	}
	return nil
}

// RemoveCartItem removes a product from a cart
func (s *Store) RemoveCartItem(ctx context.Context, cartID, productID int64) error {
	n, err := s.exec(ctx, "DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?", cartID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("cart %d product %d: %w", cartID, productID, ErrNotFound)
	}
	return nil
}

// AddToWishlist saves a product to a customer's wishlist. Saving the same
// product twice fails with ErrDuplicate.
func (s *Store) AddToWishlist(ctx context.Context, customerID uuid.UUID, productID int64) (*models.WishlistItem, error) {
	item := &models.WishlistItem{CustomerID: customerID, ProductID: productID}
	if err := models.Validate(item); err != nil {
		return nil, err
	}

	err := s.insertReturning(ctx, &item.ID, `
		INSERT INTO wishlist (customer_id, product_id)
		VALUES (?, ?)
		RETURNING id`,
		customerID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return item, nil
}

// RemoveFromWishlist removes a product from a customer's wishlist
func (s *Store) RemoveFromWishlist(ctx context.Context, customerID uuid.UUID, productID int64) error {
	n, err := s.exec(ctx, "DELETE FROM wishlist WHERE customer_id = ? AND product_id = ?", customerID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("wishlist %s product %d: %w", customerID, productID, ErrNotFound)
	}
	return nil
}
