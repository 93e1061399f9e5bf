package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Brand represents a product manufacturer
type Brand struct {
	ID       uuid.UUID `db:"brand_id" json:"brand_id"`
	Name     string    `db:"brand_name" json:"brand_name" validate:"required,max=50"`
	Location *string   `db:"brand_location" json:"brand_location,omitempty" validate:"omitempty,max=50"`
	Phone    *string   `db:"brand_official_phone" json:"brand_official_phone,omitempty" validate:"omitempty,max=15"`
}

// Customer represents a registered buyer
type Customer struct {
	ID       uuid.UUID     `db:"customer_id" json:"customer_id"`
	Name     string        `db:"name" json:"name" validate:"required,max=50"`
	Address  string        `db:"address" json:"address" validate:"required,max=250"`
	Phone    *string       `db:"phone_no" json:"phone_no,omitempty" validate:"omitempty,max=15"`
	Pincode  string        `db:"pincode" json:"pincode" validate:"required,max=6,numeric"`
	Age      int           `db:"age" json:"age" validate:"gte=0,lte=150"`
	Gender   *Gender       `db:"gender" json:"gender,omitempty" validate:"omitempty,enum"`
	DoctorID uuid.NullUUID `db:"doctor_id" json:"doctor_id"`
}

// DoctorConsultation represents a doctor a customer consults with
type DoctorConsultation struct {
	ID             uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Name           string    `db:"doctor_name" json:"doctor_name" validate:"required,max=50"`
	Address        *string   `db:"doctor_address" json:"doctor_address,omitempty" validate:"omitempty,max=250"`
	Phone          *string   `db:"doctor_phone_no" json:"doctor_phone_no,omitempty" validate:"omitempty,max=15"`
	Qualification  string    `db:"doctor_qualification" json:"doctor_qualification" validate:"required,max=100"`
	Specialization string    `db:"doctor_specialization" json:"doctor_specialization" validate:"required,max=25"`
}

// MedicineShop represents a shop that lists products
type MedicineShop struct {
	ID      uuid.UUID `db:"shop_id" json:"shop_id"`
	Name    string    `db:"shop_name" json:"shop_name" validate:"required,max=100"`
	Address string    `db:"shop_address" json:"shop_address" validate:"required,max=250"`
	Phone   *string   `db:"shop_phone_no" json:"shop_phone_no,omitempty" validate:"omitempty,max=15"`
}

// Product represents an item sold by a medicine shop
type Product struct {
	ID                int64           `db:"product_id" json:"product_id"`
	Name              string          `db:"product_name" json:"product_name" validate:"required,max=100"`
	Type              string          `db:"product_type" json:"product_type" validate:"required,max=25"`
	Quantity          string          `db:"product_quantity" json:"product_quantity" validate:"required,max=20"`
	Gender            *Gender         `db:"product_based_on_gender" json:"product_based_on_gender,omitempty" validate:"omitempty,enum"`
	AgeGroup          *string         `db:"product_age_group" json:"product_age_group,omitempty" validate:"omitempty,max=20"`
	Price             decimal.Decimal `db:"product_price" json:"product_price" validate:"decimal=10_2"`
	CommissionPercent decimal.Decimal `db:"product_commission_percent" json:"product_commission_percent" validate:"decimal=5_2"`
	MfgDate           *time.Time      `db:"product_mfg_date" json:"product_mfg_date,omitempty"`
	ExpDate           *time.Time      `db:"product_exp_date" json:"product_exp_date,omitempty"`
	ShopID            uuid.UUID       `db:"product_shop_id" json:"product_shop_id" validate:"required"`
	BrandID           uuid.NullUUID   `db:"product_brand_id" json:"product_brand_id"`
}

// Cart represents a customer's single shopping cart
type Cart struct {
	ID           int64      `db:"cart_id" json:"cart_id"`
	CustomerID   uuid.UUID  `db:"customer_id" json:"customer_id" validate:"required"`
	DeliveryTime *TimeOfDay `db:"delivery_time" json:"delivery_time,omitempty"`
}

// CartItem represents one product line in a cart
type CartItem struct {
	ID        int64 `db:"id" json:"id"`
	CartID    int64 `db:"cart_id" json:"cart_id" validate:"gt=0"`
	ProductID int64 `db:"product_id" json:"product_id" validate:"gt=0"`
	Quantity  int   `db:"quantity" json:"quantity" validate:"gt=0"`
}

// WishlistItem represents a product a customer saved for later
type WishlistItem struct {
	ID         int64     `db:"id" json:"id"`
	CustomerID uuid.UUID `db:"customer_id" json:"customer_id" validate:"required"`
	ProductID  int64     `db:"product_id" json:"product_id" validate:"gt=0"`
}

// Payment represents a checkout payment for a cart
type Payment struct {
	ID            uuid.UUID       `db:"payment_id" json:"payment_id"`
	TransactionID string          `db:"transaction_id" json:"transaction_id" validate:"required,max=50"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"total_price" validate:"decimal=10_2"`
	Method        PaymentMethod   `db:"payment_method" json:"payment_method" validate:"enum"`
	Status        PaymentStatus   `db:"payment_status" json:"payment_status" validate:"enum"`
	PaidAt        *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
	CouponApplied bool            `db:"coupon_applied" json:"coupon_applied"`
	CartID        int64           `db:"cart_id" json:"cart_id" validate:"gt=0"`
	CustomerID    uuid.UUID       `db:"customer_id" json:"customer_id" validate:"required"`
}

// AppliedMigration is a row of the schema_migrations bookkeeping table
type AppliedMigration struct {
	ID          string    `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	AppliedAt   time.Time `db:"applied_at" json:"applied_at"`
}
