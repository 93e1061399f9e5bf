package migrate

import (
	"pharmacy-store/internal/schema"
)

// Step is one entry of the migration history. Steps are append-only: once
// released, a step's ID and statements never change. The statements are
// frozen SQL, not rendered from the current declarations, so a database that
// recorded a step and a fresh one that runs it end up with the same tables.
// A schema change is a new step at the end of the list.
type Step struct {
	ID          string
	Description string
	Postgres    []string
	SQLite      []string
}

// Statements returns the step's SQL in dialect d.
func (s Step) Statements(d schema.Dialect) []string {
	if d == schema.Postgres {
		return s.Postgres
	}
	return s.SQLite
}

var foreignKeyIndexes = []string{
	"CREATE INDEX IF NOT EXISTS customer_doctor_id_idx ON customer (doctor_id)",
	"CREATE INDEX IF NOT EXISTS product_product_shop_id_idx ON product (product_shop_id)",
	"CREATE INDEX IF NOT EXISTS product_product_brand_id_idx ON product (product_brand_id)",
	"CREATE INDEX IF NOT EXISTS cart_items_product_id_idx ON cart_items (product_id)",
	"CREATE INDEX IF NOT EXISTS wishlist_product_id_idx ON wishlist (product_id)",
	"CREATE INDEX IF NOT EXISTS payment_cart_id_idx ON payment (cart_id)",
	"CREATE INDEX IF NOT EXISTS payment_customer_id_idx ON payment (customer_id)",
}

var steps = []Step{
	{
		ID:          "0001_create_brand",
		Description: "create Brand",
		Postgres: []string{`CREATE TABLE brand (
			brand_id UUID PRIMARY KEY,
			brand_name VARCHAR(50) NOT NULL,
			brand_location VARCHAR(50),
			brand_official_phone VARCHAR(15)
		)`},
		SQLite: []string{`CREATE TABLE brand (
			brand_id TEXT PRIMARY KEY,
			brand_name VARCHAR(50) NOT NULL,
			brand_location VARCHAR(50),
			brand_official_phone VARCHAR(15)
		)`},
	},
	{
		ID:          "0002_create_doctor_consultation",
		Description: "create DoctorConsultation",
		Postgres: []string{`CREATE TABLE doctor_consultation (
			doctor_id UUID PRIMARY KEY,
			doctor_name VARCHAR(50) NOT NULL,
			doctor_address VARCHAR(250),
			doctor_phone_no VARCHAR(15),
			doctor_qualification VARCHAR(100) NOT NULL,
			doctor_specialization VARCHAR(25) NOT NULL
		)`},
		SQLite: []string{`CREATE TABLE doctor_consultation (
			doctor_id TEXT PRIMARY KEY,
			doctor_name VARCHAR(50) NOT NULL,
			doctor_address VARCHAR(250),
			doctor_phone_no VARCHAR(15),
			doctor_qualification VARCHAR(100) NOT NULL,
			doctor_specialization VARCHAR(25) NOT NULL
		)`},
	},
	{
		ID:          "0003_create_medicine_shop",
		Description: "create MedicineShop",
		Postgres: []string{`CREATE TABLE medicine_shop (
			shop_id UUID PRIMARY KEY,
			shop_name VARCHAR(100) NOT NULL,
			shop_address VARCHAR(250) NOT NULL,
			shop_phone_no VARCHAR(15)
		)`},
		SQLite: []string{`CREATE TABLE medicine_shop (
			shop_id TEXT PRIMARY KEY,
			shop_name VARCHAR(100) NOT NULL,
			shop_address VARCHAR(250) NOT NULL,
			shop_phone_no VARCHAR(15)
		)`},
	},
	{
		ID:          "0004_create_customer",
		Description: "create Customer",
		Postgres: []string{`CREATE TABLE customer (
			customer_id UUID PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			address VARCHAR(250) NOT NULL,
			phone_no VARCHAR(15),
			pincode VARCHAR(6) NOT NULL,
			age INTEGER NOT NULL,
			gender VARCHAR(7),
			doctor_id UUID REFERENCES doctor_consultation (doctor_id) ON DELETE SET NULL,
			CONSTRAINT customer_age_range CHECK (age >= 0),
			CONSTRAINT customer_gender_check CHECK (gender IN ('MALE', 'FEMALE', 'OTHER'))
		)`},
		SQLite: []string{`CREATE TABLE customer (
			customer_id TEXT PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			address VARCHAR(250) NOT NULL,
			phone_no VARCHAR(15),
			pincode VARCHAR(6) NOT NULL,
			age INTEGER NOT NULL,
			gender VARCHAR(7),
			doctor_id TEXT REFERENCES doctor_consultation (doctor_id) ON DELETE SET NULL,
			CONSTRAINT customer_age_range CHECK (age >= 0),
			CONSTRAINT customer_gender_check CHECK (gender IN ('MALE', 'FEMALE', 'OTHER'))
		)`},
	},
	{
		ID:          "0005_create_product",
		Description: "create Product",
		Postgres: []string{`CREATE TABLE product (
			product_id BIGSERIAL PRIMARY KEY,
			product_name VARCHAR(100) NOT NULL,
			product_type VARCHAR(25) NOT NULL,
			product_quantity VARCHAR(20) NOT NULL,
			product_based_on_gender VARCHAR(7),
			product_age_group VARCHAR(20),
			product_price NUMERIC(10,2) NOT NULL,
			product_commission_percent NUMERIC(5,2) NOT NULL,
			product_mfg_date DATE,
			product_exp_date DATE,
			product_shop_id UUID NOT NULL REFERENCES medicine_shop (shop_id) ON DELETE CASCADE,
			product_brand_id UUID REFERENCES brand (brand_id) ON DELETE CASCADE,
			CONSTRAINT product_product_based_on_gender_check CHECK (product_based_on_gender IN ('MALE', 'FEMALE', 'OTHER')),
			CONSTRAINT product_product_price_range CHECK (product_price >= 0),
			CONSTRAINT product_product_commission_percent_range CHECK (product_commission_percent >= 0)
		)`},
		SQLite: []string{`CREATE TABLE product (
			product_id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_name VARCHAR(100) NOT NULL,
			product_type VARCHAR(25) NOT NULL,
			product_quantity VARCHAR(20) NOT NULL,
			product_based_on_gender VARCHAR(7),
			product_age_group VARCHAR(20),
			product_price NUMERIC(10,2) NOT NULL,
			product_commission_percent NUMERIC(5,2) NOT NULL,
			product_mfg_date DATE,
			product_exp_date DATE,
			product_shop_id TEXT NOT NULL REFERENCES medicine_shop (shop_id) ON DELETE CASCADE,
			product_brand_id TEXT REFERENCES brand (brand_id) ON DELETE CASCADE,
			CONSTRAINT product_product_based_on_gender_check CHECK (product_based_on_gender IN ('MALE', 'FEMALE', 'OTHER')),
			CONSTRAINT product_product_price_range CHECK (product_price >= 0),
			CONSTRAINT product_product_commission_percent_range CHECK (product_commission_percent >= 0)
		)`},
	},
	{
		ID:          "0006_create_cart",
		Description: "create Cart",
		Postgres: []string{`CREATE TABLE cart (
			cart_id BIGSERIAL PRIMARY KEY,
			customer_id UUID NOT NULL UNIQUE REFERENCES customer (customer_id) ON DELETE CASCADE,
			delivery_time TIME
		)`},
		SQLite: []string{`CREATE TABLE cart (
			cart_id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id TEXT NOT NULL UNIQUE REFERENCES customer (customer_id) ON DELETE CASCADE,
			delivery_time TIME
		)`},
	},
	{
		ID:          "0007_create_cart_items",
		Description: "create CartItems",
		Postgres: []string{`CREATE TABLE cart_items (
			id SERIAL PRIMARY KEY,
			cart_id BIGINT NOT NULL REFERENCES cart (cart_id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES product (product_id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL,
			CONSTRAINT cart_items_cart_id_product_id_uniq UNIQUE (cart_id, product_id),
			CONSTRAINT cart_items_quantity_range CHECK (quantity > 0)
		)`},
		SQLite: []string{`CREATE TABLE cart_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cart_id INTEGER NOT NULL REFERENCES cart (cart_id) ON DELETE CASCADE,
			product_id INTEGER NOT NULL REFERENCES product (product_id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL,
			CONSTRAINT cart_items_cart_id_product_id_uniq UNIQUE (cart_id, product_id),
			CONSTRAINT cart_items_quantity_range CHECK (quantity > 0)
		)`},
	},
	{
		ID:          "0008_create_wishlist",
		Description: "create Wishlist",
		Postgres: []string{`CREATE TABLE wishlist (
			id SERIAL PRIMARY KEY,
			customer_id UUID NOT NULL REFERENCES customer (customer_id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES product (product_id) ON DELETE CASCADE,
			CONSTRAINT wishlist_customer_id_product_id_uniq UNIQUE (customer_id, product_id)
		)`},
		SQLite: []string{`CREATE TABLE wishlist (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id TEXT NOT NULL REFERENCES customer (customer_id) ON DELETE CASCADE,
			product_id INTEGER NOT NULL REFERENCES product (product_id) ON DELETE CASCADE,
			CONSTRAINT wishlist_customer_id_product_id_uniq UNIQUE (customer_id, product_id)
		)`},
	},
	{
		ID:          "0009_create_payment",
		Description: "create Payment",
		Postgres: []string{`CREATE TABLE payment (
			payment_id UUID PRIMARY KEY,
			transaction_id VARCHAR(50) NOT NULL UNIQUE,
			total_price NUMERIC(10,2) NOT NULL,
			payment_method VARCHAR(50) NOT NULL,
			payment_status VARCHAR(20) NOT NULL,
			payment_date TIMESTAMPTZ,
			coupon_applied BOOLEAN NOT NULL,
			cart_id BIGINT NOT NULL REFERENCES cart (cart_id) ON DELETE CASCADE,
			customer_id UUID NOT NULL REFERENCES customer (customer_id) ON DELETE CASCADE,
			CONSTRAINT payment_total_price_range CHECK (total_price >= 0),
			CONSTRAINT payment_payment_method_check CHECK (payment_method IN ('CASH ON DELIVERY', 'CREDIT/DEBIT CARD', 'E-WALLETS', 'NETBANKING')),
			CONSTRAINT payment_payment_status_check CHECK (payment_status IN ('PENDING', 'COMPLETED', 'FAILED'))
		)`},
		SQLite: []string{`CREATE TABLE payment (
			payment_id TEXT PRIMARY KEY,
			transaction_id VARCHAR(50) NOT NULL UNIQUE,
			total_price NUMERIC(10,2) NOT NULL,
			payment_method VARCHAR(50) NOT NULL,
			payment_status VARCHAR(20) NOT NULL,
			payment_date TIMESTAMP,
			coupon_applied BOOLEAN NOT NULL,
			cart_id INTEGER NOT NULL REFERENCES cart (cart_id) ON DELETE CASCADE,
			customer_id TEXT NOT NULL REFERENCES customer (customer_id) ON DELETE CASCADE,
			CONSTRAINT payment_total_price_range CHECK (total_price >= 0),
			CONSTRAINT payment_payment_method_check CHECK (payment_method IN ('CASH ON DELIVERY', 'CREDIT/DEBIT CARD', 'E-WALLETS', 'NETBANKING')),
			CONSTRAINT payment_payment_status_check CHECK (payment_status IN ('PENDING', 'COMPLETED', 'FAILED'))
		)`},
	},
	{
		ID:          "0010_foreign_key_indexes",
		Description: "index foreign key columns",
		Postgres:    foreignKeyIndexes,
		SQLite:      foreignKeyIndexes,
	},
}

// Steps returns the full migration history in order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}
